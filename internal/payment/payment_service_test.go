package payment_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"go-garage/internal/events"
	"go-garage/internal/messaging/kafka"
	"go-garage/internal/payment"
	paymenterrors "go-garage/internal/payment/errors"
	"go-garage/internal/shared/money"
	"go-garage/internal/vehicleservice"
	vehicleserviceerrors "go-garage/internal/vehicleservice/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakePaymentRepository struct {
	withTxFn            func(tx *sql.Tx) payment.Repository
	createFn            func(ctx context.Context, p *payment.Payment) error
	findByIDFn          func(ctx context.Context, id string) (*payment.Payment, error)
	findByIDForUpdateFn func(ctx context.Context, id string) (*payment.Payment, error)
	findByServiceFn     func(ctx context.Context, serviceID string) ([]payment.Payment, error)
	updateAmountFn      func(ctx context.Context, p *payment.Payment) error
	deleteFn            func(ctx context.Context, id string) error
}

func (f *fakePaymentRepository) WithTx(tx *sql.Tx) payment.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakePaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	if f.createFn != nil {
		return f.createFn(ctx, p)
	}
	return nil
}

func (f *fakePaymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentRepository) FindByIDForUpdate(ctx context.Context, id string) (*payment.Payment, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakePaymentRepository) FindByService(ctx context.Context, serviceID string) ([]payment.Payment, error) {
	if f.findByServiceFn != nil {
		return f.findByServiceFn(ctx, serviceID)
	}
	return nil, nil
}

func (f *fakePaymentRepository) UpdateAmount(ctx context.Context, p *payment.Payment) error {
	if f.updateAmountFn != nil {
		return f.updateAmountFn(ctx, p)
	}
	return nil
}

func (f *fakePaymentRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeServiceRepository struct {
	withTxFn            func(tx *sql.Tx) vehicleservice.Repository
	findByIDForUpdateFn func(ctx context.Context, id string) (*vehicleservice.Service, error)
	findOutstandingFn   func(ctx context.Context, vehicleID string) ([]vehicleservice.Service, error)
	updateTotalsFn      func(ctx context.Context, service *vehicleservice.Service) error
}

func (f *fakeServiceRepository) WithTx(tx *sql.Tx) vehicleservice.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeServiceRepository) Create(ctx context.Context, service *vehicleservice.Service) error {
	return nil
}

func (f *fakeServiceRepository) FindAll(ctx context.Context, filter vehicleservice.ListFilter) ([]vehicleservice.Service, error) {
	return nil, nil
}

func (f *fakeServiceRepository) FindByID(ctx context.Context, id string) (*vehicleservice.Service, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeServiceRepository) FindByIDForUpdate(ctx context.Context, id string) (*vehicleservice.Service, error) {
	if f.findByIDForUpdateFn != nil {
		return f.findByIDForUpdateFn(ctx, id)
	}
	return nil, sql.ErrNoRows
}

func (f *fakeServiceRepository) FindOutstandingByVehicleForUpdate(ctx context.Context, vehicleID string) ([]vehicleservice.Service, error) {
	if f.findOutstandingFn != nil {
		return f.findOutstandingFn(ctx, vehicleID)
	}
	return nil, nil
}

func (f *fakeServiceRepository) UpdateTotals(ctx context.Context, service *vehicleservice.Service) error {
	if f.updateTotalsFn != nil {
		return f.updateTotalsFn(ctx, service)
	}
	return nil
}

func (f *fakeServiceRepository) Update(ctx context.Context, service *vehicleservice.Service) error {
	return nil
}

func (f *fakeServiceRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func (f *fakeServiceRepository) HasPayments(ctx context.Context, serviceID string) (bool, error) {
	return false, nil
}

type fakeCounterRepository struct {
	next int64
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	f.next++
	return f.next, nil
}

type fakeOutboxRepository struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type allocatorDeps struct {
	db          *sql.DB
	sqlMock     sqlmock.Sqlmock
	allocator   payment.Allocator
	repo        *fakePaymentRepository
	serviceRepo *fakeServiceRepository
	counter     *fakeCounterRepository
	outbox      *fakeOutboxRepository
}

func setupAllocatorTest(t *testing.T) *allocatorDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakePaymentRepository{}
	serviceRepo := &fakeServiceRepository{}
	counterRepo := &fakeCounterRepository{}
	outbox := &fakeOutboxRepository{}

	alloc := payment.NewAllocator(db, repo, serviceRepo, counterRepo, outbox)

	return &allocatorDeps{
		db:          db,
		sqlMock:     sqlMock,
		allocator:   alloc,
		repo:        repo,
		serviceRepo: serviceRepo,
		counter:     counterRepo,
		outbox:      outbox,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func outstandingService(vehicleID uuid.UUID, cost string, date string) vehicleservice.Service {
	costM, _ := money.FromString(cost)
	day, _ := time.Parse("2006-01-02", date)
	return vehicleservice.Service{
		ID:              uuid.New(),
		VehicleID:       vehicleID,
		Cost:            costM,
		AmountPaid:      money.Zero,
		RemainingAmount: costM,
		Status:          vehicleservice.StatusCompleted,
		PaymentStatus:   vehicleservice.PaymentStatusPending,
		ServiceDate:     day,
	}
}

func recordReq(amount string) payment.RecordPaymentRequest {
	amt, _ := money.FromString(amount)
	return payment.RecordPaymentRequest{
		Amount:        amt,
		PaymentMethod: payment.MethodCash,
		PaymentDate:   "2026-08-20",
	}
}

func TestAllocateToServicePartial(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	svc := outstandingService(uuid.New(), "100.00", "2026-08-01")
	deps.serviceRepo.findByIDForUpdateFn = func(ctx context.Context, id string) (*vehicleservice.Service, error) {
		return &svc, nil
	}

	var stored *payment.Payment
	deps.repo.createFn = func(ctx context.Context, p *payment.Payment) error {
		stored = p
		return nil
	}

	var savedTotals *vehicleservice.Service
	deps.serviceRepo.updateTotalsFn = func(ctx context.Context, service *vehicleservice.Service) error {
		savedTotals = service
		return nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.allocator.AllocateToService(context.Background(), svc.ID.String(), recordReq("40.50"))

	assert.NoError(t, err)
	assert.Equal(t, "40.50", resp.Amount.String())
	assert.True(t, resp.ExcessAmount.IsZero())
	assert.Equal(t, "PAY-000001", resp.ReceiptNumber)

	assert.NotNil(t, stored)
	assert.Equal(t, "40.50", stored.Amount.String())

	assert.NotNil(t, savedTotals)
	assert.Equal(t, "40.50", savedTotals.AmountPaid.String())
	assert.Equal(t, "59.50", savedTotals.RemainingAmount.String())
	assert.Equal(t, vehicleservice.PaymentStatusPartial, savedTotals.PaymentStatus)

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAllocateToServiceOverpayCapsAndReportsExcess(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	svc := outstandingService(uuid.New(), "100.00", "2026-08-01")
	deps.serviceRepo.findByIDForUpdateFn = func(ctx context.Context, id string) (*vehicleservice.Service, error) {
		return &svc, nil
	}

	var stored *payment.Payment
	deps.repo.createFn = func(ctx context.Context, p *payment.Payment) error {
		stored = p
		return nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.allocator.AllocateToService(context.Background(), svc.ID.String(), recordReq("200.00"))

	assert.NoError(t, err)
	assert.Equal(t, "100.00", resp.Amount.String())
	assert.Equal(t, "100.00", resp.ExcessAmount.String())
	assert.Equal(t, "100.00", stored.Amount.String())
	assert.Equal(t, vehicleservice.PaymentStatusPaid, svc.PaymentStatus)

	assert.Len(t, deps.outbox.events, 1)
	var event events.PaymentRecordedEvent
	assert.NoError(t, json.Unmarshal(deps.outbox.events[0].Payload, &event))
	assert.Equal(t, "payment_recorded", event.EventType)
	assert.Equal(t, "100.00", event.Amount)
	assert.Equal(t, "100.00", event.ExcessAmount)

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAllocateToSettledServiceFails(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	svc := outstandingService(uuid.New(), "100.00", "2026-08-01")
	svc.AmountPaid = svc.Cost
	svc.RemainingAmount = money.Zero
	svc.PaymentStatus = vehicleservice.PaymentStatusPaid

	deps.serviceRepo.findByIDForUpdateFn = func(ctx context.Context, id string) (*vehicleservice.Service, error) {
		return &svc, nil
	}

	expectTx(t, deps.sqlMock, false)

	_, err := deps.allocator.AllocateToService(context.Background(), svc.ID.String(), recordReq("10.00"))

	assert.ErrorIs(t, err, paymenterrors.ErrServiceAlreadySettled)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAllocateToServiceRejectsNonPositiveAmount(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	req := recordReq("10.00")
	req.Amount = money.Zero

	_, err := deps.allocator.AllocateToService(context.Background(), uuid.NewString(), req)

	assert.ErrorIs(t, err, vehicleserviceerrors.ErrInvalidAmount)
}

func TestAllocateToVehicleOldestFirst(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	vehicleID := uuid.New()
	first := outstandingService(vehicleID, "30.00", "2026-07-01")
	second := outstandingService(vehicleID, "50.00", "2026-07-15")
	third := outstandingService(vehicleID, "20.00", "2026-08-01")

	deps.serviceRepo.findOutstandingFn = func(ctx context.Context, id string) ([]vehicleservice.Service, error) {
		return []vehicleservice.Service{first, second, third}, nil
	}

	var totals []vehicleservice.Service
	deps.serviceRepo.updateTotalsFn = func(ctx context.Context, service *vehicleservice.Service) error {
		totals = append(totals, *service)
		return nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.allocator.AllocateToVehicle(context.Background(), vehicleID.String(), recordReq("60.00"))

	assert.NoError(t, err)
	assert.Len(t, resp.Payments, 2)
	assert.Equal(t, "30.00", resp.Payments[0].Amount.String())
	assert.Equal(t, first.ID.String(), resp.Payments[0].ServiceID)
	assert.Equal(t, "30.00", resp.Payments[1].Amount.String())
	assert.Equal(t, second.ID.String(), resp.Payments[1].ServiceID)
	assert.Equal(t, "60.00", resp.TotalApplied.String())
	assert.True(t, resp.ExcessAmount.IsZero())

	assert.Len(t, totals, 2)
	assert.Equal(t, vehicleservice.PaymentStatusPaid, totals[0].PaymentStatus)
	assert.Equal(t, vehicleservice.PaymentStatusPartial, totals[1].PaymentStatus)
	assert.Equal(t, "20.00", totals[1].RemainingAmount.String())

	assert.Equal(t, "PAY-000001", resp.Payments[0].ReceiptNumber)
	assert.Equal(t, "PAY-000002", resp.Payments[1].ReceiptNumber)

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAllocateToVehicleOverpayReportsExcess(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	vehicleID := uuid.New()
	first := outstandingService(vehicleID, "60.00", "2026-07-01")
	second := outstandingService(vehicleID, "40.00", "2026-07-15")

	deps.serviceRepo.findOutstandingFn = func(ctx context.Context, id string) ([]vehicleservice.Service, error) {
		return []vehicleservice.Service{first, second}, nil
	}

	expectTx(t, deps.sqlMock, true)

	resp, err := deps.allocator.AllocateToVehicle(context.Background(), vehicleID.String(), recordReq("200.00"))

	assert.NoError(t, err)
	assert.Len(t, resp.Payments, 2)
	assert.Equal(t, "100.00", resp.TotalApplied.String())
	assert.Equal(t, "100.00", resp.ExcessAmount.String())

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestAllocateToVehicleNoOutstanding(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	deps.serviceRepo.findOutstandingFn = func(ctx context.Context, id string) ([]vehicleservice.Service, error) {
		return nil, nil
	}

	expectTx(t, deps.sqlMock, false)

	_, err := deps.allocator.AllocateToVehicle(context.Background(), uuid.NewString(), recordReq("50.00"))

	assert.ErrorIs(t, err, paymenterrors.ErrNoOutstandingServices)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestUpdatePaymentReappliesAmount(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	svc := outstandingService(uuid.New(), "100.00", "2026-07-01")
	oldAmount, _ := money.FromString("40.00")
	svc.AmountPaid = oldAmount
	svc.RemainingAmount = svc.Cost.Sub(oldAmount)
	svc.PaymentStatus = vehicleservice.PaymentStatusPartial

	existing := &payment.Payment{
		ID:            uuid.New(),
		ServiceID:     svc.ID,
		ReceiptNumber: "PAY-000007",
		Amount:        oldAmount,
		PaymentMethod: payment.MethodCash,
		PaymentDate:   svc.ServiceDate,
	}

	deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*payment.Payment, error) {
		return existing, nil
	}
	deps.serviceRepo.findByIDForUpdateFn = func(ctx context.Context, id string) (*vehicleservice.Service, error) {
		return &svc, nil
	}

	var updated *payment.Payment
	deps.repo.updateAmountFn = func(ctx context.Context, p *payment.Payment) error {
		updated = p
		return nil
	}

	expectTx(t, deps.sqlMock, true)

	newAmount, _ := money.FromString("25.00")
	resp, err := deps.allocator.Update(context.Background(), existing.ID.String(), payment.UpdatePaymentRequest{
		Amount:        newAmount,
		PaymentMethod: payment.MethodCard,
		PaymentDate:   "2026-08-20",
	})

	assert.NoError(t, err)
	assert.Equal(t, "25.00", resp.Amount.String())
	assert.Equal(t, "PAY-000007", resp.ReceiptNumber)

	assert.NotNil(t, updated)
	assert.Equal(t, "25.00", updated.Amount.String())
	assert.Equal(t, payment.MethodCard, updated.PaymentMethod)

	assert.Equal(t, "25.00", svc.AmountPaid.String())
	assert.Equal(t, "75.00", svc.RemainingAmount.String())
	assert.Equal(t, vehicleservice.PaymentStatusPartial, svc.PaymentStatus)

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestDeletePaymentReversesService(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	svc := outstandingService(uuid.New(), "100.00", "2026-07-01")
	paid, _ := money.FromString("100.00")
	svc.AmountPaid = paid
	svc.RemainingAmount = money.Zero
	svc.PaymentStatus = vehicleservice.PaymentStatusPaid

	existing := &payment.Payment{
		ID:            uuid.New(),
		ServiceID:     svc.ID,
		ReceiptNumber: "PAY-000009",
		Amount:        paid,
		PaymentMethod: payment.MethodCash,
		PaymentDate:   svc.ServiceDate,
	}

	deps.repo.findByIDForUpdateFn = func(ctx context.Context, id string) (*payment.Payment, error) {
		return existing, nil
	}
	deps.serviceRepo.findByIDForUpdateFn = func(ctx context.Context, id string) (*vehicleservice.Service, error) {
		return &svc, nil
	}

	deleted := false
	deps.repo.deleteFn = func(ctx context.Context, id string) error {
		deleted = true
		return nil
	}

	expectTx(t, deps.sqlMock, true)

	err := deps.allocator.Delete(context.Background(), existing.ID.String())

	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.True(t, svc.AmountPaid.IsZero())
	assert.Equal(t, "100.00", svc.RemainingAmount.String())
	assert.Equal(t, vehicleservice.PaymentStatusPending, svc.PaymentStatus)

	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestUpdateMissingPayment(t *testing.T) {
	deps := setupAllocatorTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, false)

	newAmount, _ := money.FromString("25.00")
	_, err := deps.allocator.Update(context.Background(), uuid.NewString(), payment.UpdatePaymentRequest{
		Amount:        newAmount,
		PaymentMethod: payment.MethodCash,
		PaymentDate:   "2026-08-20",
	})

	assert.ErrorIs(t, err, paymenterrors.ErrPaymentNotFound)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}
