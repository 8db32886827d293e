package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-garage/internal/events"
	"go-garage/internal/messaging/kafka"
	paymenterrors "go-garage/internal/payment/errors"
	"go-garage/internal/shared/contextutil"
	"go-garage/internal/shared/counter"
	"go-garage/internal/shared/money"
	"go-garage/internal/vehicleservice"
	vehicleserviceerrors "go-garage/internal/vehicleservice/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=payment_service.go -destination=mock/payment_service_mock.go -package=mock
type Allocator interface {
	AllocateToService(ctx context.Context, serviceID string, req RecordPaymentRequest) (PaymentResponse, error)
	AllocateToVehicle(ctx context.Context, vehicleID string, req RecordPaymentRequest) (AllocationResponse, error)
	Update(ctx context.Context, id string, req UpdatePaymentRequest) (PaymentResponse, error)
	Delete(ctx context.Context, id string) error
	GetByService(ctx context.Context, serviceID string) ([]PaymentResponse, error)
}

type allocator struct {
	db          *sql.DB
	repo        Repository
	serviceRepo vehicleservice.Repository
	counter     counter.Repository
	outbox      kafka.OutboxRepository
	logger      *zap.Logger
}

func NewAllocator(
	db *sql.DB,
	repo Repository,
	serviceRepo vehicleservice.Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Allocator {
	l := zap.L().Named("payment.allocator")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payment.allocator")
	}
	return &allocator{
		db:          db,
		repo:        repo,
		serviceRepo: serviceRepo,
		counter:     counterRepo,
		outbox:      outboxRepo,
		logger:      l,
	}
}

// AllocateToService applies one payment against a single service. The applied
// amount is capped at the service's remaining balance; any excess is returned
// on the response and never stored.
func (a *allocator) AllocateToService(
	ctx context.Context,
	serviceID string,
	req RecordPaymentRequest,
) (PaymentResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if _, err := uuid.Parse(serviceID); err != nil {
		return PaymentResponse{}, vehicleserviceerrors.ErrInvalidServiceID
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		return PaymentResponse{}, err
	}
	if !req.Amount.IsPositive() {
		return PaymentResponse{}, vehicleserviceerrors.ErrInvalidAmount
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		a.logger.Error("allocate begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return PaymentResponse{}, err
	}
	defer tx.Rollback()

	qtx := a.repo.WithTx(tx)
	qsvc := a.serviceRepo.WithTx(tx)

	svc, err := qsvc.FindByIDForUpdate(ctx, serviceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PaymentResponse{}, vehicleserviceerrors.ErrServiceNotFound
		}
		return PaymentResponse{}, err
	}
	if !svc.IsOutstanding() {
		return PaymentResponse{}, paymenterrors.ErrServiceAlreadySettled
	}

	leftover, err := svc.ApplyPayment(req.Amount)
	if err != nil {
		return PaymentResponse{}, err
	}
	consumed := req.Amount.Sub(leftover)

	record, err := a.createPaymentInTx(ctx, qtx, svc, consumed, req, paymentDate)
	if err != nil {
		return PaymentResponse{}, err
	}

	if err := qsvc.UpdateTotals(ctx, svc); err != nil {
		return PaymentResponse{}, err
	}

	if err := a.emitPaymentRecorded(ctx, tx, rid, record, svc, leftover); err != nil {
		return PaymentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PaymentResponse{}, err
	}

	if leftover.IsPositive() {
		a.logger.Warn("payment exceeded remaining balance",
			zap.String("request_id", rid),
			zap.String("service_id", serviceID),
			zap.String("excess_amount", leftover.String()),
		)
	}

	resp := mapToResponse(*record)
	resp.ExcessAmount = leftover
	return resp, nil
}

// AllocateToVehicle settles a vehicle's outstanding services oldest-first
// with a single tendered amount. One payment row is written per service
// touched; whatever exceeds the vehicle's total debt comes back as excess.
func (a *allocator) AllocateToVehicle(
	ctx context.Context,
	vehicleID string,
	req RecordPaymentRequest,
) (AllocationResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	if _, err := uuid.Parse(vehicleID); err != nil {
		return AllocationResponse{}, vehicleserviceerrors.ErrInvalidVehicleID
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		return AllocationResponse{}, err
	}
	if !req.Amount.IsPositive() {
		return AllocationResponse{}, vehicleserviceerrors.ErrInvalidAmount
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		a.logger.Error("bulk allocate begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return AllocationResponse{}, err
	}
	defer tx.Rollback()

	qtx := a.repo.WithTx(tx)
	qsvc := a.serviceRepo.WithTx(tx)

	outstanding, err := qsvc.FindOutstandingByVehicleForUpdate(ctx, vehicleID)
	if err != nil {
		return AllocationResponse{}, err
	}
	if len(outstanding) == 0 {
		return AllocationResponse{}, paymenterrors.ErrNoOutstandingServices
	}

	remainder := req.Amount
	resp := AllocationResponse{Payments: make([]PaymentResponse, 0, len(outstanding))}

	for i := range outstanding {
		if !remainder.IsPositive() {
			break
		}
		svc := &outstanding[i]

		leftover, err := svc.ApplyPayment(remainder)
		if err != nil {
			return AllocationResponse{}, err
		}
		consumed := remainder.Sub(leftover)
		remainder = leftover

		record, err := a.createPaymentInTx(ctx, qtx, svc, consumed, req, paymentDate)
		if err != nil {
			return AllocationResponse{}, err
		}

		if err := qsvc.UpdateTotals(ctx, svc); err != nil {
			return AllocationResponse{}, err
		}

		if err := a.emitPaymentRecorded(ctx, tx, rid, record, svc, money.Zero); err != nil {
			return AllocationResponse{}, err
		}

		resp.Payments = append(resp.Payments, mapToResponse(*record))
	}

	resp.ExcessAmount = remainder
	resp.TotalApplied = req.Amount.Sub(remainder)

	if err := tx.Commit(); err != nil {
		return AllocationResponse{}, err
	}

	if remainder.IsPositive() {
		a.logger.Warn("bulk payment exceeded vehicle debt",
			zap.String("request_id", rid),
			zap.String("vehicle_id", vehicleID),
			zap.String("excess_amount", remainder.String()),
		)
	}

	return resp, nil
}

// Update re-points an existing receipt at a new amount: the old amount is
// reversed off the service first, then the new one applied with the same cap
// rule as a fresh payment.
func (a *allocator) Update(
	ctx context.Context,
	id string,
	req UpdatePaymentRequest,
) (PaymentResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PaymentResponse{}, paymenterrors.ErrInvalidPaymentID
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		return PaymentResponse{}, err
	}
	if !req.Amount.IsPositive() {
		return PaymentResponse{}, vehicleserviceerrors.ErrInvalidAmount
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return PaymentResponse{}, err
	}
	defer tx.Rollback()

	qtx := a.repo.WithTx(tx)
	qsvc := a.serviceRepo.WithTx(tx)

	record, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PaymentResponse{}, paymenterrors.ErrPaymentNotFound
		}
		return PaymentResponse{}, err
	}

	svc, err := qsvc.FindByIDForUpdate(ctx, record.ServiceID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PaymentResponse{}, vehicleserviceerrors.ErrServiceNotFound
		}
		return PaymentResponse{}, err
	}

	if err := svc.ReversePayment(record.Amount); err != nil {
		return PaymentResponse{}, err
	}

	leftover, err := svc.ApplyPayment(req.Amount)
	if err != nil {
		return PaymentResponse{}, err
	}

	record.Amount = req.Amount.Sub(leftover)
	record.PaymentMethod = req.PaymentMethod
	record.TransactionID = req.TransactionID
	record.Notes = req.Notes
	record.PaymentDate = paymentDate

	if err := qtx.UpdateAmount(ctx, record); err != nil {
		return PaymentResponse{}, err
	}

	if err := qsvc.UpdateTotals(ctx, svc); err != nil {
		return PaymentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PaymentResponse{}, err
	}

	resp := mapToResponse(*record)
	resp.ExcessAmount = leftover
	return resp, nil
}

// Delete reverses the receipt off its service and soft-deletes the row.
func (a *allocator) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return paymenterrors.ErrInvalidPaymentID
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := a.repo.WithTx(tx)
	qsvc := a.serviceRepo.WithTx(tx)

	record, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return paymenterrors.ErrPaymentNotFound
		}
		return err
	}

	svc, err := qsvc.FindByIDForUpdate(ctx, record.ServiceID.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return vehicleserviceerrors.ErrServiceNotFound
		}
		return err
	}

	if err := svc.ReversePayment(record.Amount); err != nil {
		return err
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}

	if err := qsvc.UpdateTotals(ctx, svc); err != nil {
		return err
	}

	return tx.Commit()
}

func (a *allocator) GetByService(ctx context.Context, serviceID string) ([]PaymentResponse, error) {
	if _, err := uuid.Parse(serviceID); err != nil {
		return nil, vehicleserviceerrors.ErrInvalidServiceID
	}

	payments, err := a.repo.FindByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	resp := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		resp[i] = mapToResponse(p)
	}
	return resp, nil
}

func (a *allocator) createPaymentInTx(
	ctx context.Context,
	qtx Repository,
	svc *vehicleservice.Service,
	consumed money.Money,
	req RecordPaymentRequest,
	paymentDate time.Time,
) (*Payment, error) {
	nextVal, err := a.counter.GetNextValue(ctx, counter.TypeReceiptNumber)
	if err != nil {
		a.logger.Error("generate receipt number failed", zap.Error(err))
		return nil, err
	}

	record := &Payment{
		ID:            uuid.New(),
		ServiceID:     svc.ID,
		ReceiptNumber: fmt.Sprintf("PAY-%06d", nextVal),
		Amount:        consumed,
		PaymentMethod: req.PaymentMethod,
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		PaymentDate:   paymentDate,
	}

	if err := qtx.Create(ctx, record); err != nil {
		a.logger.Error("persist payment failed",
			zap.String("service_id", svc.ID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	return record, nil
}

func (a *allocator) emitPaymentRecorded(
	ctx context.Context,
	tx *sql.Tx,
	rid string,
	record *Payment,
	svc *vehicleservice.Service,
	excess money.Money,
) error {
	if a.outbox == nil {
		return nil
	}

	event := events.PaymentRecordedEvent{
		EventType:     "payment_recorded",
		PaymentID:     record.ID.String(),
		ServiceID:     svc.ID.String(),
		VehicleID:     svc.VehicleID.String(),
		ReceiptNumber: record.ReceiptNumber,
		Amount:        record.Amount.String(),
		OccurredAt:    time.Now().UTC(),
	}
	if excess.IsPositive() {
		event.ExcessAmount = excess.String()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		a.logger.Error("marshal payment event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	outboxRepo := a.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payment",
		AggregateID:   record.ID.String(),
		EventType:     event.EventType,
		Topic:         events.PaymentRecordedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		a.logger.Error("payment outbox persist failed",
			zap.String("payment_id", record.ID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, paymenterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(p Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID.String(),
		ServiceID:     p.ServiceID.String(),
		ReceiptNumber: p.ReceiptNumber,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		Notes:         p.Notes,
		PaymentDate:   p.PaymentDate.Format("2006-01-02"),
	}
}
