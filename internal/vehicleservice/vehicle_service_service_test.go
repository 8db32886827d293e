package vehicleservice_test

import (
	"context"
	"database/sql"
	"testing"

	"go-garage/internal/shared/money"
	"go-garage/internal/vehicleservice"
	vehicleserviceerrors "go-garage/internal/vehicleservice/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeServiceRepository struct {
	withTxFn            func(tx *sql.Tx) vehicleservice.Repository
	createFn            func(ctx context.Context, service *vehicleservice.Service) error
	findAllFn           func(ctx context.Context, filter vehicleservice.ListFilter) ([]vehicleservice.Service, error)
	findByIDFn          func(ctx context.Context, id string) (*vehicleservice.Service, error)
	findByIDForUpdateFn func(ctx context.Context, id string) (*vehicleservice.Service, error)
	findOutstandingFn   func(ctx context.Context, vehicleID string) ([]vehicleservice.Service, error)
	updateTotalsFn      func(ctx context.Context, service *vehicleservice.Service) error
	updateFn            func(ctx context.Context, service *vehicleservice.Service) error
	deleteFn            func(ctx context.Context, id string) error
	hasPaymentsFn       func(ctx context.Context, serviceID string) (bool, error)
}

func (f *fakeServiceRepository) WithTx(tx *sql.Tx) vehicleservice.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeServiceRepository) Create(ctx context.Context, service *vehicleservice.Service) error {
	if f.createFn != nil {
		return f.createFn(ctx, service)
	}
	return nil
}

func (f *fakeServiceRepository) FindAll(ctx context.Context, filter vehicleservice.ListFilter) ([]vehicleservice.Service, error) {
	if f.findAllFn != nil {
		return f.findAllFn(ctx, filter)
	}
	return nil, nil
}

func (f *fakeServiceRepository) FindByID(ctx context.Context, id string) (*vehicleservice.Service, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
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
	if f.updateFn != nil {
		return f.updateFn(ctx, service)
	}
	return nil
}

func (f *fakeServiceRepository) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeServiceRepository) HasPayments(ctx context.Context, serviceID string) (bool, error) {
	if f.hasPaymentsFn != nil {
		return f.hasPaymentsFn(ctx, serviceID)
	}
	return false, nil
}

type serviceManagerDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	manager vehicleservice.ServiceManager
	repo    *fakeServiceRepository
}

func setupServiceManagerTest(t *testing.T) *serviceManagerDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeServiceRepository{}
	manager := vehicleservice.NewServiceManager(db, repo)

	return &serviceManagerDeps{db: db, sqlMock: sqlMock, manager: manager, repo: repo}
}

func TestCreateServiceStartsUnpaid(t *testing.T) {
	deps := setupServiceManagerTest(t)
	defer deps.db.Close()

	var stored *vehicleservice.Service
	deps.repo.createFn = func(ctx context.Context, service *vehicleservice.Service) error {
		stored = service
		return nil
	}

	cost, _ := money.FromString("350.00")
	resp, err := deps.manager.Create(context.Background(), vehicleservice.CreateServiceRequest{
		VehicleID:   uuid.NewString(),
		Description: "brake pad replacement",
		Cost:        cost,
		ServiceDate: "2026-08-15",
	})

	assert.NoError(t, err)
	assert.NotNil(t, stored)
	assert.Equal(t, "350.00", resp.Cost.String())
	assert.True(t, resp.AmountPaid.IsZero())
	assert.Equal(t, "350.00", resp.RemainingAmount.String())
	assert.Equal(t, vehicleservice.StatusPending, resp.Status)
	assert.Equal(t, vehicleservice.PaymentStatusPending, resp.PaymentStatus)
}

func TestCreateServiceZeroCostIsPaid(t *testing.T) {
	deps := setupServiceManagerTest(t)
	defer deps.db.Close()

	resp, err := deps.manager.Create(context.Background(), vehicleservice.CreateServiceRequest{
		VehicleID:   uuid.NewString(),
		Description: "warranty inspection",
		Cost:        money.Zero,
		ServiceDate: "2026-08-15",
	})

	assert.NoError(t, err)
	assert.Equal(t, vehicleservice.PaymentStatusPaid, resp.PaymentStatus)
}

func TestCreateServiceRejectsNegativeCost(t *testing.T) {
	deps := setupServiceManagerTest(t)
	defer deps.db.Close()

	_, err := deps.manager.Create(context.Background(), vehicleservice.CreateServiceRequest{
		VehicleID:   uuid.NewString(),
		Description: "oil change",
		Cost:        money.FromUnits(-100),
		ServiceDate: "2026-08-15",
	})

	assert.ErrorIs(t, err, vehicleserviceerrors.ErrInvalidCost)
}

func TestCreateServiceRejectsBadDate(t *testing.T) {
	deps := setupServiceManagerTest(t)
	defer deps.db.Close()

	_, err := deps.manager.Create(context.Background(), vehicleservice.CreateServiceRequest{
		VehicleID:   uuid.NewString(),
		Description: "oil change",
		Cost:        money.FromUnits(5000),
		ServiceDate: "15-08-2026",
	})

	assert.ErrorIs(t, err, vehicleserviceerrors.ErrInvalidDateFormat)
}

func TestGetByIDNotFound(t *testing.T) {
	deps := setupServiceManagerTest(t)
	defer deps.db.Close()

	_, err := deps.manager.GetByID(context.Background(), uuid.NewString())

	assert.ErrorIs(t, err, vehicleserviceerrors.ErrServiceNotFound)
}

func TestDeleteServiceWithPaymentsFails(t *testing.T) {
	deps := setupServiceManagerTest(t)
	defer deps.db.Close()

	id := uuid.New()
	deps.repo.findByIDFn = func(ctx context.Context, _ string) (*vehicleservice.Service, error) {
		return &vehicleservice.Service{ID: id}, nil
	}
	deps.repo.hasPaymentsFn = func(ctx context.Context, serviceID string) (bool, error) {
		return true, nil
	}

	deps.sqlMock.ExpectBegin()
	deps.sqlMock.ExpectRollback()

	err := deps.manager.Delete(context.Background(), id.String())

	assert.ErrorIs(t, err, vehicleserviceerrors.ErrServiceDeletedWithPayments)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestDeleteService(t *testing.T) {
	deps := setupServiceManagerTest(t)
	defer deps.db.Close()

	id := uuid.New()
	deps.repo.findByIDFn = func(ctx context.Context, _ string) (*vehicleservice.Service, error) {
		return &vehicleservice.Service{ID: id}, nil
	}

	deleted := false
	deps.repo.deleteFn = func(ctx context.Context, _ string) error {
		deleted = true
		return nil
	}

	deps.sqlMock.ExpectBegin()
	deps.sqlMock.ExpectCommit()

	err := deps.manager.Delete(context.Background(), id.String())

	assert.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}
