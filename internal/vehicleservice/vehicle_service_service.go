package vehicleservice

import (
	"context"
	"database/sql"
	"errors"
	"time"

	vehicleserviceerrors "go-garage/internal/vehicleservice/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=vehicle_service_service.go -destination=mock/vehicle_service_service_mock.go -package=mock
type ServiceManager interface {
	Create(ctx context.Context, req CreateServiceRequest) (ServiceResponse, error)
	GetAll(ctx context.Context, filter ListFilter) ([]ServiceResponse, error)
	GetByID(ctx context.Context, id string) (ServiceResponse, error)
	Update(ctx context.Context, id string, req UpdateServiceRequest) (ServiceResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceManager struct {
	db   *sql.DB
	repo Repository
}

func NewServiceManager(db *sql.DB, repo Repository) ServiceManager {
	return &serviceManager{db: db, repo: repo}
}

func (s *serviceManager) Create(ctx context.Context, req CreateServiceRequest) (ServiceResponse, error) {
	vehicleID, err := uuid.Parse(req.VehicleID)
	if err != nil {
		return ServiceResponse{}, vehicleserviceerrors.ErrInvalidVehicleID
	}

	serviceDate, err := parseDate(req.ServiceDate)
	if err != nil {
		return ServiceResponse{}, err
	}

	if req.Cost.IsNegative() {
		return ServiceResponse{}, vehicleserviceerrors.ErrInvalidCost
	}

	status := req.Status
	if status == "" {
		status = StatusPending
	}

	record := &Service{
		ID:              uuid.New(),
		VehicleID:       vehicleID,
		Description:     req.Description,
		Cost:            req.Cost,
		AmountPaid:      0,
		RemainingAmount: req.Cost,
		Status:          status,
		PaymentStatus:   PaymentStatusPending,
		ServiceDate:     serviceDate,
	}
	if record.RemainingAmount.IsZero() {
		record.PaymentStatus = PaymentStatusPaid
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return ServiceResponse{}, err
	}

	return mapToResponse(*record), nil
}

func (s *serviceManager) GetAll(ctx context.Context, filter ListFilter) ([]ServiceResponse, error) {
	if filter.VehicleID != "" {
		if _, err := uuid.Parse(filter.VehicleID); err != nil {
			return nil, vehicleserviceerrors.ErrInvalidVehicleID
		}
	}

	services, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]ServiceResponse, len(services))
	for i, svc := range services {
		resp[i] = mapToResponse(svc)
	}
	return resp, nil
}

func (s *serviceManager) GetByID(ctx context.Context, id string) (ServiceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ServiceResponse{}, vehicleserviceerrors.ErrInvalidServiceID
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ServiceResponse{}, vehicleserviceerrors.ErrServiceNotFound
		}
		return ServiceResponse{}, err
	}

	return mapToResponse(*record), nil
}

// Update changes the descriptive fields only. Cost and the paid totals are
// owned by the payment allocator and never move through this path.
func (s *serviceManager) Update(ctx context.Context, id string, req UpdateServiceRequest) (ServiceResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ServiceResponse{}, vehicleserviceerrors.ErrInvalidServiceID
	}

	serviceDate, err := parseDate(req.ServiceDate)
	if err != nil {
		return ServiceResponse{}, err
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ServiceResponse{}, vehicleserviceerrors.ErrServiceNotFound
		}
		return ServiceResponse{}, err
	}

	record.Description = req.Description
	record.Status = req.Status
	record.ServiceDate = serviceDate

	if err := s.repo.Update(ctx, record); err != nil {
		return ServiceResponse{}, err
	}

	return mapToResponse(*record), nil
}

func (s *serviceManager) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return vehicleserviceerrors.ErrInvalidServiceID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vehicleserviceerrors.ErrServiceNotFound
		}
		return err
	}

	hasPayments, err := s.repo.HasPayments(ctx, id)
	if err != nil {
		return err
	}
	if hasPayments {
		return vehicleserviceerrors.ErrServiceDeletedWithPayments
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return err
	}

	return tx.Commit()
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, vehicleserviceerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(svc Service) ServiceResponse {
	return ServiceResponse{
		ID:              svc.ID.String(),
		VehicleID:       svc.VehicleID.String(),
		Description:     svc.Description,
		Cost:            svc.Cost,
		AmountPaid:      svc.AmountPaid,
		RemainingAmount: svc.RemainingAmount,
		Status:          svc.Status,
		PaymentStatus:   svc.PaymentStatus,
		ServiceDate:     svc.ServiceDate.Format("2006-01-02"),
	}
}
