package vehicleservice

import (
	"context"
	"database/sql"
	"time"

	"go-garage/internal/shared/money"

	"gorm.io/gorm"
)

//go:generate mockgen -source=vehicle_service_repo.go -destination=mock/vehicle_service_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, service *Service) error
	FindAll(ctx context.Context, filter ListFilter) ([]Service, error)
	FindByID(ctx context.Context, id string) (*Service, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Service, error)
	FindOutstandingByVehicleForUpdate(ctx context.Context, vehicleID string) ([]Service, error)
	UpdateTotals(ctx context.Context, service *Service) error
	Update(ctx context.Context, service *Service) error
	Delete(ctx context.Context, id string) error
	HasPayments(ctx context.Context, serviceID string) (bool, error)
}

type ListFilter struct {
	VehicleID     string
	Status        string
	PaymentStatus string
}

type repository struct {
	db    *gorm.DB
	sqlDB *sql.DB
	tx    *sql.Tx
}

func NewRepository(db *gorm.DB, sqlDB *sql.DB) Repository {
	return &repository{db: db, sqlDB: sqlDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db:    r.db,
		sqlDB: r.sqlDB,
		tx:    tx,
	}
}

func (r *repository) Create(ctx context.Context, service *Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *repository) FindAll(ctx context.Context, filter ListFilter) ([]Service, error) {
	var services []Service
	query := r.db.WithContext(ctx).Order("service_date DESC, created_at DESC")

	if filter.VehicleID != "" {
		query = query.Where("vehicle_id = ?", filter.VehicleID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}

	err := query.Find(&services).Error
	return services, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Service, error) {
	var service Service
	err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error
	return &service, err
}

const serviceColumns = `
	id::text,
	vehicle_id::text,
	description,
	cost,
	amount_paid,
	remaining_amount,
	status,
	payment_status,
	service_date
`

// FindByIDForUpdate locks the service row for the duration of the enclosing
// transaction so concurrent allocations serialize on it.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Service, error) {
	query := `
SELECT ` + serviceColumns + `
FROM vehicle_services
WHERE id = $1 AND deleted_at IS NULL
FOR UPDATE
`
	row := r.queryer().QueryRowContext(ctx, query, id)
	return scanService(row)
}

// FindOutstandingByVehicleForUpdate returns the vehicle's unsettled services
// oldest-first. Rows are locked in (service_date, id) order so two bulk
// allocations against the same vehicle never deadlock on each other.
func (r *repository) FindOutstandingByVehicleForUpdate(ctx context.Context, vehicleID string) ([]Service, error) {
	query := `
SELECT ` + serviceColumns + `
FROM vehicle_services
WHERE vehicle_id = $1
	AND payment_status IN ($2, $3)
	AND deleted_at IS NULL
ORDER BY service_date ASC, id ASC
FOR UPDATE
`

	rows, err := r.queryer().QueryContext(ctx, query, vehicleID, PaymentStatusPending, PaymentStatusPartial)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *s)
	}

	return services, rows.Err()
}

// UpdateTotals persists the money fields after the allocator mutated them.
// It always runs through the enclosing transaction's execer.
func (r *repository) UpdateTotals(ctx context.Context, service *Service) error {
	query := `
UPDATE vehicle_services
SET
	amount_paid = $2,
	remaining_amount = $3,
	payment_status = $4,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(
		ctx, query,
		service.ID.String(), service.AmountPaid.Units(),
		service.RemainingAmount.Units(), service.PaymentStatus,
	)
	return err
}

func (r *repository) Update(ctx context.Context, service *Service) error {
	return r.db.WithContext(ctx).Save(service).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&Service{}, "id = ?", id).Error
}

func (r *repository) HasPayments(ctx context.Context, serviceID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("payments").
		Where("service_id = ?", serviceID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanService(row rowScanner) (*Service, error) {
	var (
		s          Service
		id         string
		vehicleID  string
		cost       int64
		paid       int64
		remaining  int64
		serviceDay time.Time
	)

	err := row.Scan(
		&id, &vehicleID, &s.Description,
		&cost, &paid, &remaining,
		&s.Status, &s.PaymentStatus, &serviceDay,
	)
	if err != nil {
		return nil, err
	}

	if err := s.ID.UnmarshalText([]byte(id)); err != nil {
		return nil, err
	}
	if err := s.VehicleID.UnmarshalText([]byte(vehicleID)); err != nil {
		return nil, err
	}
	s.Cost = money.FromUnits(cost)
	s.AmountPaid = money.FromUnits(paid)
	s.RemainingAmount = money.FromUnits(remaining)
	s.ServiceDate = serviceDay

	return &s, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}

func (r *repository) queryer() interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
