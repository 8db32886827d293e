package employeepayment

import (
	"context"
	"database/sql"
	"time"

	"go-garage/internal/shared/money"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_payment_repo.go -destination=mock/employee_payment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, entry *EmployeePayment) error
	FindByID(ctx context.Context, id string) (*EmployeePayment, error)
	FindByIDForUpdate(ctx context.Context, id string) (*EmployeePayment, error)
	FindByEmployee(ctx context.Context, employeeID string, asOf *time.Time) ([]EmployeePayment, error)
	UpdateStatus(ctx context.Context, entry *EmployeePayment) error
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

// Create inserts through the enclosing transaction so payroll commits land
// atomically with their outbox events.
func (r *repository) Create(ctx context.Context, entry *EmployeePayment) error {
	query := `
INSERT INTO employee_payments (
	id, employee_id, run_id, payment_type, amount, status, notes, payment_date,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
`
	var runID *string
	if entry.RunID != nil {
		v := entry.RunID.String()
		runID = &v
	}

	_, err := r.execer().ExecContext(
		ctx, query,
		entry.ID.String(), entry.EmployeeID.String(), runID,
		entry.PaymentType, entry.Amount.Units(), entry.Status,
		entry.Notes, entry.PaymentDate,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*EmployeePayment, error) {
	var entry EmployeePayment
	err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error
	return &entry, err
}

// FindByIDForUpdate locks the entry so two confirmations of the same salary
// row serialize.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*EmployeePayment, error) {
	query := `
SELECT
	id::text,
	employee_id::text,
	run_id::text,
	payment_type,
	amount,
	status,
	notes,
	payment_date
FROM employee_payments
WHERE id = $1 AND deleted_at IS NULL
FOR UPDATE
`
	row := r.queryer().QueryRowContext(ctx, query, id)

	var (
		entry      EmployeePayment
		id2        string
		employeeID string
		runID      sql.NullString
		amount     int64
	)
	err := row.Scan(
		&id2, &employeeID, &runID, &entry.PaymentType, &amount,
		&entry.Status, &entry.Notes, &entry.PaymentDate,
	)
	if err != nil {
		return nil, err
	}

	if err := entry.ID.UnmarshalText([]byte(id2)); err != nil {
		return nil, err
	}
	if err := entry.EmployeeID.UnmarshalText([]byte(employeeID)); err != nil {
		return nil, err
	}
	if runID.Valid {
		parsed, err := uuid.Parse(runID.String)
		if err != nil {
			return nil, err
		}
		entry.RunID = &parsed
	}
	entry.Amount = money.FromUnits(amount)

	return &entry, nil
}

func (r *repository) FindByEmployee(ctx context.Context, employeeID string, asOf *time.Time) ([]EmployeePayment, error) {
	var entries []EmployeePayment
	query := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("payment_date ASC, created_at ASC")

	if asOf != nil {
		query = query.Where("payment_date <= ?", *asOf)
	}

	err := query.Find(&entries).Error
	return entries, err
}

func (r *repository) UpdateStatus(ctx context.Context, entry *EmployeePayment) error {
	query := `
UPDATE employee_payments
SET status = $2, updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, entry.ID.String(), entry.Status)
	return err
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
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
