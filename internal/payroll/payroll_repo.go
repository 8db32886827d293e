package payroll

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, run *PayrollRun) error
	FindAll(ctx context.Context) ([]PayrollRun, error)
	FindByID(ctx context.Context, id string) (*PayrollRun, error)
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

// Create inserts through the enclosing transaction so the run record, its
// ledger entries, and the outbox event commit or roll back together.
func (r *repository) Create(ctx context.Context, run *PayrollRun) error {
	query := `
INSERT INTO payroll_runs (
	id, run_number, approved_by, payment_date, employee_count,
	total_gross, total_deductions, total_net, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
`
	_, err := r.execer().ExecContext(
		ctx, query,
		run.ID.String(), run.RunNumber, run.ApprovedBy.String(), run.PaymentDate,
		run.EmployeeCount, run.TotalGross.Units(), run.TotalDeductions.Units(),
		run.TotalNet.Units(),
	)
	return err
}

func (r *repository) FindAll(ctx context.Context) ([]PayrollRun, error) {
	var runs []PayrollRun
	err := r.db.WithContext(ctx).
		Order("payment_date DESC, created_at DESC").
		Find(&runs).Error
	return runs, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.db.WithContext(ctx).First(&run, "id = ?", id).Error
	return &run, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB
}
