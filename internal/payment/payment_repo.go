package payment

import (
	"context"
	"database/sql"

	"go-garage/internal/shared/money"

	"gorm.io/gorm"
)

//go:generate mockgen -source=payment_repo.go -destination=mock/payment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id string) (*Payment, error)
	FindByIDForUpdate(ctx context.Context, id string) (*Payment, error)
	FindByService(ctx context.Context, serviceID string) ([]Payment, error)
	UpdateAmount(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, id string) error
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

// Create inserts through the enclosing transaction so the receipt row and the
// service totals always land together.
func (r *repository) Create(ctx context.Context, payment *Payment) error {
	query := `
INSERT INTO payments (
	id, service_id, receipt_number, amount, payment_method,
	transaction_id, notes, payment_date, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
`
	_, err := r.execer().ExecContext(
		ctx, query,
		payment.ID.String(), payment.ServiceID.String(), payment.ReceiptNumber,
		payment.Amount.Units(), payment.PaymentMethod,
		payment.TransactionID, payment.Notes, payment.PaymentDate,
	)
	return mapRepositoryError(err)
}

func (r *repository) FindByID(ctx context.Context, id string) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

const paymentColumns = `
	id::text,
	service_id::text,
	receipt_number,
	amount,
	payment_method,
	transaction_id,
	notes,
	payment_date
`

// FindByIDForUpdate locks the payment row so concurrent edits serialize.
func (r *repository) FindByIDForUpdate(ctx context.Context, id string) (*Payment, error) {
	query := `
SELECT ` + paymentColumns + `
FROM payments
WHERE id = $1 AND deleted_at IS NULL
FOR UPDATE
`
	row := r.queryer().QueryRowContext(ctx, query, id)
	return scanPayment(row)
}

func (r *repository) FindByService(ctx context.Context, serviceID string) ([]Payment, error) {
	var payments []Payment
	err := r.db.WithContext(ctx).
		Where("service_id = ?", serviceID).
		Order("payment_date ASC, created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *repository) UpdateAmount(ctx context.Context, payment *Payment) error {
	query := `
UPDATE payments
SET
	amount = $2,
	payment_method = $3,
	transaction_id = $4,
	notes = $5,
	payment_date = $6,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(
		ctx, query,
		payment.ID.String(), payment.Amount.Units(), payment.PaymentMethod,
		payment.TransactionID, payment.Notes, payment.PaymentDate,
	)
	return err
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `
UPDATE payments
SET deleted_at = NOW(), updated_at = NOW()
WHERE id = $1 AND deleted_at IS NULL
`
	_, err := r.execer().ExecContext(ctx, query, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*Payment, error) {
	var (
		p         Payment
		id        string
		serviceID string
		amount    int64
	)

	err := row.Scan(
		&id, &serviceID, &p.ReceiptNumber, &amount,
		&p.PaymentMethod, &p.TransactionID, &p.Notes, &p.PaymentDate,
	)
	if err != nil {
		return nil, err
	}

	if err := p.ID.UnmarshalText([]byte(id)); err != nil {
		return nil, err
	}
	if err := p.ServiceID.UnmarshalText([]byte(serviceID)); err != nil {
		return nil, err
	}
	p.Amount = money.FromUnits(amount)

	return &p, nil
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
