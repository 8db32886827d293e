package payment

import (
	"errors"
	"strings"

	paymenterrors "go-garage/internal/payment/errors"

	"github.com/jackc/pgx/v5/pgconn"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_payment_receipt_number" {
			return paymenterrors.ErrDuplicateReceiptNumber
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_payment_receipt_number") {
		return paymenterrors.ErrDuplicateReceiptNumber
	}

	return err
}
