package employeepaymenterrors

import (
	"net/http"

	"go-garage/internal/shared/apperror"
)

var (
	ErrEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"employee payment not found",
		http.StatusNotFound,
	)
	ErrInvalidEntryID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee payment id",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrAlreadyConfirmed = apperror.New(
		apperror.CodeConflict,
		"payment is already confirmed",
		http.StatusConflict,
	)
	ErrNotConfirmable = apperror.New(
		apperror.CodeInvalidState,
		"only pending salary payments can be confirmed",
		http.StatusConflict,
	)
)
