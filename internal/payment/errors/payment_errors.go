package paymenterrors

import (
	"net/http"

	"go-garage/internal/shared/apperror"
)

var (
	ErrPaymentNotFound = apperror.New(
		apperror.CodeNotFound,
		"payment not found",
		http.StatusNotFound,
	)
	ErrInvalidPaymentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payment id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidPaymentMethod = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payment method",
		http.StatusBadRequest,
	)
	ErrNoOutstandingServices = apperror.New(
		apperror.CodeInvalidState,
		"vehicle has no outstanding services",
		http.StatusConflict,
	)
	ErrServiceAlreadySettled = apperror.New(
		apperror.CodeInvalidState,
		"service is already fully paid",
		http.StatusConflict,
	)
	ErrDuplicateReceiptNumber = apperror.New(
		apperror.CodeConflict,
		"receipt number already exists",
		http.StatusConflict,
	)
)
