package vehicleserviceerrors

import (
	"net/http"

	"go-garage/internal/shared/apperror"
)

var (
	ErrServiceNotFound = apperror.New(
		apperror.CodeNotFound,
		"service not found",
		http.StatusNotFound,
	)
	ErrInvalidServiceID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid service id",
		http.StatusBadRequest,
	)
	ErrInvalidVehicleID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid vehicle id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidCost = apperror.New(
		apperror.CodeInvalidInput,
		"service cost cannot be negative",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"payment amount must be greater than zero",
		http.StatusBadRequest,
	)
	// ErrInconsistentState means a service's money fields no longer satisfy
	// remaining = cost - paid with 0 <= paid <= cost. It is a data-integrity
	// failure: the surrounding batch must abort, nothing may be auto-fixed.
	ErrInconsistentState = apperror.New(
		apperror.CodeInconsistentState,
		"service payment fields violate settlement invariants",
		http.StatusInternalServerError,
	)
	ErrServiceDeletedWithPayments = apperror.New(
		apperror.CodeInvalidState,
		"service still has payments attached",
		http.StatusConflict,
	)
)
