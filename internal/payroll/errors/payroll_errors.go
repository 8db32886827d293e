package payrollerrors

import (
	"net/http"

	"go-garage/internal/shared/apperror"
)

var (
	ErrEmptySelection = apperror.New(
		apperror.CodeInvalidInput,
		"at least one employee must be selected",
		http.StatusBadRequest,
	)
	ErrDuplicateSelection = apperror.New(
		apperror.CodeInvalidInput,
		"an employee appears more than once in the selection",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrNegativeDeduction = apperror.New(
		apperror.CodeInvalidInput,
		"manual deduction cannot be negative",
		http.StatusBadRequest,
	)
	ErrEmployeeNotPayable = apperror.New(
		apperror.CodeInvalidState,
		"selection contains an unknown or inactive employee",
		http.StatusConflict,
	)
	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"pay run not found",
		http.StatusNotFound,
	)
	ErrInvalidRunID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid pay run id",
		http.StatusBadRequest,
	)
)
