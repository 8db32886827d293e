package employeepayment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-garage/internal/employee"
	employeeerrors "go-garage/internal/employee/errors"
	employeepaymenterrors "go-garage/internal/employeepayment/errors"
	"go-garage/internal/shared/contextutil"
	"go-garage/internal/shared/money"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_payment_service.go -destination=mock/employee_payment_service_mock.go -package=mock
type Service interface {
	RecordAdvance(ctx context.Context, employeeID string, req RecordAdvanceRequest) (EntryResponse, error)
	RecordDeduction(ctx context.Context, employeeID string, req RecordDeductionRequest) (EntryResponse, error)
	Confirm(ctx context.Context, id string) (EntryResponse, error)
	GetLedger(ctx context.Context, employeeID string) (LedgerResponse, error)
	GetBalance(ctx context.Context, employeeID string, asOf string) (BalanceResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("employeepayment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employeepayment.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		logger:       l,
	}
}

// RecordAdvance writes a pending advance entry. The advance debits the
// balance immediately; pending only means it has not been folded into a pay
// run yet.
func (s *service) RecordAdvance(ctx context.Context, employeeID string, req RecordAdvanceRequest) (EntryResponse, error) {
	return s.recordDebit(ctx, employeeID, TypeAdvance, req.Amount, req.Notes, req.PaymentDate, StatusPending)
}

// RecordDeduction writes a one-off deduction outside of a pay run, for
// charges such as damaged tools.
func (s *service) RecordDeduction(ctx context.Context, employeeID string, req RecordDeductionRequest) (EntryResponse, error) {
	return s.recordDebit(ctx, employeeID, TypeDeduction, req.Amount, req.Notes, req.PaymentDate, StatusPaid)
}

func (s *service) recordDebit(
	ctx context.Context,
	employeeID string,
	paymentType string,
	amount money.Money,
	notes *string,
	paymentDate string,
	status string,
) (EntryResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	emplUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return EntryResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	if !amount.IsPositive() {
		return EntryResponse{}, employeepaymenterrors.ErrInvalidAmount
	}
	day, err := parseDate(paymentDate)
	if err != nil {
		return EntryResponse{}, err
	}

	empl, err := s.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EntryResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return EntryResponse{}, err
	}
	if !empl.IsActive() {
		return EntryResponse{}, employeeerrors.ErrEmployeeInactive
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("record entry begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry := &EmployeePayment{
		ID:          uuid.New(),
		EmployeeID:  emplUUID,
		PaymentType: paymentType,
		Amount:      amount,
		Status:      status,
		Notes:       notes,
		PaymentDate: day,
	}

	if err := qtx.Create(ctx, entry); err != nil {
		s.logger.Error("record entry persist failed",
			zap.String("employee_id", employeeID),
			zap.String("payment_type", paymentType),
			zap.Error(err),
		)
		return EntryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return EntryResponse{}, err
	}

	s.logger.Info("ledger entry recorded",
		zap.String("request_id", rid),
		zap.String("employee_id", employeeID),
		zap.String("payment_type", paymentType),
		zap.String("amount", amount.String()),
	)

	return mapToResponse(*entry), nil
}

// Confirm flips a pending salary entry to paid, making it count toward the
// employee's balance. Only salary entries go through confirmation.
func (s *service) Confirm(ctx context.Context, id string) (EntryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EntryResponse{}, employeepaymenterrors.ErrInvalidEntryID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return EntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	entry, err := qtx.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EntryResponse{}, employeepaymenterrors.ErrEntryNotFound
		}
		return EntryResponse{}, err
	}

	if entry.PaymentType != TypeSalary {
		return EntryResponse{}, employeepaymenterrors.ErrNotConfirmable
	}
	if entry.Status == StatusPaid {
		return EntryResponse{}, employeepaymenterrors.ErrAlreadyConfirmed
	}

	entry.Status = StatusPaid
	if err := qtx.UpdateStatus(ctx, entry); err != nil {
		return EntryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return EntryResponse{}, err
	}

	return mapToResponse(*entry), nil
}

func (s *service) GetLedger(ctx context.Context, employeeID string) (LedgerResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return LedgerResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	if _, err := s.employeeRepo.FindByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LedgerResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return LedgerResponse{}, err
	}

	entries, err := s.repo.FindByEmployee(ctx, employeeID, nil)
	if err != nil {
		return LedgerResponse{}, err
	}

	resp := LedgerResponse{
		EmployeeID: employeeID,
		Entries:    make([]EntryResponse, len(entries)),
		Balance:    ComputeBalance(entries),
	}
	for i, entry := range entries {
		resp.Entries[i] = mapToResponse(entry)
	}

	return resp, nil
}

func (s *service) GetBalance(ctx context.Context, employeeID string, asOf string) (BalanceResponse, error) {
	if _, err := uuid.Parse(employeeID); err != nil {
		return BalanceResponse{}, employeeerrors.ErrInvalidEmployeeID
	}

	var cutoff *time.Time
	if asOf != "" {
		day, err := parseDate(asOf)
		if err != nil {
			return BalanceResponse{}, err
		}
		cutoff = &day
	}

	if _, err := s.employeeRepo.FindByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return BalanceResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return BalanceResponse{}, err
	}

	entries, err := s.repo.FindByEmployee(ctx, employeeID, cutoff)
	if err != nil {
		return BalanceResponse{}, err
	}

	resp := BalanceResponse{
		EmployeeID: employeeID,
		Balance:    ComputeBalance(entries),
	}
	if asOf != "" {
		resp.AsOf = &asOf
	}

	return resp, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, employeepaymenterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(entry EmployeePayment) EntryResponse {
	resp := EntryResponse{
		ID:          entry.ID.String(),
		EmployeeID:  entry.EmployeeID.String(),
		PaymentType: entry.PaymentType,
		Amount:      entry.Amount,
		Status:      entry.Status,
		Notes:       entry.Notes,
		PaymentDate: entry.PaymentDate.Format("2006-01-02"),
	}
	if entry.RunID != nil {
		v := entry.RunID.String()
		resp.RunID = &v
	}
	return resp
}
