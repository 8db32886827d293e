package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-garage/internal/employee"
	"go-garage/internal/employeepayment"
	"go-garage/internal/events"
	"go-garage/internal/messaging/kafka"
	payrollerrors "go-garage/internal/payroll/errors"
	"go-garage/internal/shared/contextutil"
	"go-garage/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error)
	Approve(ctx context.Context, actorID string, req ApproveRequest) (RunResponse, error)
	GetAll(ctx context.Context) ([]RunResponse, error)
	GetByID(ctx context.Context, id string) (RunResponse, error)
}

type service struct {
	db           *sql.DB
	repo         Repository
	employeeRepo employee.Repository
	ledgerRepo   employeepayment.Repository
	counter      counter.Repository
	outbox       kafka.OutboxRepository
	logger       *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employeeRepo employee.Repository,
	ledgerRepo employeepayment.Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:           db,
		repo:         repo,
		employeeRepo: employeeRepo,
		ledgerRepo:   ledgerRepo,
		counter:      counterRepo,
		outbox:       outboxRepo,
		logger:       l,
	}
}

// Preview computes the rows a run would produce without persisting anything.
func (s *service) Preview(ctx context.Context, req PreviewRequest) (PreviewResponse, error) {
	rows, err := s.buildRows(ctx, req.Selections)
	if err != nil {
		return PreviewResponse{}, err
	}

	resp := PreviewResponse{Rows: rows, EmployeeCount: len(rows)}
	for _, row := range rows {
		resp.TotalGross = resp.TotalGross.Add(row.GrossSalary)
		resp.TotalDeductions = resp.TotalDeductions.Add(row.ManualDeduction)
		resp.TotalNet = resp.TotalNet.Add(row.NetPayable)
	}

	return resp, nil
}

// Approve commits a pay run: one pending salary entry per employee at the
// full contracted amount, plus a deduction entry where a manual deduction was
// keyed in. Net payable may go negative when the deduction exceeds the
// salary; that is a valid ledger state, not an error.
func (s *service) Approve(ctx context.Context, actorID string, req ApproveRequest) (RunResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	approvedBy, err := uuid.Parse(actorID)
	if err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidActorID
	}
	paymentDate, err := time.Parse("2006-01-02", req.PaymentDate)
	if err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidDateFormat
	}

	rows, err := s.buildRows(ctx, req.Selections)
	if err != nil {
		return RunResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve run begin tx failed", zap.String("request_id", rid), zap.Error(err))
		return RunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	qledger := s.ledgerRepo.WithTx(tx)

	nextVal, err := s.counter.GetNextValue(ctx, counter.TypePayrollRun)
	if err != nil {
		s.logger.Error("generate run number failed", zap.Error(err))
		return RunResponse{}, err
	}

	run := &PayrollRun{
		ID:          uuid.New(),
		RunNumber:   fmt.Sprintf("RUN-%06d", nextVal),
		ApprovedBy:  approvedBy,
		PaymentDate: paymentDate,
	}

	notesBySelection := make(map[string]*string, len(req.Selections))
	for _, sel := range req.Selections {
		notesBySelection[sel.EmployeeID] = sel.Notes
	}

	for _, row := range rows {
		emplUUID := uuid.MustParse(row.EmployeeID)
		notes := notesBySelection[row.EmployeeID]

		salaryEntry := &employeepayment.EmployeePayment{
			ID:          uuid.New(),
			EmployeeID:  emplUUID,
			RunID:       &run.ID,
			PaymentType: employeepayment.TypeSalary,
			Amount:      row.GrossSalary,
			Status:      employeepayment.StatusPending,
			Notes:       notes,
			PaymentDate: paymentDate,
		}
		if err := qledger.Create(ctx, salaryEntry); err != nil {
			s.logger.Error("persist salary entry failed",
				zap.String("employee_id", row.EmployeeID),
				zap.Error(err),
			)
			return RunResponse{}, err
		}

		if row.ManualDeduction.IsPositive() {
			deductionEntry := &employeepayment.EmployeePayment{
				ID:          uuid.New(),
				EmployeeID:  emplUUID,
				RunID:       &run.ID,
				PaymentType: employeepayment.TypeDeduction,
				Amount:      row.ManualDeduction,
				Status:      employeepayment.StatusPaid,
				Notes:       notes,
				PaymentDate: paymentDate,
			}
			if err := qledger.Create(ctx, deductionEntry); err != nil {
				s.logger.Error("persist deduction entry failed",
					zap.String("employee_id", row.EmployeeID),
					zap.Error(err),
				)
				return RunResponse{}, err
			}
		}

		run.EmployeeCount++
		run.TotalGross = run.TotalGross.Add(row.GrossSalary)
		run.TotalDeductions = run.TotalDeductions.Add(row.ManualDeduction)
		run.TotalNet = run.TotalNet.Add(row.NetPayable)
	}

	if err := qtx.Create(ctx, run); err != nil {
		s.logger.Error("persist pay run failed", zap.Error(err))
		return RunResponse{}, err
	}

	if err := s.emitApproved(ctx, tx, rid, run); err != nil {
		return RunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return RunResponse{}, err
	}

	s.logger.Info("pay run approved",
		zap.String("request_id", rid),
		zap.String("run_id", run.ID.String()),
		zap.String("run_number", run.RunNumber),
		zap.Int("employee_count", run.EmployeeCount),
		zap.String("total_net", run.TotalNet.String()),
	)

	resp := mapToResponse(*run)
	resp.Rows = rows
	return resp, nil
}

func (s *service) GetAll(ctx context.Context) ([]RunResponse, error) {
	runs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]RunResponse, len(runs))
	for i, run := range runs {
		resp[i] = mapToResponse(run)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, id string) (RunResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return RunResponse{}, payrollerrors.ErrInvalidRunID
	}

	run, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RunResponse{}, payrollerrors.ErrRunNotFound
		}
		return RunResponse{}, err
	}

	return mapToResponse(*run), nil
}

// buildRows validates the selection and resolves each employee's contracted
// salary plus carried account balance. Every selected employee must exist
// and be active.
func (s *service) buildRows(ctx context.Context, selections []Selection) ([]Row, error) {
	if len(selections) == 0 {
		return nil, payrollerrors.ErrEmptySelection
	}

	ids := make([]string, 0, len(selections))
	seen := make(map[string]struct{}, len(selections))
	for _, sel := range selections {
		if _, err := uuid.Parse(sel.EmployeeID); err != nil {
			return nil, payrollerrors.ErrEmployeeNotPayable
		}
		if sel.ManualDeduction.IsNegative() {
			return nil, payrollerrors.ErrNegativeDeduction
		}
		if _, dup := seen[sel.EmployeeID]; dup {
			return nil, payrollerrors.ErrDuplicateSelection
		}
		seen[sel.EmployeeID] = struct{}{}
		ids = append(ids, sel.EmployeeID)
	}

	employees, err := s.employeeRepo.FindActiveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(employees) != len(ids) {
		return nil, payrollerrors.ErrEmployeeNotPayable
	}

	byID := make(map[string]employee.Employee, len(employees))
	for _, empl := range employees {
		byID[empl.ID.String()] = empl
	}

	rows := make([]Row, len(selections))
	for i, sel := range selections {
		empl := byID[sel.EmployeeID]

		entries, err := s.ledgerRepo.FindByEmployee(ctx, sel.EmployeeID, nil)
		if err != nil {
			return nil, err
		}
		balance := employeepayment.ComputeBalance(entries)

		rows[i] = Row{
			EmployeeID:      sel.EmployeeID,
			FullName:        empl.FullName,
			GrossSalary:     empl.Salary,
			AccountBalance:  balance,
			ManualDeduction: sel.ManualDeduction,
			NetPayable:      empl.Salary.Add(balance).Sub(sel.ManualDeduction),
		}
	}

	return rows, nil
}

func (s *service) emitApproved(ctx context.Context, tx *sql.Tx, rid string, run *PayrollRun) error {
	if s.outbox == nil {
		return nil
	}

	event := events.PayrollApprovedEvent{
		EventType:     "payroll_approved",
		RunID:         run.ID.String(),
		ApprovedBy:    run.ApprovedBy.String(),
		EmployeeCount: run.EmployeeCount,
		TotalGross:    run.TotalGross.String(),
		TotalNet:      run.TotalNet.String(),
		OccurredAt:    time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("marshal payroll event failed", zap.String("request_id", rid), zap.Error(err))
		return err
	}

	outboxRepo := s.outbox.WithTx(tx)
	if err := outboxRepo.Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "payroll_run",
		AggregateID:   run.ID.String(),
		EventType:     event.EventType,
		Topic:         events.PayrollApprovedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("payroll outbox persist failed",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func mapToResponse(run PayrollRun) RunResponse {
	return RunResponse{
		ID:              run.ID.String(),
		RunNumber:       run.RunNumber,
		ApprovedBy:      run.ApprovedBy.String(),
		PaymentDate:     run.PaymentDate.Format("2006-01-02"),
		EmployeeCount:   run.EmployeeCount,
		TotalGross:      run.TotalGross,
		TotalDeductions: run.TotalDeductions,
		TotalNet:        run.TotalNet,
	}
}
