package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lavadero/carwash_backend/internal/apperrors"
	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/core/pricing"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrPaymentPending is returned when a delivery is attempted on a record that
// is neither paid nor settled via current account. The record stays READY.
var ErrPaymentPending = errors.New("record has pending payment")

// recordService implements the RecordSvcFacade interface.
type recordService struct {
	BaseService
	recordRepo   portsrepo.RecordRepositoryFacade
	accountSvc   portssvc.AccountSvcFacade
	priceListSvc portssvc.PriceListSvcFacade
	promotionSvc portssvc.PromotionSvcFacade
}

// RecordServiceOption is a functional option for configuring the record service
type RecordServiceOption func(*recordService)

// WithRecordBranchAuthorizer adds branch authorizer dependency
func WithRecordBranchAuthorizer(authorizer portssvc.BranchAuthorizerSvc) RecordServiceOption {
	return func(s *recordService) {
		s.BranchAuthorizer = authorizer
	}
}

// NewRecordService creates a new record service with the provided options
func NewRecordService(
	repo portsrepo.RecordRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	priceListSvc portssvc.PriceListSvcFacade,
	promotionSvc portssvc.PromotionSvcFacade,
	options ...RecordServiceOption,
) portssvc.RecordSvcFacade {
	svc := &recordService{
		recordRepo:   repo,
		accountSvc:   accountSvc,
		priceListSvc: priceListSvc,
		promotionSvc: promotionSvc,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.RecordSvcFacade = (*recordService)(nil)

// IntakeRecord creates a record in IN_PROGRESS with its price frozen.
//
// Price resolution happens exactly once, here: branch snapshot first, built-in
// matrix as fallback, then the promotion and survey benefit stacked in that
// fixed order. Nothing after intake ever recomputes the total.
func (s *recordService) IntakeRecord(ctx context.Context, branchID string, req dto.CreateRecordRequest, userID string) (*domain.ServiceRecord, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}

	if req.ExtraAmount.IsNegative() {
		return nil, fmt.Errorf("%w: extra amount cannot be negative", apperrors.ErrValidation)
	}
	if req.UseCurrentAccount && req.ClientPhone == "" {
		return nil, fmt.Errorf("%w: current-account settlement requires a client phone", apperrors.ErrValidation)
	}

	snapshot, err := s.priceListSvc.GetEffectiveSnapshot(ctx, branchID)
	if err != nil {
		s.LogError(ctx, err, "Failed to load price snapshot", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to load prices: %w", err)
	}

	breakdown := pricing.Resolve(req.VehicleCategory, req.ServiceKinds, snapshot)
	if len(breakdown.LineItems) == 0 && req.ExtraAmount.IsZero() {
		return nil, fmt.Errorf("%w: no billable services for %s", apperrors.ErrValidation, req.VehicleCategory)
	}

	now := time.Now()

	promotion, err := s.resolvePromotion(ctx, branchID, req, userID, now)
	if err != nil {
		return nil, err
	}
	benefit, err := s.resolveBenefit(ctx, branchID, req, userID)
	if err != nil {
		return nil, err
	}

	total := pricing.ApplyDiscounts(breakdown.Subtotal, req.ExtraAmount, promotion, benefit)

	record := domain.ServiceRecord{
		RecordID:         uuid.NewString(),
		BranchID:         branchID,
		VehicleCategory:  req.VehicleCategory,
		ServiceKinds:     dedupKinds(req.ServiceKinds),
		ExtraDescription: req.ExtraDescription,
		ExtraAmount:      req.ExtraAmount,
		ClientName:       req.ClientName,
		ClientPhone:      req.ClientPhone,
		TotalPrice:       total,
		PaymentMethod:    domain.PaymentNone,
		PromotionID:      req.PromotionID,
		BenefitID:        req.BenefitID,
		State:            domain.StateInProgress,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	var account *domain.CurrentAccount
	if req.UseCurrentAccount {
		account, err = s.accountSvc.LookupByPhone(ctx, branchID, req.ClientPhone, userID)
		if err != nil {
			return nil, err
		}
		if account == nil {
			return nil, fmt.Errorf("%w: no current account for phone %s", apperrors.ErrValidation, req.ClientPhone)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: current account is inactive", apperrors.ErrValidation)
		}
		record.AccountID = &account.AccountID
		record.PaidViaAccount = true
	}

	if err := s.recordRepo.SaveRecord(ctx, record); err != nil {
		s.LogError(ctx, err, "Failed to save record", slog.String("record_id", record.RecordID))
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	if account != nil {
		if err := s.accountSvc.DebitForRecord(ctx, branchID, account.AccountID, record.RecordID, total, userID); err != nil {
			// The record is unusable without its settlement; undo the insert.
			if delErr := s.recordRepo.DeleteRecord(ctx, record.RecordID); delErr != nil {
				s.LogError(ctx, delErr, "Failed to clean up record after debit failure",
					slog.String("record_id", record.RecordID))
			}
			return nil, err
		}
	}

	// The benefit is consumed only once the record and its settlement are
	// durable; a failed intake leaves it pending. Voiding the record later does
	// not resurrect it.
	if benefit != nil {
		if _, err := s.promotionSvc.RedeemBenefit(ctx, branchID, benefit.BenefitID, userID); err != nil {
			s.undoIntake(ctx, branchID, record, userID)
			if errors.Is(err, apperrors.ErrConflict) {
				return nil, fmt.Errorf("%w: benefit already redeemed", apperrors.ErrValidation)
			}
			return nil, err
		}
	}

	s.LogInfo(ctx, "Record created",
		slog.String("record_id", record.RecordID),
		slog.String("branch_id", branchID),
		slog.String("total", total.String()))
	return &record, nil
}

// undoIntake best-effort compensates a failed intake: credits back any debit
// already taken and removes the inserted record. Failures here are logged, not
// returned; the caller's original error is the one that surfaces.
func (s *recordService) undoIntake(ctx context.Context, branchID string, record domain.ServiceRecord, userID string) {
	if record.AccountID != nil {
		if _, err := s.accountSvc.ReverseRecordDebit(ctx, branchID, record.RecordID, userID); err != nil {
			s.LogError(ctx, err, "Failed to reverse debit after intake failure",
				slog.String("record_id", record.RecordID))
		}
	}
	if err := s.recordRepo.DeleteRecord(ctx, record.RecordID); err != nil {
		s.LogError(ctx, err, "Failed to clean up record after intake failure",
			slog.String("record_id", record.RecordID))
	}
}

func (s *recordService) resolvePromotion(ctx context.Context, branchID string, req dto.CreateRecordRequest, userID string, now time.Time) (*domain.Promotion, error) {
	if req.PromotionID == nil {
		return nil, nil
	}
	promotion, err := s.promotionSvc.GetPromotionByID(ctx, branchID, *req.PromotionID, userID)
	if err != nil {
		return nil, err
	}
	if !promotion.IsActive || !promotion.InWindow(now) {
		return nil, fmt.Errorf("%w: promotion %s is not currently active", apperrors.ErrValidation, promotion.PromotionID)
	}
	if len(promotion.TargetKinds) > 0 && !kindsOverlap(promotion.TargetKinds, req.ServiceKinds) {
		return nil, fmt.Errorf("%w: promotion %s does not apply to the selected services", apperrors.ErrValidation, promotion.PromotionID)
	}
	return promotion, nil
}

func (s *recordService) resolveBenefit(ctx context.Context, branchID string, req dto.CreateRecordRequest, userID string) (*domain.SurveyBenefit, error) {
	if req.BenefitID == nil {
		return nil, nil
	}
	benefit, err := s.promotionSvc.GetBenefitByID(ctx, branchID, *req.BenefitID, userID)
	if err != nil {
		return nil, err
	}
	if benefit.Status != domain.BenefitPending {
		return nil, fmt.Errorf("%w: benefit %s has already been redeemed", apperrors.ErrValidation, benefit.BenefitID)
	}
	if req.ClientPhone != "" && benefit.ClientPhone != req.ClientPhone {
		return nil, fmt.Errorf("%w: benefit belongs to a different client", apperrors.ErrValidation)
	}
	return benefit, nil
}

// GetRecordByID retrieves a specific service record.
func (s *recordService) GetRecordByID(ctx context.Context, branchID string, recordID string, userID string) (*domain.ServiceRecord, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	return s.findInBranch(ctx, branchID, recordID)
}

// ListRecords retrieves a paginated list of records for a branch.
func (s *recordService) ListRecords(ctx context.Context, branchID string, userID string, params dto.ListRecordsParams) (*dto.ListRecordsResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	records, nextToken, err := s.recordRepo.ListRecordsByBranch(ctx, branchID, params.Limit, params.NextToken, params.IncludeVoided)
	if err != nil {
		s.LogError(ctx, err, "Failed to list records", slog.String("branch_id", branchID))
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	resp := dto.ToListRecordsResponse(records, nextToken)
	return &resp, nil
}

// MarkReady transitions IN_PROGRESS -> READY.
func (s *recordService) MarkReady(ctx context.Context, branchID string, recordID string, userID string) (*domain.ServiceRecord, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}

	record, err := s.findInBranch(ctx, branchID, recordID)
	if err != nil {
		return nil, err
	}
	if record.State != domain.StateInProgress {
		return nil, fmt.Errorf("%w: record is %s, only in-progress records can be marked ready", apperrors.ErrConflict, record.State)
	}

	now := time.Now()
	if err := s.recordRepo.UpdateRecordState(ctx, recordID, domain.StateInProgress, domain.StateReady, nil, &now, nil, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to mark record ready", slog.String("record_id", recordID))
		return nil, err
	}

	record.State = domain.StateReady
	record.ReadyAt = &now
	record.LastUpdatedAt = now
	record.LastUpdatedBy = userID
	return record, nil
}

// MarkDelivered transitions READY -> DELIVERED, gated on settlement.
func (s *recordService) MarkDelivered(ctx context.Context, branchID string, recordID string, userID string) (*domain.ServiceRecord, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}

	record, err := s.findInBranch(ctx, branchID, recordID)
	if err != nil {
		return nil, err
	}
	if record.State != domain.StateReady {
		return nil, fmt.Errorf("%w: record is %s, only ready records can be delivered", apperrors.ErrConflict, record.State)
	}
	if !record.Paid && !record.PaidViaAccount {
		return nil, ErrPaymentPending
	}

	now := time.Now()
	if err := s.recordRepo.UpdateRecordState(ctx, recordID, domain.StateReady, domain.StateDelivered, nil, nil, &now, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to mark record delivered", slog.String("record_id", recordID))
		return nil, err
	}

	record.State = domain.StateDelivered
	record.DeliveredAt = &now
	record.LastUpdatedAt = now
	record.LastUpdatedBy = userID
	return record, nil
}

// RegisterPayment marks an unpaid record as paid by cash or transfer.
func (s *recordService) RegisterPayment(ctx context.Context, branchID string, recordID string, req dto.RegisterPaymentRequest, userID string) (*domain.ServiceRecord, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}

	record, err := s.findInBranch(ctx, branchID, recordID)
	if err != nil {
		return nil, err
	}
	if record.State.IsVoided() {
		return nil, fmt.Errorf("%w: cannot register payment on a voided record", apperrors.ErrConflict)
	}
	if record.Paid || record.PaidViaAccount {
		return nil, fmt.Errorf("%w: record is already settled", apperrors.ErrConflict)
	}

	now := time.Now()
	if err := s.recordRepo.UpdateRecordPayment(ctx, recordID, req.Method, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to register payment", slog.String("record_id", recordID))
		return nil, err
	}

	record.Paid = true
	record.PaymentMethod = req.Method
	record.LastUpdatedAt = now
	record.LastUpdatedBy = userID

	s.LogInfo(ctx, "Payment registered",
		slog.String("record_id", recordID),
		slog.String("method", string(req.Method)))
	return record, nil
}

// CancelRecord transitions IN_PROGRESS -> CANCELLED and reverses any debit.
func (s *recordService) CancelRecord(ctx context.Context, branchID string, recordID string, reason string, userID string) (*domain.ServiceRecord, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleOperator); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: a cancellation reason is required", apperrors.ErrValidation)
	}

	record, err := s.findInBranch(ctx, branchID, recordID)
	if err != nil {
		return nil, err
	}
	if record.State != domain.StateInProgress {
		return nil, fmt.Errorf("%w: record is %s, only in-progress records can be cancelled", apperrors.ErrConflict, record.State)
	}

	// Money moves first. The reversal is idempotent, so if the state update
	// below fails a retried cancel credits nothing twice; the reverse order
	// would strand the debit behind the in-progress guard.
	if _, err := s.voidFinancials(ctx, branchID, record, userID); err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.recordRepo.UpdateRecordState(ctx, recordID, domain.StateInProgress, domain.StateCancelled, &reason, nil, nil, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to cancel record", slog.String("record_id", recordID))
		return nil, err
	}

	record.State = domain.StateCancelled
	record.VoidReason = reason
	record.LastUpdatedAt = now
	record.LastUpdatedBy = userID

	s.LogInfo(ctx, "Record cancelled", slog.String("record_id", recordID))
	return record, nil
}

// AnnulRecord voids a record from any non-annulled state. Branch admins only.
func (s *recordService) AnnulRecord(ctx context.Context, branchID string, recordID string, reason string, userID string) (*domain.ServiceRecord, decimal.Decimal, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleAdmin); err != nil {
		return nil, decimal.Zero, err
	}
	if reason == "" {
		return nil, decimal.Zero, fmt.Errorf("%w: an annulment reason is required", apperrors.ErrValidation)
	}

	record, err := s.findInBranch(ctx, branchID, recordID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if record.State == domain.StateAnnulled {
		return nil, decimal.Zero, fmt.Errorf("%w: record is already annulled", apperrors.ErrConflict)
	}

	// Reverse before flipping the state: once the record reads ANNULLED a
	// retry is rejected at the guard above, so a debit left behind by a failed
	// reversal could never be credited back.
	reversed, err := s.voidFinancials(ctx, branchID, record, userID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	now := time.Now()
	if err := s.recordRepo.UpdateRecordState(ctx, recordID, record.State, domain.StateAnnulled, &reason, nil, nil, userID, now); err != nil {
		s.LogError(ctx, err, "Failed to annul record", slog.String("record_id", recordID))
		return nil, decimal.Zero, err
	}

	record.State = domain.StateAnnulled
	record.VoidReason = reason
	record.LastUpdatedAt = now
	record.LastUpdatedBy = userID

	s.LogInfo(ctx, "Record annulled",
		slog.String("record_id", recordID),
		slog.String("reversed_amount", reversed.String()))
	return record, reversed, nil
}

// DeleteRecord physically removes a record after reversing its debit.
func (s *recordService) DeleteRecord(ctx context.Context, branchID string, recordID string, userID string) (decimal.Decimal, error) {
	if err := s.AuthorizeUser(ctx, userID, branchID, domain.RoleAdmin); err != nil {
		return decimal.Zero, err
	}

	record, err := s.findInBranch(ctx, branchID, recordID)
	if err != nil {
		return decimal.Zero, err
	}

	// Reverse before the row disappears; the reversal movement keeps the
	// record ID as its provenance even after deletion.
	reversed, err := s.voidFinancials(ctx, branchID, record, userID)
	if err != nil {
		return decimal.Zero, err
	}

	if err := s.recordRepo.DeleteRecord(ctx, recordID); err != nil {
		s.LogError(ctx, err, "Failed to delete record", slog.String("record_id", recordID))
		return decimal.Zero, err
	}

	s.LogInfo(ctx, "Record deleted",
		slog.String("record_id", recordID),
		slog.String("reversed_amount", reversed.String()))
	return reversed, nil
}

// voidFinancials is the single money-reversal primitive shared by cancel,
// annul and delete. It is idempotent through the ledger's one-reversal-per-
// record constraint and a no-op for records that never used an account.
func (s *recordService) voidFinancials(ctx context.Context, branchID string, record *domain.ServiceRecord, userID string) (decimal.Decimal, error) {
	if record.AccountID == nil {
		return decimal.Zero, nil
	}
	reversed, err := s.accountSvc.ReverseRecordDebit(ctx, branchID, record.RecordID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// AccountID says money moved at intake; a ledger without the debit
			// is corrupt and must not be papered over as a zero reversal.
			s.LogError(ctx, err, "Account-settled record has no service debit",
				slog.String("record_id", record.RecordID))
			return decimal.Zero, fmt.Errorf("%w: account-settled record %s has no service debit", apperrors.ErrInternal, record.RecordID)
		}
		return decimal.Zero, err
	}
	return reversed, nil
}

func (s *recordService) findInBranch(ctx context.Context, branchID string, recordID string) (*domain.ServiceRecord, error) {
	record, err := s.recordRepo.FindRecordByID(ctx, recordID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find record", slog.String("record_id", recordID))
		}
		return nil, err
	}
	if record.BranchID != branchID {
		return nil, apperrors.ErrNotFound
	}
	return record, nil
}

func dedupKinds(kinds []domain.ServiceKind) []domain.ServiceKind {
	seen := make(map[domain.ServiceKind]struct{}, len(kinds))
	out := make([]domain.ServiceKind, 0, len(kinds))
	for _, k := range kinds {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

func kindsOverlap(a, b []domain.ServiceKind) bool {
	set := make(map[domain.ServiceKind]struct{}, len(a))
	for _, k := range a {
		set[k] = struct{}{}
	}
	for _, k := range b {
		if _, ok := set[k]; ok {
			return true
		}
	}
	return false
}
