package withdrawals

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatbazaar/beatbazaar-backend/internal/notifications"
	"github.com/beatbazaar/beatbazaar-backend/internal/verification"
	"github.com/beatbazaar/beatbazaar-backend/internal/wallets"
	"github.com/beatbazaar/beatbazaar-backend/pkg/config"
	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
	"github.com/beatbazaar/beatbazaar-backend/pkg/metrics"
	"github.com/beatbazaar/beatbazaar-backend/pkg/pagination"
)

// Service handles the withdrawal lifecycle: sellers open requests against
// their available balance, admins settle them. Requesting reserves funds
// atomically; settlement moves the request through
// pending -> {approved, rejected, paid} and approved -> paid, and the wallet
// is debited exactly once per approved request.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*models.WithdrawalRequest, error)
	Process(ctx context.Context, input ProcessInput) (*models.WithdrawalRequest, error)
	GetByID(ctx context.Context, sellerID, requestID uuid.UUID) (*models.WithdrawalRequest, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ListResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo         Repository
	wallets      wallets.Service
	walletRepo   wallets.Repository
	verification verification.Repository
	runner       txRunner
	notifier     notifications.Service
	metrics      *metrics.PipelineMetrics
	logg         *logger.Logger
	payout       config.PayoutConfig
}

// RequestInput is a seller's withdrawal submission.
type RequestInput struct {
	SellerID     uuid.UUID
	AmountCents  int64
	PayoutMethod enums.PayoutMethod
}

// ProcessInput is an admin's settlement decision.
type ProcessInput struct {
	RequestID       uuid.UUID
	AdminID         uuid.UUID
	NewStatus       enums.WithdrawalStatus
	AdminNotes      *string
	PayoutReference *string
}

// ListResult wraps returned requests and the cursor for the next page.
type ListResult struct {
	Items  []models.WithdrawalRequest `json:"items"`
	Cursor string                     `json:"cursor"`
}

// Deps collects what NewService needs.
type Deps struct {
	Repo         Repository
	Wallets      wallets.Service
	WalletRepo   wallets.Repository
	Verification verification.Repository
	Runner       txRunner
	Notifier     notifications.Service
	Metrics      *metrics.PipelineMetrics
	Logger       *logger.Logger
	Payout       config.PayoutConfig
}

// NewService wires the withdrawal service.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Repo == nil:
		return nil, fmt.Errorf("withdrawal repository required")
	case deps.Wallets == nil:
		return nil, fmt.Errorf("wallet service required")
	case deps.WalletRepo == nil:
		return nil, fmt.Errorf("wallet repository required")
	case deps.Verification == nil:
		return nil, fmt.Errorf("verification repository required")
	case deps.Runner == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:         deps.Repo,
		wallets:      deps.Wallets,
		walletRepo:   deps.WalletRepo,
		verification: deps.Verification,
		runner:       deps.Runner,
		notifier:     deps.Notifier,
		metrics:      deps.Metrics,
		logg:         deps.Logger,
		payout:       deps.Payout,
	}, nil
}

// Request validates the seller's claim in order: positive amount, approved
// verification, complete payout details, then sufficient balance via the
// atomic reservation. The request row and the pending ledger entry commit
// together or not at all.
func (s *service) Request(ctx context.Context, input RequestInput) (*models.WithdrawalRequest, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if input.AmountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount must be positive")
	}
	if input.AmountCents < s.payout.MinWithdrawalCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount below minimum").
			WithDetails(map[string]any{"min_cents": s.payout.MinWithdrawalCents})
	}
	if !input.PayoutMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payout method %q", input.PayoutMethod))
	}

	record, err := s.verification.FindByOwner(ctx, input.SellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading verification record")
	}
	if record == nil || record.Status != enums.VerificationStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller is not verified")
	}
	if missing := verification.MissingPayoutFields(record, input.PayoutMethod); len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout details incomplete").
			WithDetails(map[string]any{"missing_fields": missing})
	}

	request := &models.WithdrawalRequest{
		ID:           uuid.New(),
		SellerID:     input.SellerID,
		AmountCents:  input.AmountCents,
		PayoutMethod: input.PayoutMethod,
		Status:       enums.WithdrawalStatusPending,
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, request); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting withdrawal request")
		}
		requestID := request.ID
		_, err := s.wallets.AddTransactionTx(ctx, tx, wallets.AddTransactionInput{
			OwnerID:      input.SellerID,
			Type:         enums.WalletTransactionTypeWithdrawal,
			AmountCents:  -input.AmountCents,
			Description:  fmt.Sprintf("withdrawal via %s", input.PayoutMethod),
			WithdrawalID: &requestID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncWithdrawalRequested()
	if s.notifier != nil {
		s.notifier.Emit(ctx, input.SellerID, enums.NotificationKindWithdrawalRequested, map[string]any{
			"withdrawal_id": request.ID,
			"amount_cents":  request.AmountCents,
		})
	}
	return request, nil
}

// Process applies one settlement decision. The status CAS inside the
// transaction guarantees each transition, and therefore each debit, happens
// at most once no matter how many admins race.
func (s *service) Process(ctx context.Context, input ProcessInput) (*models.WithdrawalRequest, error) {
	if input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "withdrawal id is required")
	}
	if input.AdminID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin id is required")
	}
	switch input.NewStatus {
	case enums.WithdrawalStatusApproved, enums.WithdrawalStatusRejected, enums.WithdrawalStatusPaid:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target status %q", input.NewStatus))
	}
	// A paid withdrawal must carry the external transaction id of the payout.
	if input.NewStatus == enums.WithdrawalStatusPaid {
		if input.PayoutReference == nil || strings.TrimSpace(*input.PayoutReference) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "payout reference is required to mark a withdrawal paid")
		}
	}

	request, err := s.repo.FindByID(ctx, input.RequestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading withdrawal request")
	}
	if request == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal request not found")
	}

	if !transitionAllowed(request.Status, input.NewStatus) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move withdrawal from %s to %s", request.Status, input.NewStatus)).
			WithDetails(map[string]any{
				"current_status": request.Status,
				"target_status":  input.NewStatus,
			})
	}

	from := request.Status
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		walletRepo := s.walletRepo.WithTx(tx)

		moved, err := repo.TransitionStatus(ctx, TransitionParams{
			RequestID:       request.ID,
			From:            from,
			To:              input.NewStatus,
			AdminID:         input.AdminID,
			AdminNotes:      input.AdminNotes,
			PayoutReference: input.PayoutReference,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating withdrawal status")
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "withdrawal was settled concurrently")
		}

		// approved -> paid is a bookkeeping stamp; the debit already happened.
		if from != enums.WithdrawalStatusPending {
			return nil
		}
		return s.applyFinancialEffect(ctx, walletRepo, request, input.NewStatus)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncWithdrawalSettled(string(input.NewStatus))
	if s.notifier != nil {
		s.notifier.Emit(ctx, request.SellerID, enums.NotificationKindWithdrawalSettled, map[string]any{
			"withdrawal_id": request.ID,
			"status":        input.NewStatus,
		})
	}
	return s.repo.FindByID(ctx, request.ID)
}

// applyFinancialEffect settles the reserved funds for a pending request:
// approval (or direct payout) debits the wallet and completes the linked
// ledger entry, rejection releases the reservation and fails it. The entry is
// found by its withdrawal link, never by amount matching.
func (s *service) applyFinancialEffect(ctx context.Context, walletRepo wallets.Repository, request *models.WithdrawalRequest, target enums.WithdrawalStatus) error {
	wallet, err := walletRepo.FindByOwner(ctx, request.SellerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallet")
	}
	if wallet == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "wallet missing for reserved withdrawal")
	}

	entry, err := walletRepo.FindTransactionByWithdrawalID(ctx, request.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading ledger entry")
	}
	if entry == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "ledger entry missing for withdrawal")
	}

	switch target {
	case enums.WithdrawalStatusApproved, enums.WithdrawalStatusPaid:
		applied, err := walletRepo.FinalizeWithdrawal(ctx, wallet.ID, request.AmountCents)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting reserved funds")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeInternal, "reserved funds no longer cover withdrawal")
		}
		return walletRepo.UpdateTransactionStatus(ctx, entry.ID, enums.WalletTransactionStatusCompleted)
	case enums.WithdrawalStatusRejected:
		applied, err := walletRepo.ReleaseReservation(ctx, wallet.ID, request.AmountCents)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "releasing reserved funds")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeInternal, "reservation missing for withdrawal")
		}
		return walletRepo.UpdateTransactionStatus(ctx, entry.ID, enums.WalletTransactionStatusFailed)
	default:
		return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("unexpected settlement target %q", target))
	}
}

func transitionAllowed(from, to enums.WithdrawalStatus) bool {
	switch from {
	case enums.WithdrawalStatusPending:
		return to == enums.WithdrawalStatusApproved ||
			to == enums.WithdrawalStatusRejected ||
			to == enums.WithdrawalStatusPaid
	case enums.WithdrawalStatusApproved:
		return to == enums.WithdrawalStatusPaid
	default:
		return false
	}
}

func (s *service) GetByID(ctx context.Context, sellerID, requestID uuid.UUID) (*models.WithdrawalRequest, error) {
	if sellerID == uuid.Nil || requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id and withdrawal id are required")
	}
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading withdrawal request")
	}
	if request == nil || request.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "withdrawal request not found")
	}
	return request, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}

	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.ListBySeller(ctx, sellerID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing withdrawal requests")
	}

	result := &ListResult{Items: rows}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}
