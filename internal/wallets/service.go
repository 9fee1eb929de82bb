package wallets

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
)

// Service is the sole entry point for recording money movement against a
// seller wallet. Amounts are signed: sales credit, withdrawals and refunds
// debit. Withdrawal entries are created pending and settle later.
type Service interface {
	AddTransaction(ctx context.Context, input AddTransactionInput) (*models.WalletTransaction, error)
	// AddTransactionTx records the entry inside a caller-owned transaction so
	// wallet movement can commit or roll back with related writes.
	AddTransactionTx(ctx context.Context, tx *gorm.DB, input AddTransactionInput) (*models.WalletTransaction, error)
	GetStatement(ctx context.Context, ownerID uuid.UUID, limit int) (*Statement, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo   Repository
	runner txRunner
}

// AddTransactionInput captures one ledger entry before persistence. Status
// defaults to completed when omitted; a pending sale credit is held in the
// pending balance and never grows the available funds.
type AddTransactionInput struct {
	OwnerID      uuid.UUID
	Type         enums.WalletTransactionType
	AmountCents  int64
	Status       enums.WalletTransactionStatus
	Description  string
	OrderID      *uuid.UUID
	WithdrawalID *uuid.UUID
}

// Statement is a wallet snapshot plus its most recent ledger entries.
type Statement struct {
	Wallet         models.Wallet
	AvailableCents int64
	Transactions   []models.WalletTransaction
}

// NewService wires a wallet service with the provided repository and
// transaction runner.
func NewService(repo Repository, runner txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if runner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, runner: runner}, nil
}

func (s *service) AddTransaction(ctx context.Context, input AddTransactionInput) (*models.WalletTransaction, error) {
	var entry *models.WalletTransaction
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.AddTransactionTx(ctx, tx, input)
		if err != nil {
			return err
		}
		entry = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) AddTransactionTx(ctx context.Context, tx *gorm.DB, input AddTransactionInput) (*models.WalletTransaction, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	repo := s.repo.WithTx(tx)

	wallet, err := repo.GetOrCreate(ctx, input.OwnerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallet")
	}

	status := input.Status
	if status == "" {
		status = enums.WalletTransactionStatusCompleted
	}
	switch {
	case input.Type == enums.WalletTransactionTypeWithdrawal:
		status = enums.WalletTransactionStatusPending
		applied, err := repo.ReserveFunds(ctx, wallet.ID, -input.AmountCents)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserving funds")
		}
		if !applied {
			return nil, insufficientBalance(wallet, -input.AmountCents)
		}
	case status == enums.WalletTransactionStatusPending:
		if err := repo.CreditPending(ctx, wallet.ID, input.AmountCents); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crediting pending balance")
		}
	case input.AmountCents > 0:
		if err := repo.CreditBalance(ctx, wallet.ID, input.AmountCents); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "crediting balance")
		}
	default:
		applied, err := repo.DebitBalance(ctx, wallet.ID, -input.AmountCents)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting balance")
		}
		if !applied {
			return nil, insufficientBalance(wallet, -input.AmountCents)
		}
	}

	entry := &models.WalletTransaction{
		ID:           uuid.New(),
		WalletID:     wallet.ID,
		OwnerID:      input.OwnerID,
		Type:         input.Type,
		AmountCents:  input.AmountCents,
		Description:  input.Description,
		OrderID:      input.OrderID,
		WithdrawalID: input.WithdrawalID,
		Status:       status,
	}
	if err := repo.CreateTransaction(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording ledger entry")
	}
	return entry, nil
}

func (s *service) GetStatement(ctx context.Context, ownerID uuid.UUID, limit int) (*Statement, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	wallet, err := s.repo.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wallet")
	}
	if wallet == nil {
		// A seller with no sales yet still has a statement.
		wallet = &models.Wallet{OwnerID: ownerID}
	}

	entries, err := s.repo.ListTransactionsByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading ledger entries")
	}

	return &Statement{
		Wallet:         *wallet,
		AvailableCents: wallet.AvailableCents(),
		Transactions:   entries,
	}, nil
}

func validateInput(input AddTransactionInput) error {
	if input.OwnerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", input.Type))
	}
	if input.Status != "" && !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction status %q", input.Status))
	}
	if input.Status == enums.WalletTransactionStatusFailed {
		return pkgerrors.New(pkgerrors.CodeValidation, "ledger entries cannot be created failed")
	}
	if input.Status == enums.WalletTransactionStatusPending &&
		input.Type != enums.WalletTransactionTypeSale &&
		input.Type != enums.WalletTransactionTypeWithdrawal {
		return pkgerrors.New(pkgerrors.CodeValidation, "pending status is only supported for sale and withdrawal entries")
	}

	switch input.Type {
	case enums.WalletTransactionTypeSale:
		if input.AmountCents <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "sale amount must be positive")
		}
	case enums.WalletTransactionTypeWithdrawal:
		if input.AmountCents >= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "withdrawal amount must be negative")
		}
		if input.WithdrawalID == nil || *input.WithdrawalID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "withdrawal id is required")
		}
	case enums.WalletTransactionTypeRefund:
		if input.AmountCents >= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "refund amount must be negative")
		}
	case enums.WalletTransactionTypeAdjustment:
		if input.AmountCents == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "adjustment amount must be non-zero")
		}
	}
	return nil
}

func insufficientBalance(wallet *models.Wallet, requiredCents int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "insufficient available balance").
		WithDetails(map[string]any{
			"required_cents":  requiredCents,
			"available_cents": wallet.AvailableCents(),
		})
}
