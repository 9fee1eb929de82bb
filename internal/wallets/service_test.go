package wallets

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
)

type fakeRepository struct {
	wallet *models.Wallet

	creditFn  func(walletID uuid.UUID, amount int64) error
	debitOK   bool
	reserveOK bool

	created []*models.WalletTransaction
	entries []models.WalletTransaction
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	return f.wallet, nil
}

func (f *fakeRepository) GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	if f.wallet == nil {
		f.wallet = &models.Wallet{ID: uuid.New(), OwnerID: ownerID}
	}
	return f.wallet, nil
}

func (f *fakeRepository) CreditBalance(ctx context.Context, walletID uuid.UUID, amount int64) error {
	if f.creditFn != nil {
		return f.creditFn(walletID, amount)
	}
	f.wallet.BalanceCents += amount
	return nil
}

func (f *fakeRepository) CreditPending(ctx context.Context, walletID uuid.UUID, amount int64) error {
	f.wallet.BalanceCents += amount
	f.wallet.PendingBalanceCents += amount
	return nil
}

func (f *fakeRepository) DebitBalance(ctx context.Context, walletID uuid.UUID, amount int64) (bool, error) {
	if !f.debitOK {
		return false, nil
	}
	f.wallet.BalanceCents -= amount
	return true, nil
}

func (f *fakeRepository) ReserveFunds(ctx context.Context, walletID uuid.UUID, amount int64) (bool, error) {
	if !f.reserveOK {
		return false, nil
	}
	f.wallet.PendingBalanceCents += amount
	return true, nil
}

func (f *fakeRepository) ReleaseReservation(ctx context.Context, walletID uuid.UUID, amount int64) (bool, error) {
	f.wallet.PendingBalanceCents -= amount
	return true, nil
}

func (f *fakeRepository) FinalizeWithdrawal(ctx context.Context, walletID uuid.UUID, amount int64) (bool, error) {
	f.wallet.BalanceCents -= amount
	f.wallet.PendingBalanceCents -= amount
	return true, nil
}

func (f *fakeRepository) CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error {
	f.created = append(f.created, entry)
	return nil
}

func (f *fakeRepository) FindTransactionByWithdrawalID(ctx context.Context, withdrawalID uuid.UUID) (*models.WalletTransaction, error) {
	return nil, nil
}

func (f *fakeRepository) UpdateTransactionStatus(ctx context.Context, entryID uuid.UUID, status enums.WalletTransactionStatus) error {
	return nil
}

func (f *fakeRepository) ListTransactionsByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	return f.entries, nil
}

type fakeRunner struct{}

func (fakeRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func TestService_AddTransactionSale(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo, fakeRunner{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	orderID := uuid.New()
	entry, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		OwnerID:     uuid.New(),
		Type:        enums.WalletTransactionTypeSale,
		AmountCents: 6000,
		Description: "sale of beat",
		OrderID:     &orderID,
	})
	if err != nil {
		t.Fatalf("AddTransaction error: %v", err)
	}
	if entry.Status != enums.WalletTransactionStatusCompleted {
		t.Fatalf("expected completed entry, got %s", entry.Status)
	}
	if repo.wallet.BalanceCents != 6000 {
		t.Fatalf("expected balance 6000, got %d", repo.wallet.BalanceCents)
	}
	if len(repo.created) != 1 || repo.created[0].AmountCents != 6000 {
		t.Fatalf("expected one ledger entry of 6000, got %+v", repo.created)
	}
}

func TestService_AddTransactionPendingSale(t *testing.T) {
	repo := &fakeRepository{
		wallet: &models.Wallet{ID: uuid.New(), OwnerID: uuid.New(), BalanceCents: 8000},
	}
	svc, _ := NewService(repo, fakeRunner{})

	orderID := uuid.New()
	entry, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		OwnerID:     repo.wallet.OwnerID,
		Type:        enums.WalletTransactionTypeSale,
		AmountCents: 3000,
		Status:      enums.WalletTransactionStatusPending,
		OrderID:     &orderID,
	})
	if err != nil {
		t.Fatalf("AddTransaction error: %v", err)
	}
	if entry.Status != enums.WalletTransactionStatusPending {
		t.Fatalf("expected pending entry, got %s", entry.Status)
	}
	if repo.wallet.BalanceCents != 11000 || repo.wallet.PendingBalanceCents != 3000 {
		t.Fatalf("expected balance 11000 / pending 3000, got %d / %d",
			repo.wallet.BalanceCents, repo.wallet.PendingBalanceCents)
	}
	if repo.wallet.AvailableCents() != 8000 {
		t.Fatalf("pending sale must not grow available funds, got %d", repo.wallet.AvailableCents())
	}
}

func TestService_AddTransactionPendingStatusRestricted(t *testing.T) {
	svc, _ := NewService(&fakeRepository{}, fakeRunner{})

	_, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		OwnerID:     uuid.New(),
		Type:        enums.WalletTransactionTypeAdjustment,
		AmountCents: 500,
		Status:      enums.WalletTransactionStatusPending,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestService_AddTransactionWithdrawalReserves(t *testing.T) {
	repo := &fakeRepository{reserveOK: true}
	svc, _ := NewService(repo, fakeRunner{})

	withdrawalID := uuid.New()
	entry, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		OwnerID:      uuid.New(),
		Type:         enums.WalletTransactionTypeWithdrawal,
		AmountCents:  -5000,
		WithdrawalID: &withdrawalID,
	})
	if err != nil {
		t.Fatalf("AddTransaction error: %v", err)
	}
	if entry.Status != enums.WalletTransactionStatusPending {
		t.Fatalf("expected pending entry, got %s", entry.Status)
	}
	if repo.wallet.PendingBalanceCents != 5000 {
		t.Fatalf("expected pending 5000, got %d", repo.wallet.PendingBalanceCents)
	}
	if entry.WithdrawalID == nil || *entry.WithdrawalID != withdrawalID {
		t.Fatal("expected entry linked to withdrawal")
	}
}

func TestService_AddTransactionInsufficientBalance(t *testing.T) {
	repo := &fakeRepository{debitOK: false}
	svc, _ := NewService(repo, fakeRunner{})

	_, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		OwnerID:     uuid.New(),
		Type:        enums.WalletTransactionTypeRefund,
		AmountCents: -2500,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatal("no ledger entry should be written when the debit is rejected")
	}
}

func TestService_AddTransactionValidation(t *testing.T) {
	svc, _ := NewService(&fakeRepository{}, fakeRunner{})
	withdrawalID := uuid.New()

	tests := []struct {
		name  string
		input AddTransactionInput
	}{
		{"missing owner", AddTransactionInput{Type: enums.WalletTransactionTypeSale, AmountCents: 100}},
		{"invalid type", AddTransactionInput{OwnerID: uuid.New(), Type: "bonus", AmountCents: 100}},
		{"sale non-positive", AddTransactionInput{OwnerID: uuid.New(), Type: enums.WalletTransactionTypeSale, AmountCents: 0}},
		{"withdrawal non-negative", AddTransactionInput{OwnerID: uuid.New(), Type: enums.WalletTransactionTypeWithdrawal, AmountCents: 100, WithdrawalID: &withdrawalID}},
		{"withdrawal without link", AddTransactionInput{OwnerID: uuid.New(), Type: enums.WalletTransactionTypeWithdrawal, AmountCents: -100}},
		{"refund non-negative", AddTransactionInput{OwnerID: uuid.New(), Type: enums.WalletTransactionTypeRefund, AmountCents: 100}},
		{"adjustment zero", AddTransactionInput{OwnerID: uuid.New(), Type: enums.WalletTransactionTypeAdjustment, AmountCents: 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddTransaction(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_AddTransactionRollsUpRepoError(t *testing.T) {
	repo := &fakeRepository{}
	repo.creditFn = func(uuid.UUID, int64) error { return errors.New("boom") }
	svc, _ := NewService(repo, fakeRunner{})

	_, err := svc.AddTransaction(context.Background(), AddTransactionInput{
		OwnerID:     uuid.New(),
		Type:        enums.WalletTransactionTypeSale,
		AmountCents: 100,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestService_GetStatementEmptyWallet(t *testing.T) {
	repo := &fakeRepository{}
	svc, _ := NewService(repo, fakeRunner{})

	ownerID := uuid.New()
	statement, err := svc.GetStatement(context.Background(), ownerID, 10)
	if err != nil {
		t.Fatalf("GetStatement error: %v", err)
	}
	if statement.Wallet.OwnerID != ownerID {
		t.Fatalf("expected owner %s, got %s", ownerID, statement.Wallet.OwnerID)
	}
	if statement.AvailableCents != 0 || len(statement.Transactions) != 0 {
		t.Fatalf("expected empty statement, got %+v", statement)
	}
}

func TestService_GetStatementAvailable(t *testing.T) {
	repo := &fakeRepository{
		wallet: &models.Wallet{ID: uuid.New(), OwnerID: uuid.New(), BalanceCents: 10000, PendingBalanceCents: 4000},
		entries: []models.WalletTransaction{
			{Type: enums.WalletTransactionTypeSale, AmountCents: 10000},
		},
	}
	svc, _ := NewService(repo, fakeRunner{})

	statement, err := svc.GetStatement(context.Background(), repo.wallet.OwnerID, 10)
	if err != nil {
		t.Fatalf("GetStatement error: %v", err)
	}
	if statement.AvailableCents != 6000 {
		t.Fatalf("expected available 6000, got %d", statement.AvailableCents)
	}
	if len(statement.Transactions) != 1 {
		t.Fatalf("expected one entry, got %d", len(statement.Transactions))
	}
}
