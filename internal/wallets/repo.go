package wallets

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
)

// Repository is the only write path to wallets and their ledger entries.
// Every balance mutation is a conditional UPDATE whose WHERE clause enforces
// the non-negative invariants, so concurrent writers race on rows affected
// instead of read-modify-write snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error)
	GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error)

	CreditBalance(ctx context.Context, walletID uuid.UUID, amountCents int64) error
	CreditPending(ctx context.Context, walletID uuid.UUID, amountCents int64) error
	DebitBalance(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error)
	ReserveFunds(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error)
	ReleaseReservation(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error)
	FinalizeWithdrawal(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error)

	CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error
	FindTransactionByWithdrawalID(ctx context.Context, withdrawalID uuid.UUID) (*models.WalletTransaction, error)
	UpdateTransactionStatus(ctx context.Context, entryID uuid.UUID, status enums.WalletTransactionStatus) error
	ListTransactionsByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.WalletTransaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) GetOrCreate(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	wallet := models.Wallet{ID: uuid.New(), OwnerID: ownerID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "owner_id"}},
			DoNothing: true,
		}).
		Create(&wallet).Error
	if err != nil {
		return nil, err
	}
	return r.mustFindByOwner(ctx, ownerID)
}

func (r *repository) mustFindByOwner(ctx context.Context, ownerID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

// CreditBalance adds funds unconditionally; credits cannot violate the
// non-negative invariants.
func (r *repository) CreditBalance(ctx context.Context, walletID uuid.UUID, amountCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]any{
			"balance_cents": gorm.Expr("balance_cents + ?", amountCents),
			"updated_at":    time.Now().UTC(),
		}).Error
}

// CreditPending records uncleared incoming funds: the gross balance grows but
// the same amount is held in pending, so available stays unchanged until the
// credit clears.
func (r *repository) CreditPending(ctx context.Context, walletID uuid.UUID, amountCents int64) error {
	return r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ?", walletID).
		Updates(map[string]any{
			"balance_cents":         gorm.Expr("balance_cents + ?", amountCents),
			"pending_balance_cents": gorm.Expr("pending_balance_cents + ?", amountCents),
			"updated_at":            time.Now().UTC(),
		}).Error
}

// DebitBalance removes funds only when the available balance covers the
// amount. Returns false when the guard rejects the update.
func (r *repository) DebitBalance(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ? AND balance_cents - pending_balance_cents >= ?", walletID, amountCents).
		Updates(map[string]any{
			"balance_cents": gorm.Expr("balance_cents - ?", amountCents),
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReserveFunds earmarks the amount for an in-flight withdrawal. The guard
// checks available balance, so two concurrent reservations cannot both claim
// the same funds.
func (r *repository) ReserveFunds(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ? AND balance_cents - pending_balance_cents >= ?", walletID, amountCents).
		Updates(map[string]any{
			"pending_balance_cents": gorm.Expr("pending_balance_cents + ?", amountCents),
			"updated_at":            time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseReservation returns earmarked funds to the available balance after a
// rejection.
func (r *repository) ReleaseReservation(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ? AND pending_balance_cents >= ?", walletID, amountCents).
		Updates(map[string]any{
			"pending_balance_cents": gorm.Expr("pending_balance_cents - ?", amountCents),
			"updated_at":            time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// FinalizeWithdrawal debits the reserved amount once an approval lands.
func (r *repository) FinalizeWithdrawal(ctx context.Context, walletID uuid.UUID, amountCents int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("id = ? AND balance_cents >= ? AND pending_balance_cents >= ?", walletID, amountCents, amountCents).
		Updates(map[string]any{
			"balance_cents":         gorm.Expr("balance_cents - ?", amountCents),
			"pending_balance_cents": gorm.Expr("pending_balance_cents - ?", amountCents),
			"updated_at":            time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) FindTransactionByWithdrawalID(ctx context.Context, withdrawalID uuid.UUID) (*models.WalletTransaction, error) {
	var entry models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("withdrawal_id = ?", withdrawalID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) UpdateTransactionStatus(ctx context.Context, entryID uuid.UUID, status enums.WalletTransactionStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.WalletTransaction{}).
		Where("id = ?", entryID).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repository) ListTransactionsByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]models.WalletTransaction, error) {
	var entries []models.WalletTransaction
	q := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
