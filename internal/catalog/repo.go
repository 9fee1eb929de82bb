package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
)

// Repository manages persistence for the beat catalog fields the sale
// pipeline touches.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, beatID uuid.UUID) (*models.Beat, error)
	IncrementPurchaseCount(ctx context.Context, beatID uuid.UUID) error
	MarkExclusiveSold(ctx context.Context, beatID, buyerID, orderID uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, beatID uuid.UUID) (*models.Beat, error) {
	var beat models.Beat
	err := r.db.WithContext(ctx).
		Where("id = ?", beatID).
		First(&beat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &beat, nil
}

func (r *repository) IncrementPurchaseCount(ctx context.Context, beatID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Beat{}).
		Where("id = ?", beatID).
		Updates(map[string]any{
			"purchase_count": gorm.Expr("purchase_count + 1"),
			"updated_at":     time.Now().UTC(),
		}).Error
}

// MarkExclusiveSold flips the exclusive flag only if it is still unset, so
// exactly one of any concurrent exclusive purchases wins.
func (r *repository) MarkExclusiveSold(ctx context.Context, beatID, buyerID, orderID uuid.UUID) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Beat{}).
		Where("id = ? AND is_exclusive_sold = ?", beatID, false).
		Updates(map[string]any{
			"is_exclusive_sold":  true,
			"exclusive_buyer_id": buyerID,
			"exclusive_order_id": orderID,
			"exclusive_sold_at":  now,
			"updated_at":         now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
