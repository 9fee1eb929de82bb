package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
)

// OrderItem snapshots one beat license inside an order. Status records the
// outcome of seller crediting: a failed row plus its reason is the durable
// trace operations uses to reconcile partially fulfilled orders.
type OrderItem struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	BeatID          uuid.UUID             `gorm:"column:beat_id;type:uuid;not null"`
	SellerID        uuid.UUID             `gorm:"column:seller_id;type:uuid;not null;index"`
	LicenseTier     enums.LicenseTier     `gorm:"column:license_tier;type:text;not null"`
	PriceCents      int64                 `gorm:"column:price_cents;not null"`
	SellerCutCents  int64                 `gorm:"column:seller_cut_cents;not null;default:0"`
	RevenueSharePct int64                 `gorm:"column:revenue_share_pct;not null;default:0"`
	Status          enums.OrderItemStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	FailureReason   *string               `gorm:"column:failure_reason"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
