package models

import (
	"time"

	"github.com/google/uuid"
)

// Beat carries the sale-relevant catalog fields for a producer's beat.
// Once IsExclusiveSold flips true the beat must never be sold again; the flip
// itself happens through a conditional update so concurrent exclusive buyers
// cannot both win.
type Beat struct {
	ID               uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID         uuid.UUID  `gorm:"column:seller_id;type:uuid;not null;index"`
	Title            string     `gorm:"column:title;not null"`
	PriceCents       int64      `gorm:"column:price_cents;not null"`
	PurchaseCount    int        `gorm:"column:purchase_count;not null;default:0"`
	IsExclusiveSold  bool       `gorm:"column:is_exclusive_sold;not null;default:false"`
	ExclusiveBuyerID *uuid.UUID `gorm:"column:exclusive_buyer_id;type:uuid"`
	ExclusiveOrderID *uuid.UUID `gorm:"column:exclusive_order_id;type:uuid"`
	ExclusiveSoldAt  *time.Time `gorm:"column:exclusive_sold_at"`
	CreatedAt        time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
