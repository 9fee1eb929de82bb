package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription records a seller's plan. RevenueSharePercent is the seller's
// cut of each sale; sellers without an active subscription fall back to the
// platform default configured in PayoutConfig.
type Subscription struct {
	ID                  uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID            uuid.UUID  `gorm:"column:seller_id;type:uuid;not null;index"`
	Plan                string     `gorm:"column:plan;not null"`
	RevenueSharePercent int64      `gorm:"column:revenue_share_percent;not null"`
	Active              bool       `gorm:"column:active;not null;default:true"`
	ExpiresAt           *time.Time `gorm:"column:expires_at"`
	CreatedAt           time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
