package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
)

// Order is a buyer's completed purchase. Orders are only persisted after the
// payment reference has been verified against the gateway, so they are born
// with payment status completed and are never deleted.
type Order struct {
	ID                    uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID               uuid.UUID           `gorm:"column:buyer_id;type:uuid;not null;index"`
	TotalCents            int64               `gorm:"column:total_cents;not null"`
	PaymentMethod         enums.PaymentMethod `gorm:"column:payment_method;type:text;not null"`
	PaymentRef            string              `gorm:"column:payment_ref;not null"`
	ExternalTransactionID string              `gorm:"column:external_transaction_id"`
	PaymentStatus         enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	Items                 []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
