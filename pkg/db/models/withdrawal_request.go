package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
)

// WithdrawalRequest is a seller's claim on reserved wallet funds awaiting
// admin disposition. Rejected and paid are terminal; approved acknowledges
// the debit and still permits the paid stamp once the payout lands.
type WithdrawalRequest struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID        uuid.UUID              `gorm:"column:seller_id;type:uuid;not null;index"`
	AmountCents     int64                  `gorm:"column:amount_cents;not null"`
	PayoutMethod    enums.PayoutMethod     `gorm:"column:payout_method;type:text;not null"`
	Status          enums.WithdrawalStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PayoutReference *string                `gorm:"column:payout_reference"`
	AdminNotes      *string                `gorm:"column:admin_notes"`
	AdminID         *uuid.UUID             `gorm:"column:admin_id;type:uuid"`
	ProcessedAt     *time.Time             `gorm:"column:processed_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
