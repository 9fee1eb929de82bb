package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
)

// VerificationRecord holds a seller's identity review outcome and payout
// details. A withdrawal may only be requested while Status is approved and
// the details for the chosen payout method are complete.
type VerificationRecord struct {
	ID            uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID       uuid.UUID                `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	Status        enums.VerificationStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	BankName      *string                  `gorm:"column:bank_name"`
	AccountName   *string                  `gorm:"column:account_name"`
	AccountNumber *string                  `gorm:"column:account_number"`
	PaypalEmail   *string                  `gorm:"column:paypal_email"`
	KhaltiID      *string                  `gorm:"column:khalti_id"`
	Documents     json.RawMessage          `gorm:"column:documents;type:jsonb"`
	SubmittedAt   *time.Time               `gorm:"column:submitted_at"`
	ReviewedAt    *time.Time               `gorm:"column:reviewed_at"`
	CreatedAt     time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
