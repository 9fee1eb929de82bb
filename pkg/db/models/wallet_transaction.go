package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
)

// WalletTransaction is one append-only ledger entry. Amounts are signed:
// sales are positive, withdrawals negative. After creation only Status may
// change (a pending withdrawal entry settles to completed or failed).
// WithdrawalID links the entry to the withdrawal request that created it so
// settlement never has to match entries by amount.
type WalletTransaction struct {
	ID           uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	WalletID     uuid.UUID                     `gorm:"column:wallet_id;type:uuid;not null;index"`
	OwnerID      uuid.UUID                     `gorm:"column:owner_id;type:uuid;not null;index"`
	Type         enums.WalletTransactionType   `gorm:"column:type;type:text;not null"`
	AmountCents  int64                         `gorm:"column:amount_cents;not null"`
	Description  string                        `gorm:"column:description"`
	OrderID      *uuid.UUID                    `gorm:"column:order_id;type:uuid"`
	WithdrawalID *uuid.UUID                    `gorm:"column:withdrawal_id;type:uuid;index"`
	Status       enums.WalletTransactionStatus `gorm:"column:status;type:text;not null;default:'completed'"`
	CreatedAt    time.Time                     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                     `gorm:"column:updated_at;autoUpdateTime"`
}
