package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is the per-seller balance aggregate. BalanceCents reflects completed
// entries only; PendingBalanceCents earmarks funds reserved by in-flight
// withdrawal requests. Both are maintained exclusively through conditional
// updates and never go negative.
type Wallet struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID             uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	BalanceCents        int64               `gorm:"column:balance_cents;not null;default:0"`
	PendingBalanceCents int64               `gorm:"column:pending_balance_cents;not null;default:0"`
	Transactions        []WalletTransaction `gorm:"foreignKey:WalletID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// AvailableCents is the amount a seller can withdraw right now.
func (w Wallet) AvailableCents() int64 {
	return w.BalanceCents - w.PendingBalanceCents
}
