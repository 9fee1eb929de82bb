package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
)

// Notification is a best-effort in-app message. Delivery failures are logged
// and never fail the operation that emitted them.
type Notification struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Kind      enums.NotificationKind `gorm:"column:kind;type:text;not null"`
	Payload   json.RawMessage        `gorm:"column:payload;type:jsonb"`
	ReadAt    *time.Time             `gorm:"column:read_at"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
