package withdrawals

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	"github.com/beatbazaar/beatbazaar-backend/pkg/pagination"
)

// Repository manages persistence for withdrawal requests. Status moves only
// through TransitionStatus, whose WHERE clause pins the expected prior state
// so concurrent admins cannot both win the same transition.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.WithdrawalRequest) error
	FindByID(ctx context.Context, requestID uuid.UUID) (*models.WithdrawalRequest, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.WithdrawalRequest, *pagination.Cursor, error)
	TransitionStatus(ctx context.Context, params TransitionParams) (bool, error)
}

// TransitionParams captures one status transition attempt.
type TransitionParams struct {
	RequestID       uuid.UUID
	From            enums.WithdrawalStatus
	To              enums.WithdrawalStatus
	AdminID         uuid.UUID
	AdminNotes      *string
	PayoutReference *string
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a withdrawal repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.WithdrawalRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, requestID uuid.UUID) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	err := r.db.WithContext(ctx).
		Where("id = ?", requestID).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.WithdrawalRequest, *pagination.Cursor, error) {
	fetch := pagination.LimitWithBuffer(limit)

	q := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC, id DESC").
		Limit(fetch)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.WithdrawalRequest
	if err := q.Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) == fetch {
		rows = rows[:fetch-1]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

func (r *repository) TransitionStatus(ctx context.Context, params TransitionParams) (bool, error) {
	now := time.Now().UTC()
	updates := map[string]any{
		"status":       params.To,
		"admin_id":     params.AdminID,
		"processed_at": now,
		"updated_at":   now,
	}
	if params.AdminNotes != nil {
		updates["admin_notes"] = params.AdminNotes
	}
	if params.PayoutReference != nil {
		updates["payout_reference"] = params.PayoutReference
	}

	res := r.db.WithContext(ctx).
		Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", params.RequestID, params.From).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
