package notifications

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
)

// Service emits best-effort in-app notifications. Emit never fails the
// calling operation; delivery problems are logged and swallowed.
type Service interface {
	Emit(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, payload any)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService wires notification dependencies.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Emit(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, payload any) {
	if userID == uuid.Nil || !kind.IsValid() {
		return
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.warn(ctx, "notification payload not serializable", err)
		return
	}

	notification := &models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Kind:    kind,
		Payload: raw,
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		s.warn(ctx, "notification delivery failed", err)
	}
}

func (s *service) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}
	return rows, nil
}

func (s *service) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "error", err.Error())
	s.logg.Warn(ctx, msg)
}
