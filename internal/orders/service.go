package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatbazaar/beatbazaar-backend/internal/catalog"
	"github.com/beatbazaar/beatbazaar-backend/internal/notifications"
	"github.com/beatbazaar/beatbazaar-backend/internal/payments"
	"github.com/beatbazaar/beatbazaar-backend/internal/subscriptions"
	"github.com/beatbazaar/beatbazaar-backend/internal/wallets"
	"github.com/beatbazaar/beatbazaar-backend/pkg/db"
	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
	"github.com/beatbazaar/beatbazaar-backend/pkg/metrics"
	"github.com/beatbazaar/beatbazaar-backend/pkg/pagination"
)

// Service handles order creation and retrieval. Creation verifies the payment
// with its gateway first, persists the order, then credits sellers item by
// item; a failed credit marks that item failed and never blocks the rest.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetByID(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*ListResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     Repository
	catalog  catalog.Repository
	wallets  wallets.Service
	shares   subscriptions.ShareResolver
	verifier payments.Verifier
	runner   txRunner
	notifier notifications.Service
	metrics  *metrics.PipelineMetrics
	logg     *logger.Logger
}

// CreateOrderInput is a buyer's checkout submission. TotalAmountCents is the
// amount the client believes it paid; it must match both the catalog total
// and the gateway's record.
type CreateOrderInput struct {
	BuyerID          uuid.UUID
	PaymentMethod    enums.PaymentMethod
	PaymentRef       string
	TotalAmountCents int64
	Items            []CreateOrderItemInput
}

// CreateOrderItemInput selects one beat license.
type CreateOrderItemInput struct {
	BeatID      uuid.UUID
	LicenseTier enums.LicenseTier
}

// ListResult wraps returned orders and the cursor for the next page.
type ListResult struct {
	Items  []models.Order `json:"items"`
	Cursor string         `json:"cursor"`
}

// Deps collects what NewService needs.
type Deps struct {
	Repo     Repository
	Catalog  catalog.Repository
	Wallets  wallets.Service
	Shares   subscriptions.ShareResolver
	Verifier payments.Verifier
	Runner   txRunner
	Notifier notifications.Service
	Metrics  *metrics.PipelineMetrics
	Logger   *logger.Logger
}

// NewService wires the order service.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Repo == nil:
		return nil, fmt.Errorf("order repository required")
	case deps.Catalog == nil:
		return nil, fmt.Errorf("catalog repository required")
	case deps.Wallets == nil:
		return nil, fmt.Errorf("wallet service required")
	case deps.Shares == nil:
		return nil, fmt.Errorf("share resolver required")
	case deps.Verifier == nil:
		return nil, fmt.Errorf("payment verifier required")
	case deps.Runner == nil:
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     deps.Repo,
		catalog:  deps.Catalog,
		wallets:  deps.Wallets,
		shares:   deps.Shares,
		verifier: deps.Verifier,
		runner:   deps.Runner,
		notifier: deps.Notifier,
		metrics:  deps.Metrics,
		logg:     deps.Logger,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	beats, err := s.validateInput(ctx, input)
	if err != nil {
		return nil, err
	}

	// The gateway lookup is the sole gate: nothing is persisted until the
	// payment is confirmed completed for the exact catalog total.
	lookup, err := s.verifier.Verify(ctx, input.PaymentMethod, input.PaymentRef, input.TotalAmountCents)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:                    uuid.New(),
		BuyerID:               input.BuyerID,
		TotalCents:            input.TotalAmountCents,
		PaymentMethod:         input.PaymentMethod,
		PaymentRef:            input.PaymentRef,
		ExternalTransactionID: lookup.ExternalTransactionID,
		PaymentStatus:         enums.PaymentStatusCompleted,
	}
	for _, item := range input.Items {
		beat := beats[item.BeatID]
		order.Items = append(order.Items, models.OrderItem{
			ID:          uuid.New(),
			OrderID:     order.ID,
			BeatID:      beat.ID,
			SellerID:    beat.SellerID,
			LicenseTier: item.LicenseTier,
			PriceCents:  beat.PriceCents,
			Status:      enums.OrderItemStatusPending,
		})
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, order)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "uq_orders_payment_ref") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment reference already used")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order")
	}
	s.metrics.IncOrderCreated(string(input.PaymentMethod))

	s.creditSellers(ctx, order, beats)
	return order, nil
}

// creditSellers runs royalty crediting per item. Each item gets its own
// transaction so one seller's failure cannot roll back another's credit.
func (s *service) creditSellers(ctx context.Context, order *models.Order, beats map[uuid.UUID]*models.Beat) {
	for i := range order.Items {
		item := &order.Items[i]
		if err := s.creditItem(ctx, order, item); err != nil {
			s.metrics.IncOrderItemFailed()
			s.logItemFailure(ctx, order.ID, item.ID, err)

			reason := err.Error()
			if typed := pkgerrors.As(err); typed != nil && typed.Message() != "" {
				reason = typed.Message()
			}
			item.Status = enums.OrderItemStatusFailed
			item.FailureReason = &reason
			if markErr := s.repo.MarkItemFailed(ctx, item.ID, reason); markErr != nil {
				s.logItemFailure(ctx, order.ID, item.ID, markErr)
			}
			continue
		}

		if s.notifier != nil {
			beat := beats[item.BeatID]
			s.notifier.Emit(ctx, item.SellerID, enums.NotificationKindSaleCredited, map[string]any{
				"order_id":         order.ID,
				"beat_id":          item.BeatID,
				"beat_title":       beat.Title,
				"seller_cut_cents": item.SellerCutCents,
			})
		}
	}
}

func (s *service) creditItem(ctx context.Context, order *models.Order, item *models.OrderItem) error {
	sharePercent, err := s.shares.ResolveSharePercent(ctx, item.SellerID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving revenue share")
	}
	cut := subscriptions.SellerCutCents(item.PriceCents, sharePercent)

	return s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		catalogRepo := s.catalog.WithTx(tx)

		if item.LicenseTier.IsExclusive() {
			won, err := catalogRepo.MarkExclusiveSold(ctx, item.BeatID, order.BuyerID, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking exclusive sale")
			}
			if !won {
				return pkgerrors.New(pkgerrors.CodeConflict, "beat already sold exclusively")
			}
		}
		if err := catalogRepo.IncrementPurchaseCount(ctx, item.BeatID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing purchase count")
		}

		orderID := order.ID
		if _, err := s.wallets.AddTransactionTx(ctx, tx, wallets.AddTransactionInput{
			OwnerID:     item.SellerID,
			Type:        enums.WalletTransactionTypeSale,
			AmountCents: cut,
			Description: fmt.Sprintf("sale of beat %s (%s license)", item.BeatID, item.LicenseTier),
			OrderID:     &orderID,
		}); err != nil {
			return err
		}

		item.SellerCutCents = cut
		item.RevenueSharePct = sharePercent
		item.Status = enums.OrderItemStatusCredited
		return s.repo.WithTx(tx).MarkItemCredited(ctx, item.ID, cut, sharePercent)
	})
}

func (s *service) validateInput(ctx context.Context, input CreateOrderInput) (map[uuid.UUID]*models.Beat, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", input.PaymentMethod))
	}
	if input.PaymentMethod.RequiresGatewayVerification() && input.PaymentRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}

	beats := make(map[uuid.UUID]*models.Beat, len(input.Items))
	var total int64
	for i := range input.Items {
		item := &input.Items[i]
		// Storefront clients send tier aliases; normalize to the canonical
		// enum before anything is persisted.
		tier, err := enums.ParseLicenseTier(string(item.LicenseTier))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid license tier")
		}
		item.LicenseTier = tier
		if _, seen := beats[item.BeatID]; seen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "duplicate beat in order").
				WithDetails(map[string]any{"beat_id": item.BeatID})
		}

		beat, err := s.catalog.FindByID(ctx, item.BeatID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading beat")
		}
		if beat == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "beat not found").
				WithDetails(map[string]any{"beat_id": item.BeatID})
		}
		if beat.SellerID == input.BuyerID {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot purchase your own beat").
				WithDetails(map[string]any{"beat_id": item.BeatID})
		}
		if item.LicenseTier.IsExclusive() && beat.IsExclusiveSold {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "beat already sold exclusively").
				WithDetails(map[string]any{"beat_id": item.BeatID})
		}

		beats[item.BeatID] = beat
		total += beat.PriceCents
	}

	if input.TotalAmountCents != total {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total amount does not match item prices").
			WithDetails(map[string]any{
				"submitted_cents": input.TotalAmountCents,
				"computed_cents":  total,
			})
	}
	return beats, nil
}

func (s *service) GetByID(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	if buyerID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id and order id are required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil || order.BuyerID != buyerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if buyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id is required")
	}

	var cursor *pagination.Cursor
	if params.Cursor != "" {
		parsed, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		cursor = parsed
	}

	rows, next, err := s.repo.ListByBuyer(ctx, buyerID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}

	result := &ListResult{Items: rows}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

func (s *service) logItemFailure(ctx context.Context, orderID, itemID uuid.UUID, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"order_id":      orderID,
		"order_item_id": itemID,
	})
	s.logg.Error(ctx, "order item crediting failed", err)
}
