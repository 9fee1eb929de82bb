package subscriptions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/beatbazaar/beatbazaar-backend/pkg/config"
)

// ShareResolver answers what cut of a sale a seller keeps.
type ShareResolver interface {
	ResolveSharePercent(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

type shareResolver struct {
	repo           Repository
	defaultPercent int64
}

// NewShareResolver wires a resolver that consults the seller's active plan
// and falls back to the platform default.
func NewShareResolver(repo Repository, cfg config.PayoutConfig) (ShareResolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if cfg.DefaultRevenueSharePercent <= 0 || cfg.DefaultRevenueSharePercent > 100 {
		return nil, fmt.Errorf("default revenue share must be within (0,100], got %d", cfg.DefaultRevenueSharePercent)
	}
	return &shareResolver{repo: repo, defaultPercent: cfg.DefaultRevenueSharePercent}, nil
}

func (r *shareResolver) ResolveSharePercent(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	sub, err := r.repo.FindActiveBySeller(ctx, sellerID)
	if err != nil {
		return 0, err
	}
	if sub == nil || sub.RevenueSharePercent <= 0 || sub.RevenueSharePercent > 100 {
		return r.defaultPercent, nil
	}
	return sub.RevenueSharePercent, nil
}

// SellerCutCents computes the seller's share of a price, rounding down so the
// platform absorbs sub-cent remainders.
func SellerCutCents(priceCents, sharePercent int64) int64 {
	return decimal.NewFromInt(priceCents).
		Mul(decimal.NewFromInt(sharePercent)).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()
}
