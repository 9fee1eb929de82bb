package subscriptions

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatbazaar/beatbazaar-backend/pkg/config"
	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
)

type fakeSubRepo struct {
	sub *models.Subscription
	err error
}

func (f *fakeSubRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeSubRepo) FindActiveBySeller(ctx context.Context, sellerID uuid.UUID) (*models.Subscription, error) {
	return f.sub, f.err
}

func TestShareResolverUsesPlanShare(t *testing.T) {
	resolver, err := NewShareResolver(
		&fakeSubRepo{sub: &models.Subscription{RevenueSharePercent: 80}},
		config.PayoutConfig{DefaultRevenueSharePercent: 60},
	)
	if err != nil {
		t.Fatalf("unexpected resolver error: %v", err)
	}

	pct, err := resolver.ResolveSharePercent(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ResolveSharePercent error: %v", err)
	}
	if pct != 80 {
		t.Fatalf("expected plan share 80, got %d", pct)
	}
}

func TestShareResolverFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		sub  *models.Subscription
	}{
		{"no subscription", nil},
		{"zero share", &models.Subscription{RevenueSharePercent: 0}},
		{"share above 100", &models.Subscription{RevenueSharePercent: 120}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resolver, _ := NewShareResolver(&fakeSubRepo{sub: tc.sub}, config.PayoutConfig{DefaultRevenueSharePercent: 60})
			pct, err := resolver.ResolveSharePercent(context.Background(), uuid.New())
			if err != nil {
				t.Fatalf("ResolveSharePercent error: %v", err)
			}
			if pct != 60 {
				t.Fatalf("expected default share 60, got %d", pct)
			}
		})
	}
}

func TestSellerCutCentsRoundsDown(t *testing.T) {
	tests := []struct {
		price int64
		pct   int64
		want  int64
	}{
		{10000, 60, 6000},
		{9999, 60, 5999}, // 5999.4 floors
		{101, 33, 33},    // 33.33 floors
		{1, 60, 0},       // sub-cent cut goes to the platform
		{10000, 100, 10000},
	}
	for _, tc := range tests {
		if got := SellerCutCents(tc.price, tc.pct); got != tc.want {
			t.Fatalf("SellerCutCents(%d, %d) = %d, want %d", tc.price, tc.pct, got, tc.want)
		}
	}
}
