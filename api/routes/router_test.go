package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/beatbazaar/beatbazaar-backend/internal/orders"
	"github.com/beatbazaar/beatbazaar-backend/internal/wallets"
	"github.com/beatbazaar/beatbazaar-backend/internal/withdrawals"
	pkgAuth "github.com/beatbazaar/beatbazaar-backend/pkg/auth"
	"github.com/beatbazaar/beatbazaar-backend/pkg/config"
	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
	"github.com/beatbazaar/beatbazaar-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubOrdersService struct{}

func (stubOrdersService) Create(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error) {
	return nil, nil
}

func (stubOrdersService) GetByID(ctx context.Context, buyerID, orderID uuid.UUID) (*models.Order, error) {
	return nil, nil
}

func (stubOrdersService) ListByBuyer(ctx context.Context, buyerID uuid.UUID, params pagination.Params) (*orders.ListResult, error) {
	return &orders.ListResult{}, nil
}

type stubWalletsService struct{}

func (stubWalletsService) AddTransaction(ctx context.Context, input wallets.AddTransactionInput) (*models.WalletTransaction, error) {
	return nil, nil
}

func (stubWalletsService) AddTransactionTx(ctx context.Context, tx *gorm.DB, input wallets.AddTransactionInput) (*models.WalletTransaction, error) {
	return nil, nil
}

func (stubWalletsService) GetStatement(ctx context.Context, ownerID uuid.UUID, limit int) (*wallets.Statement, error) {
	return &wallets.Statement{
		Wallet:         models.Wallet{OwnerID: ownerID, BalanceCents: 12000, PendingBalanceCents: 2000},
		AvailableCents: 10000,
	}, nil
}

type stubWithdrawalsService struct{}

func (stubWithdrawalsService) Request(ctx context.Context, input withdrawals.RequestInput) (*models.WithdrawalRequest, error) {
	return nil, nil
}

func (stubWithdrawalsService) Process(ctx context.Context, input withdrawals.ProcessInput) (*models.WithdrawalRequest, error) {
	return &models.WithdrawalRequest{ID: input.RequestID, Status: input.NewStatus}, nil
}

func (stubWithdrawalsService) GetByID(ctx context.Context, sellerID, requestID uuid.UUID) (*models.WithdrawalRequest, error) {
	return nil, nil
}

func (stubWithdrawalsService) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*withdrawals.ListResult, error) {
	return &withdrawals.ListResult{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) Emit(ctx context.Context, userID uuid.UUID, kind enums.NotificationKind, payload any) {
}

func (stubNotificationsService) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.Notification, error) {
	return nil, nil
}

func testRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()

	jwtCfg := config.JWTConfig{
		Secret:            "router-test-secret",
		Issuer:            "beatbazaar",
		ExpirationMinutes: 5,
	}
	cfg := &config.Config{
		App:    config.AppConfig{Env: config.AppEnvDev},
		JWT:    jwtCfg,
		Payout: config.PayoutConfig{RecentTransactionLimit: 50},
	}

	handler := NewRouter(Deps{
		Config:        cfg,
		Logger:        logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		DB:            stubPinger{},
		Orders:        stubOrdersService{},
		Wallets:       stubWalletsService{},
		Withdrawals:   stubWithdrawalsService{},
		Notifications: stubNotificationsService{},
	})
	return handler, jwtCfg
}

func mintToken(t *testing.T, cfg config.JWTConfig, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	handler, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	handler, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestWalletStatementWithToken(t *testing.T) {
	handler, jwtCfg := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwtCfg, enums.UserRoleSeller))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			AvailableCents int64 `json:"available_cents"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.AvailableCents != 10000 {
		t.Fatalf("unexpected available %d", envelope.Data.AvailableCents)
	}
}

func TestAdminRoutesRejectNonAdmin(t *testing.T) {
	handler, jwtCfg := testRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/withdrawals/"+uuid.NewString()+"/process", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, jwtCfg, enums.UserRoleSeller))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
