package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gorm.io/gorm"

	"github.com/beatbazaar/beatbazaar-backend/api/middleware"
	"github.com/beatbazaar/beatbazaar-backend/internal/wallets"
	"github.com/beatbazaar/beatbazaar-backend/internal/withdrawals"
	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
	"github.com/beatbazaar/beatbazaar-backend/pkg/pagination"
)

type testWalletsService struct {
	statementErr error
}

func (testWalletsService) AddTransaction(ctx context.Context, input wallets.AddTransactionInput) (*models.WalletTransaction, error) {
	return nil, nil
}

func (testWalletsService) AddTransactionTx(ctx context.Context, tx *gorm.DB, input wallets.AddTransactionInput) (*models.WalletTransaction, error) {
	return nil, nil
}

func (s testWalletsService) GetStatement(ctx context.Context, ownerID uuid.UUID, limit int) (*wallets.Statement, error) {
	if s.statementErr != nil {
		return nil, s.statementErr
	}
	return &wallets.Statement{
		Wallet:         models.Wallet{OwnerID: ownerID, BalanceCents: 10000, PendingBalanceCents: 5000},
		AvailableCents: 5000,
	}, nil
}

type testWithdrawalsService struct {
	requestFn func(ctx context.Context, input withdrawals.RequestInput) (*models.WithdrawalRequest, error)
	processFn func(ctx context.Context, input withdrawals.ProcessInput) (*models.WithdrawalRequest, error)
}

func (s *testWithdrawalsService) Request(ctx context.Context, input withdrawals.RequestInput) (*models.WithdrawalRequest, error) {
	if s.requestFn != nil {
		return s.requestFn(ctx, input)
	}
	return nil, nil
}

func (s *testWithdrawalsService) Process(ctx context.Context, input withdrawals.ProcessInput) (*models.WithdrawalRequest, error) {
	if s.processFn != nil {
		return s.processFn(ctx, input)
	}
	return nil, nil
}

func (s *testWithdrawalsService) GetByID(ctx context.Context, sellerID, requestID uuid.UUID) (*models.WithdrawalRequest, error) {
	return nil, nil
}

func (s *testWithdrawalsService) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*withdrawals.ListResult, error) {
	return &withdrawals.ListResult{}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestRequestWithdrawalSuccess(t *testing.T) {
	sellerID := uuid.New()
	var got withdrawals.RequestInput
	svc := &testWithdrawalsService{
		requestFn: func(ctx context.Context, input withdrawals.RequestInput) (*models.WithdrawalRequest, error) {
			got = input
			return &models.WithdrawalRequest{
				ID:           uuid.New(),
				SellerID:     input.SellerID,
				AmountCents:  input.AmountCents,
				PayoutMethod: input.PayoutMethod,
				Status:       enums.WithdrawalStatusPending,
			}, nil
		},
	}

	body := `{"amount_cents":5000,"payout_method":"bank"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/withdrawals", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), sellerID.String()))

	resp := httptest.NewRecorder()
	RequestWithdrawal(svc, testWalletsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.SellerID != sellerID {
		t.Fatalf("unexpected seller %s", got.SellerID)
	}
	if got.AmountCents != 5000 {
		t.Fatalf("unexpected amount %d", got.AmountCents)
	}
	if got.PayoutMethod != enums.PayoutMethodBank {
		t.Fatalf("unexpected payout method %s", got.PayoutMethod)
	}

	var envelope struct {
		Data struct {
			Withdrawal models.WithdrawalRequest `json:"withdrawal"`
			Wallet     struct {
				AvailableCents int64 `json:"available_cents"`
			} `json:"wallet"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Withdrawal.Status != enums.WithdrawalStatusPending {
		t.Fatalf("unexpected status %s", envelope.Data.Withdrawal.Status)
	}
	if envelope.Data.Wallet.AvailableCents != 5000 {
		t.Fatalf("unexpected available %d", envelope.Data.Wallet.AvailableCents)
	}
}

func TestRequestWithdrawalSnapshotUnavailable(t *testing.T) {
	sellerID := uuid.New()
	svc := &testWithdrawalsService{
		requestFn: func(ctx context.Context, input withdrawals.RequestInput) (*models.WithdrawalRequest, error) {
			return &models.WithdrawalRequest{
				ID:           uuid.New(),
				SellerID:     input.SellerID,
				AmountCents:  input.AmountCents,
				PayoutMethod: input.PayoutMethod,
				Status:       enums.WithdrawalStatusPending,
			}, nil
		},
	}

	body := `{"amount_cents":5000,"payout_method":"bank"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/withdrawals", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), sellerID.String()))

	resp := httptest.NewRecorder()
	RequestWithdrawal(svc, testWalletsService{statementErr: errors.New("db down")}, testLogger())(resp, req)

	// The reservation committed, so the request still succeeds.
	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Data struct {
			Withdrawal models.WithdrawalRequest `json:"withdrawal"`
			Wallet     *json.RawMessage         `json:"wallet"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.Withdrawal.Status != enums.WithdrawalStatusPending {
		t.Fatalf("unexpected status %s", envelope.Data.Withdrawal.Status)
	}
	if envelope.Data.Wallet != nil && string(*envelope.Data.Wallet) != "null" {
		t.Fatalf("expected null wallet snapshot, got %s", string(*envelope.Data.Wallet))
	}
}

func TestRequestWithdrawalRejectsMissingAmount(t *testing.T) {
	called := false
	svc := &testWithdrawalsService{
		requestFn: func(ctx context.Context, input withdrawals.RequestInput) (*models.WithdrawalRequest, error) {
			called = true
			return nil, nil
		},
	}

	body := `{"payout_method":"bank"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/withdrawals", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))

	resp := httptest.NewRecorder()
	RequestWithdrawal(svc, testWalletsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if called {
		t.Fatal("service should not be called for invalid body")
	}
}

func TestRequestWithdrawalMissingCredentials(t *testing.T) {
	svc := &testWithdrawalsService{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallet/withdrawals", strings.NewReader(`{"amount_cents":5000,"payout_method":"bank"}`))

	resp := httptest.NewRecorder()
	RequestWithdrawal(svc, testWalletsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}

func TestAdminProcessWithdrawalSuccess(t *testing.T) {
	adminID := uuid.New()
	requestID := uuid.New()
	var got withdrawals.ProcessInput
	svc := &testWithdrawalsService{
		processFn: func(ctx context.Context, input withdrawals.ProcessInput) (*models.WithdrawalRequest, error) {
			got = input
			return &models.WithdrawalRequest{ID: input.RequestID, Status: input.NewStatus}, nil
		},
	}

	body := `{"status":"approved","admin_notes":"payout batch 12"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/withdrawals/"+requestID.String()+"/process", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), adminID.String()))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("withdrawalId", requestID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	AdminProcessWithdrawal(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.RequestID != requestID {
		t.Fatalf("unexpected request id %s", got.RequestID)
	}
	if got.AdminID != adminID {
		t.Fatalf("unexpected admin id %s", got.AdminID)
	}
	if got.NewStatus != enums.WithdrawalStatusApproved {
		t.Fatalf("unexpected status %s", got.NewStatus)
	}
	if got.AdminNotes == nil || *got.AdminNotes != "payout batch 12" {
		t.Fatal("admin notes not forwarded")
	}
}

func TestAdminProcessWithdrawalInvalidID(t *testing.T) {
	svc := &testWithdrawalsService{}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/withdrawals/not-a-uuid/process", strings.NewReader(`{"status":"approved"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("withdrawalId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	AdminProcessWithdrawal(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
