package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/api/responses"
	"github.com/beatbazaar/beatbazaar-backend/api/validators"
	"github.com/beatbazaar/beatbazaar-backend/internal/wallets"
	"github.com/beatbazaar/beatbazaar-backend/internal/withdrawals"
	"github.com/beatbazaar/beatbazaar-backend/pkg/db/models"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
)

type requestWithdrawalRequest struct {
	AmountCents  int64  `json:"amount_cents" validate:"required,gt=0"`
	PayoutMethod string `json:"payout_method" validate:"required"`
}

type requestWithdrawalResponse struct {
	Withdrawal *models.WithdrawalRequest `json:"withdrawal"`
	// Wallet is null when the post-reservation snapshot could not be loaded;
	// the reservation itself already committed.
	Wallet *walletSnapshot `json:"wallet"`
}

type walletSnapshot struct {
	BalanceCents        int64 `json:"balance_cents"`
	PendingBalanceCents int64 `json:"pending_balance_cents"`
	AvailableCents      int64 `json:"available_cents"`
}

// RequestWithdrawal reserves available funds behind a pending payout request
// and returns the post-reservation wallet snapshot alongside it.
func RequestWithdrawal(svc withdrawals.Service, walletsSvc wallets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req requestWithdrawalRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Request(r.Context(), withdrawals.RequestInput{
			SellerID:     sellerID,
			AmountCents:  req.AmountCents,
			PayoutMethod: enums.PayoutMethod(req.PayoutMethod),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := requestWithdrawalResponse{Withdrawal: request}
		statement, stmtErr := walletsSvc.GetStatement(r.Context(), sellerID, 1)
		if stmtErr != nil {
			logg.Error(r.Context(), "loading wallet snapshot after withdrawal request", stmtErr)
		} else {
			payload.Wallet = &walletSnapshot{
				BalanceCents:        statement.Wallet.BalanceCents,
				PendingBalanceCents: statement.Wallet.PendingBalanceCents,
				AvailableCents:      statement.AvailableCents,
			}
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payload)
	}
}

// WithdrawalDetail returns one of the caller's withdrawal requests.
func WithdrawalDetail(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := uuid.Parse(chi.URLParam(r, "withdrawalId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid withdrawal id"))
			return
		}

		request, err := svc.GetByID(r.Context(), sellerID, requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}

// WithdrawalList returns the caller's withdrawal requests, cursor paginated.
func WithdrawalList(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListBySeller(r.Context(), sellerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
