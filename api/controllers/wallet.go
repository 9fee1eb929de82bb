package controllers

import (
	"net/http"

	"github.com/beatbazaar/beatbazaar-backend/api/responses"
	"github.com/beatbazaar/beatbazaar-backend/api/validators"
	"github.com/beatbazaar/beatbazaar-backend/internal/wallets"
	"github.com/beatbazaar/beatbazaar-backend/pkg/config"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
	"github.com/beatbazaar/beatbazaar-backend/pkg/pagination"
)

type walletStatementResponse struct {
	BalanceCents        int64 `json:"balance_cents"`
	PendingBalanceCents int64 `json:"pending_balance_cents"`
	AvailableCents      int64 `json:"available_cents"`
	Transactions        any   `json:"transactions"`
}

// WalletStatement returns the caller's balances and recent ledger entries.
func WalletStatement(svc wallets.Service, payout config.PayoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", payout.RecentTransactionLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		statement, err := svc.GetStatement(r.Context(), ownerID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, walletStatementResponse{
			BalanceCents:        statement.Wallet.BalanceCents,
			PendingBalanceCents: statement.Wallet.PendingBalanceCents,
			AvailableCents:      statement.AvailableCents,
			Transactions:        statement.Transactions,
		})
	}
}
