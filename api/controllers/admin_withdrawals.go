package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/api/responses"
	"github.com/beatbazaar/beatbazaar-backend/api/validators"
	"github.com/beatbazaar/beatbazaar-backend/internal/withdrawals"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
)

type processWithdrawalRequest struct {
	Status          string  `json:"status" validate:"required"`
	AdminNotes      *string `json:"admin_notes"`
	PayoutReference *string `json:"payout_reference"`
}

// AdminProcessWithdrawal settles a withdrawal request. Approving or paying a
// pending request debits the seller wallet; rejecting releases the hold.
func AdminProcessWithdrawal(svc withdrawals.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		adminID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		requestID, err := uuid.Parse(chi.URLParam(r, "withdrawalId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid withdrawal id"))
			return
		}

		var req processWithdrawalRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Process(r.Context(), withdrawals.ProcessInput{
			RequestID:       requestID,
			AdminID:         adminID,
			NewStatus:       enums.WithdrawalStatus(req.Status),
			AdminNotes:      req.AdminNotes,
			PayoutReference: req.PayoutReference,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, request)
	}
}
