package controllers

import (
	"net/http"

	"github.com/beatbazaar/beatbazaar-backend/api/responses"
	"github.com/beatbazaar/beatbazaar-backend/api/validators"
	"github.com/beatbazaar/beatbazaar-backend/internal/notifications"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
	"github.com/beatbazaar/beatbazaar-backend/pkg/pagination"
)

// ListNotifications returns the caller's recent in-app notifications.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), userID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": rows})
	}
}
