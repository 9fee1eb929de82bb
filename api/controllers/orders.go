package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/beatbazaar/beatbazaar-backend/api/middleware"
	"github.com/beatbazaar/beatbazaar-backend/api/responses"
	"github.com/beatbazaar/beatbazaar-backend/api/validators"
	"github.com/beatbazaar/beatbazaar-backend/internal/orders"
	"github.com/beatbazaar/beatbazaar-backend/pkg/enums"
	pkgerrors "github.com/beatbazaar/beatbazaar-backend/pkg/errors"
	"github.com/beatbazaar/beatbazaar-backend/pkg/logger"
	"github.com/beatbazaar/beatbazaar-backend/pkg/pagination"
)

type createOrderRequest struct {
	PaymentMethod    string                   `json:"payment_method" validate:"required"`
	PaymentRef       string                   `json:"payment_ref"`
	TotalAmountCents int64                    `json:"total_amount_cents" validate:"required,gt=0"`
	Items            []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createOrderItemRequest struct {
	BeatID      string `json:"beat_id" validate:"required,uuid"`
	LicenseTier string `json:"license_tier" validate:"required"`
}

// CreateOrder verifies the gateway payment and credits sellers in one call.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.CreateOrderInput{
			BuyerID:          buyerID,
			PaymentMethod:    enums.PaymentMethod(req.PaymentMethod),
			PaymentRef:       req.PaymentRef,
			TotalAmountCents: req.TotalAmountCents,
		}
		for _, item := range req.Items {
			beatID, parseErr := uuid.Parse(item.BeatID)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid beat id"))
				return
			}
			tier, parseErr := enums.ParseLicenseTier(item.LicenseTier)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid license tier"))
				return
			}
			input.Items = append(input.Items, orders.CreateOrderItemInput{
				BeatID:      beatID,
				LicenseTier: tier,
			})
		}

		order, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrderDetail returns one of the caller's orders with its line items.
func OrderDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetByID(r.Context(), buyerID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// OrderList returns the caller's orders newest first, cursor paginated.
func OrderList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := listParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListByBuyer(r.Context(), buyerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid subject")
	}
	return id, nil
}

func listParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: r.URL.Query().Get("cursor"),
	}, nil
}
