package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/skillbazaar/backend/api/responses"
	"github.com/skillbazaar/backend/api/validators"
	"github.com/skillbazaar/backend/internal/payments"
	pkgerrors "github.com/skillbazaar/backend/pkg/errors"
	"github.com/skillbazaar/backend/pkg/logger"
)

type initiatePurchaseRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// InitiatePurchase opens a purchase and returns the signed gateway form.
func InitiatePurchase(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		buyerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body initiatePurchaseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Initiate(r.Context(), body.OrderID, buyerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// EsewaCallback settles a purchase from the gateway redirect. The gateway
// appends the signed payload as a base64 "data" query parameter, so this
// endpoint stays unauthenticated and relies on signature verification.
func EsewaCallback(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		token := strings.TrimSpace(r.URL.Query().Get("data"))
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing callback data"))
			return
		}

		payment, err := svc.Confirm(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}
