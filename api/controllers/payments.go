package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jordanvelez/shopcore-backend/api/responses"
	"github.com/jordanvelez/shopcore-backend/api/validators"
	ordersvc "github.com/jordanvelez/shopcore-backend/internal/orders"
	"github.com/jordanvelez/shopcore-backend/pkg/logger"
)

type payOrderRequest struct {
	OrderID    uuid.UUID `json:"order_id" validate:"required"`
	CardNumber string    `json:"card_number" validate:"required"`
	CardExpiry string    `json:"card_expiry" validate:"required"`
	CardCVV    string    `json:"card_cvv" validate:"required,min=3,max=4"`
}

// PaymentProcess settles a pending order through the payment processor.
func PaymentProcess(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload payOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.PayOrder(r.Context(), userID, ordersvc.PayOrderInput{
			OrderID:    payload.OrderID,
			CardNumber: payload.CardNumber,
			CardExpiry: payload.CardExpiry,
			CardCVV:    payload.CardCVV,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, receipt)
	}
}
