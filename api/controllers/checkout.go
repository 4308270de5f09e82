package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shopease/shopease-backend/api/responses"
	"github.com/shopease/shopease-backend/api/validators"
	checkoutsvc "github.com/shopease/shopease-backend/internal/checkout"
	"github.com/shopease/shopease-backend/internal/orders"
	"github.com/shopease/shopease-backend/pkg/logger"
	"github.com/shopease/shopease-backend/pkg/types"
)

type checkoutSessionResponse struct {
	Stage           string                 `json:"stage"`
	Address         *types.ShippingAddress `json:"address,omitempty"`
	OrderID         *uuid.UUID             `json:"order_id,omitempty"`
	GatewayOrderRef string                 `json:"gateway_order_ref,omitempty"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

func toSessionResponse(session *checkoutsvc.Session) checkoutSessionResponse {
	resp := checkoutSessionResponse{
		Stage:           session.Stage.String(),
		Address:         session.Address,
		GatewayOrderRef: session.GatewayOrderRef,
		UpdatedAt:       session.UpdatedAt,
	}
	if session.OrderID != uuid.Nil {
		id := session.OrderID
		resp.OrderID = &id
	}
	return resp
}

type orderIntentResponse struct {
	OrderID         uuid.UUID `json:"order_id"`
	GatewayOrderRef string    `json:"gateway_order_ref"`
	Amount          string    `json:"amount"`
	AmountPaise     int64     `json:"amount_paise"`
	Currency        string    `json:"currency"`
	GatewayKeyID    string    `json:"gateway_key_id"`
}

type verifyPaymentRequest struct {
	OrderRef   string `json:"razorpay_order_id" validate:"required"`
	PaymentRef string `json:"razorpay_payment_id" validate:"required"`
	Signature  string `json:"razorpay_signature" validate:"required"`
}

type failPaymentRequest struct {
	OrderRef string `json:"razorpay_order_id" validate:"required"`
}

// CheckoutBegin starts or resumes a checkout for the scope's cart.
func CheckoutBegin(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Begin(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSessionResponse(session))
	}
}

// CheckoutCurrent returns the in-flight checkout session.
func CheckoutCurrent(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Current(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSessionResponse(session))
	}
}

// CheckoutAddress submits the shipping destination and advances to payment.
func CheckoutAddress(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload types.ShippingAddress
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.SubmitAddress(r.Context(), scope, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSessionResponse(session))
	}
}

// CheckoutCreateOrder registers the order with the payment gateway. Requires
// a signed-in shopper.
func CheckoutCreateOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.CreateOrder(r.Context(), scope, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderIntentResponse{
			OrderID:         intent.OrderID,
			GatewayOrderRef: intent.GatewayOrderRef,
			Amount:          types.RupeesFromPaise(intent.AmountPaise),
			AmountPaise:     intent.AmountPaise,
			Currency:        intent.Currency,
			GatewayKeyID:    intent.GatewayKeyID,
		})
	}
}

// CheckoutVerify handles the gateway's payment success callback.
func CheckoutVerify(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmPayment(r.Context(), scope, checkoutsvc.ConfirmPaymentInput{
			OrderRef:   payload.OrderRef,
			PaymentRef: payload.PaymentRef,
			Signature:  payload.Signature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders.FromModel(order))
	}
}

// CheckoutFail records a client-reported payment failure or dismissal so the
// shopper can retry.
func CheckoutFail(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := cartScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload failPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.FailPayment(r.Context(), scope, payload.OrderRef)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toSessionResponse(session))
	}
}
