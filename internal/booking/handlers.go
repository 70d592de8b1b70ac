package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/chezvous/backend-booking/internal/common"
	"github.com/chezvous/backend-booking/internal/gateway"
	"github.com/chezvous/backend-booking/internal/notify"
	"github.com/chezvous/backend-booking/internal/obs"
)

// TransactionInitializer opens a payment transaction with the gateway.
type TransactionInitializer interface {
	InitializeTransaction(ctx context.Context, req gateway.TransactionRequest) (gateway.TransactionResponse, error)
}

// Handler exposes the payment initiation endpoint.
type Handler struct {
	Gateway     TransactionInitializer
	Notify      notify.Dispatcher
	Validate    *validator.Validate
	CallbackURL string
	Logger      zerolog.Logger
}

type initResp struct {
	Status           string `json:"status"`
	AuthorizationURL string `json:"authorizationUrl"`
	Reference        string `json:"reference,omitempty"`
	Message          string `json:"message"`
}

// Initialize validates the booking, opens a gateway transaction and emails
// the customer the payment link.
func (h *Handler) Initialize(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Gateway == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	var req InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "missing or invalid fields", fieldErrors(err))
			h.countInit("invalid")
			return
		}
	}
	nights, err := req.Nights()
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		h.countInit("invalid")
		return
	}

	txReq := gateway.TransactionRequest{
		Email:       req.Email,
		Amount:      ToMinorUnits(req.Amount),
		CallbackURL: h.CallbackURL,
		Metadata: gateway.Metadata{
			Name:     req.Name,
			Email:    req.Email,
			CheckIn:  req.CheckIn,
			CheckOut: req.CheckOut,
			Nights:   nights,
			Total:    req.Amount,
		},
	}
	tx, err := h.Gateway.InitializeTransaction(r.Context(), txReq)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			status = http.StatusGatewayTimeout
		}
		h.Logger.Error().Err(err).Str("email", req.Email).Msg("gateway initialization failed")
		common.JSONError(w, status, "GATEWAY_ERROR", "payment initialization failed", nil)
		h.countInit("gateway_error")
		return
	}

	if h.Notify != nil {
		b := notify.Booking{
			Name:     req.Name,
			Email:    req.Email,
			CheckIn:  req.CheckIn,
			CheckOut: req.CheckOut,
			Nights:   nights,
			Total:    req.Amount,
		}
		// The link is already created; an email failure should not hide it
		// from the caller. Log with enough context to resend manually.
		if err := h.Notify.PaymentInitiated(r.Context(), b, tx.AuthorizationURL); err != nil {
			h.Logger.Error().Err(err).
				Str("email", req.Email).
				Str("reference", tx.Reference).
				Msg("payment link email failed")
		}
	}

	h.countInit("success")
	common.JSON(w, http.StatusOK, initResp{
		Status:           "success",
		AuthorizationURL: tx.AuthorizationURL,
		Reference:        tx.Reference,
		Message:          "Payment initialized successfully",
	})
}

func (h *Handler) countInit(result string) {
	if obs.PaymentInitTotal != nil {
		obs.PaymentInitTotal.WithLabelValues(result).Inc()
	}
}

func fieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
