package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/checkout"
	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/payment"
)

type CheckoutHandler struct {
	service *checkout.Service
	timeout time.Duration
}

func NewCheckoutHandler(service *checkout.Service, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		timeout: timeout,
	}
}

type CompleteRequestDTO struct {
	Outcome checkout.Outcome `json:"outcome"`
}

type CompleteResponseDTO struct {
	Status      string `json:"status"`
	CartCleared bool   `json:"cart_cleared"`
}

func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.service.Begin(ctx)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.service.Complete(r.Context(), req.Outcome); err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, CompleteResponseDTO{Status: "ok", CartCleared: true})
}

func handleCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var sessionErr *payment.SessionError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty, nothing to checkout")
	case errors.Is(err, checkout.ErrPaymentDeclined):
		respondError(w, http.StatusPaymentRequired, "payment_declined", "payment was declined")
	case errors.Is(err, checkout.ErrPaymentCancelled):
		respondError(w, http.StatusConflict, "payment_cancelled", "payment was cancelled")
	case errors.Is(err, checkout.ErrUnknownOutcome):
		respondError(w, http.StatusBadRequest, "invalid_outcome", "outcome must be succeeded, failed or cancelled")
	case errors.As(err, &sessionErr):
		respondError(w, http.StatusBadGateway, "payment_session_failed", sessionErr.Error())
	default:
		log.Printf("checkout failed (request %s): %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusBadGateway, "payment_session_failed", "failed to create payment session")
	}
}
