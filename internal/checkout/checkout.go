// Package checkout orchestrates a single payment round trip: compute the
// grand total, open a session with the gateway, and clear the cart once the
// platform payment UI reports confirmed success. It keeps no state beyond
// the in-flight request.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/cart"
	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/payment"
	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/pricing"
)

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to checkout")
	ErrPaymentDeclined  = errors.New("payment was declined")
	ErrPaymentCancelled = errors.New("payment was cancelled")
	ErrUnknownOutcome   = errors.New("unknown payment outcome")
)

// Outcome is the terminal result reported by the platform payment UI.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Session is one checkout attempt: the opaque token the payment UI needs
// plus the summary the amount was derived from.
type Session struct {
	ID           string          `json:"id"`
	ClientSecret string          `json:"client_secret"`
	AmountMinor  int64           `json:"amount"`
	Summary      pricing.Summary `json:"summary"`
}

type Service struct {
	cart    *cart.Store
	gateway payment.Gateway
}

func NewService(cartStore *cart.Store, gateway payment.Gateway) *Service {
	return &Service{
		cart:    cartStore,
		gateway: gateway,
	}
}

// Begin opens a payment session for the current cart. The cart is not
// touched; nothing changes until Complete reports confirmed success.
func (s *Service) Begin(ctx context.Context) (*Session, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	summary := pricing.Summarize(items)
	amount := summary.GrandTotalMinor()
	attemptID := uuid.NewString()

	secret, err := s.gateway.CreateSession(ctx, amount, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment session: %w", err)
	}

	log.Printf("checkout: opened payment session %s for amount %d", attemptID, amount)

	return &Session{
		ID:           attemptID,
		ClientSecret: secret,
		AmountMinor:  amount,
		Summary:      summary,
	}, nil
}

// Complete reacts to the terminal outcome of the payment UI. Only confirmed
// success clears the cart; failure and cancellation leave it untouched and
// are surfaced to the caller.
func (s *Service) Complete(_ context.Context, outcome Outcome) error {
	switch outcome {
	case OutcomeSucceeded:
		s.cart.Clear()
		return nil
	case OutcomeFailed:
		return ErrPaymentDeclined
	case OutcomeCancelled:
		return ErrPaymentCancelled
	default:
		return ErrUnknownOutcome
	}
}
