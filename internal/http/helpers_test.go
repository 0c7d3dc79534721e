package http

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/cart"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedCart puts two items in the cart: 2 x 10.00 and 1 x 5.00.
func seedCart(t *testing.T, store *cart.Store) {
	t.Helper()
	if err := store.Add(cart.Product{ID: 1, Title: "Mouse", Price: dec("10.00")}, 2); err != nil {
		t.Fatalf("Failed to seed cart: %v", err)
	}
	if err := store.Add(cart.Product{ID: 2, Title: "Cable", Price: dec("5.00")}, 1); err != nil {
		t.Fatalf("Failed to seed cart: %v", err)
	}
}
