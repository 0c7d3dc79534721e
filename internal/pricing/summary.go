package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/nethmidilekshakavi/tulutech-ecommerce-app/internal/cart"
)

// Shipping is free strictly above the threshold: a subtotal of exactly
// 50.00 still pays the standard fee ("free shipping on orders over $50").
var (
	FreeShippingThreshold = decimal.NewFromInt(50)
	StandardShippingFee   = decimal.RequireFromString("9.99")

	minorUnitsPerUnit = decimal.NewFromInt(100)
)

// Summary is the derived order summary. It is never stored; it is
// recomputed from the current line items on every read.
type Summary struct {
	Subtotal    decimal.Decimal `json:"subtotal"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
}

// Summarize computes the order summary for the given line items. An empty
// cart yields a zero subtotal, the standard shipping fee and a grand total
// equal to that fee.
func Summarize(items []cart.LineItem) Summary {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	fee := StandardShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		fee = decimal.Zero
	}

	return Summary{
		Subtotal:    subtotal,
		ShippingFee: fee,
		GrandTotal:  subtotal.Add(fee),
	}
}

// GrandTotalMinor returns the grand total in minor currency units (cents),
// the amount the payment gateway expects.
func (s Summary) GrandTotalMinor() int64 {
	return s.GrandTotal.Mul(minorUnitsPerUnit).Round(0).IntPart()
}
