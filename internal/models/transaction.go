package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeRange is the booking window a transaction is priced over.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (t TimeRange) Duration() time.Duration {
	return t.End.Sub(t.Start)
}

// TransactionCalculation is the final billable breakdown for one parking
// session. It is computed fresh per request and never persisted here.
type TransactionCalculation struct {
	Subtotal         decimal.Decimal   `json:"subtotal"`
	AppliedDiscounts []AppliedDiscount `json:"applied_discounts"`
	DiscountTotal    decimal.Decimal   `json:"discount_total"`
	VATBase          decimal.Decimal   `json:"vat_base"`
	VATAmount        decimal.Decimal   `json:"vat_amount"`
	VATExempt        bool              `json:"vat_exempt"`
	Total            decimal.Decimal   `json:"total"`
}
