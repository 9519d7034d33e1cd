package gst

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitType distinguishes intra-state from inter-state supplies.
type SplitType string

const (
	// SplitIntraState applies when buyer and seller share a state code.
	SplitIntraState SplitType = "intra-state"
	// SplitInterState applies when buyer and seller are in different states.
	SplitInterState SplitType = "inter-state"
)

// TaxSplit is the computed GST breakdown for a single taxable amount.
// Intra-state supplies levy CGST and SGST at half the rate each; inter-state
// supplies levy IGST at the full rate. Components are exact decimals so that
// CGST + SGST + IGST always equals amount * rate / 100.
type TaxSplit struct {
	Type     SplitType       `json:"type"`
	CGST     decimal.Decimal `json:"cgst"`
	SGST     decimal.Decimal `json:"sgst"`
	IGST     decimal.Decimal `json:"igst"`
	TotalTax decimal.Decimal `json:"total_tax"`
}

var (
	// ErrNonPositiveAmount indicates a zero or negative taxable amount.
	ErrNonPositiveAmount = errors.New("gst: amount must be positive")
	// ErrInvalidRate indicates a rate outside the 0-100 percent range.
	ErrInvalidRate = errors.New("gst: rate must be between 0 and 100")
)

var oneHundred = decimal.NewFromInt(100)

// CalculateTax determines the GST split for a transaction. Both GSTINs must
// be structurally valid; the state codes embedded in them decide whether the
// supply is intra-state (CGST+SGST) or inter-state (IGST).
func CalculateTax(amount decimal.Decimal, buyerGSTIN, sellerGSTIN string, rate decimal.Decimal) (TaxSplit, error) {
	if amount.Sign() <= 0 {
		return TaxSplit{}, ErrNonPositiveAmount
	}
	if rate.Sign() < 0 || rate.GreaterThan(oneHundred) {
		return TaxSplit{}, ErrInvalidRate
	}

	buyerState, err := StateCode(buyerGSTIN)
	if err != nil {
		return TaxSplit{}, fmt.Errorf("buyer: %w", err)
	}
	sellerState, err := StateCode(sellerGSTIN)
	if err != nil {
		return TaxSplit{}, fmt.Errorf("seller: %w", err)
	}

	// Shift(-2) divides by 100 exactly; multiplying by 5*10^-1 halves exactly.
	total := amount.Mul(rate).Shift(-2)
	if buyerState == sellerState {
		half := total.Mul(decimal.New(5, -1))
		return TaxSplit{
			Type:     SplitIntraState,
			CGST:     half,
			SGST:     half,
			IGST:     decimal.Zero,
			TotalTax: half.Add(half),
		}, nil
	}
	return TaxSplit{
		Type:     SplitInterState,
		CGST:     decimal.Zero,
		SGST:     decimal.Zero,
		IGST:     total,
		TotalTax: total,
	}, nil
}
