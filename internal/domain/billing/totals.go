package billing

import (
	"github.com/shopspring/decimal"
	"github.com/wms/backend/internal/domain/shared"
	"github.com/wms/backend/internal/domain/shared/valueobject"
)

// DefaultVATRatePercent is the standard VAT rate applied to non-exempt
// customers, as a percentage.
var DefaultVATRatePercent = decimal.NewFromInt(5)

// Totals holds the monetary breakdown of an invoice
type Totals struct {
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	VATExempt bool
}

// ComputeTotals calculates invoice totals from an order subtotal.
// VAT-exempt customers get zero tax. All amounts are rounded half-up
// to 3 decimal places before summing, so Total == Subtotal + Tax holds
// exactly on the stored values.
func ComputeTotals(subtotal decimal.Decimal, vatExempt bool, vatRatePercent decimal.Decimal) (Totals, error) {
	if subtotal.IsNegative() {
		return Totals{}, shared.NewDomainError("INVALID_AMOUNT", "Subtotal cannot be negative")
	}
	if vatRatePercent.IsNegative() {
		return Totals{}, shared.NewDomainError("INVALID_VAT_RATE", "VAT rate cannot be negative")
	}

	rounded := subtotal.Round(valueobject.MinorUnitPlaces)

	tax := decimal.Zero
	if !vatExempt {
		tax = rounded.Mul(vatRatePercent).
			Div(decimal.NewFromInt(100)).
			Round(valueobject.MinorUnitPlaces)
	}

	return Totals{
		Subtotal:  rounded,
		Tax:       tax,
		Total:     rounded.Add(tax),
		VATExempt: vatExempt,
	}, nil
}
