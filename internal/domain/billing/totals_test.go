package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name      string
		subtotal  string
		vatExempt bool
		rate      string
		wantSub   string
		wantTax   string
		wantTotal string
	}{
		{
			name:      "standard 5 percent VAT",
			subtotal:  "255.000",
			rate:      "5",
			wantSub:   "255.000",
			wantTax:   "12.750",
			wantTotal: "267.750",
		},
		{
			name:      "exempt customer pays no tax",
			subtotal:  "255.000",
			vatExempt: true,
			rate:      "5",
			wantSub:   "255.000",
			wantTax:   "0.000",
			wantTotal: "255.000",
		},
		{
			name:      "tax rounds half up",
			subtotal:  "10.010", // 5% = 0.5005 -> 0.501
			rate:      "5",
			wantSub:   "10.010",
			wantTax:   "0.501",
			wantTotal: "10.511",
		},
		{
			name:      "tax rounds down below half",
			subtotal:  "10.008", // 5% = 0.5004 -> 0.500
			rate:      "5",
			wantSub:   "10.008",
			wantTax:   "0.500",
			wantTotal: "10.508",
		},
		{
			name:      "zero subtotal",
			subtotal:  "0",
			rate:      "5",
			wantSub:   "0.000",
			wantTax:   "0.000",
			wantTotal: "0.000",
		},
		{
			name:      "zero rate",
			subtotal:  "100.000",
			rate:      "0",
			wantSub:   "100.000",
			wantTax:   "0.000",
			wantTotal: "100.000",
		},
		{
			name:      "subtotal itself rounds to minor unit",
			subtotal:  "99.9995",
			rate:      "5",
			wantSub:   "100.000",
			wantTax:   "5.000",
			wantTotal: "105.000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals, err := ComputeTotals(
				decimal.RequireFromString(tt.subtotal),
				tt.vatExempt,
				decimal.RequireFromString(tt.rate),
			)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSub, totals.Subtotal.StringFixed(3))
			assert.Equal(t, tt.wantTax, totals.Tax.StringFixed(3))
			assert.Equal(t, tt.wantTotal, totals.Total.StringFixed(3))
			assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Tax)))
		})
	}
}

func TestComputeTotals_Invalid(t *testing.T) {
	_, err := ComputeTotals(decimal.NewFromInt(-1), false, DefaultVATRatePercent)
	assert.Error(t, err)

	_, err = ComputeTotals(decimal.NewFromInt(1), false, decimal.NewFromInt(-5))
	assert.Error(t, err)
}

func TestFormatInvoiceNumber(t *testing.T) {
	tests := []struct {
		code string
		year int
		seq  int64
		want string
	}{
		{"ACME", 2026, 1, "ACME-INV-2026-0001"},
		{"ACME", 2026, 42, "ACME-INV-2026-0042"},
		{"ACME", 2026, 9999, "ACME-INV-2026-9999"},
		{"ACME", 2026, 10000, "ACME-INV-2026-10000"},
		{"GULF", 2027, 123, "GULF-INV-2027-0123"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInvoiceNumber(tt.code, tt.year, tt.seq))
		})
	}
}
