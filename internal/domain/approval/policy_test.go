package approval

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func threshold(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		cfg     Config
		outcome Outcome
	}{
		{
			name:    "approval disabled auto-approves everything",
			total:   "999999.999",
			cfg:     Config{RequireApproval: false},
			outcome: OutcomeAutoApproved,
		},
		{
			name:    "below threshold auto-approves",
			total:   "50.000",
			cfg:     Config{RequireApproval: true, AutoApproveThreshold: threshold("100.000")},
			outcome: OutcomeAutoApproved,
		},
		{
			name:    "exactly at threshold auto-approves",
			total:   "100.000",
			cfg:     Config{RequireApproval: true, AutoApproveThreshold: threshold("100.000")},
			outcome: OutcomeAutoApproved,
		},
		{
			name:    "one baisa over threshold needs review",
			total:   "100.001",
			cfg:     Config{RequireApproval: true, AutoApproveThreshold: threshold("100.000")},
			outcome: OutcomeManualReview,
		},
		{
			name:    "no threshold means every order is reviewed",
			total:   "0.001",
			cfg:     Config{RequireApproval: true},
			outcome: OutcomeManualReview,
		},
		{
			name:    "zero threshold still auto-approves zero total",
			total:   "0",
			cfg:     Config{RequireApproval: true, AutoApproveThreshold: threshold("0")},
			outcome: OutcomeAutoApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Decide(decimal.RequireFromString(tt.total), tt.cfg)
			assert.Equal(t, tt.outcome, d.Outcome)
			assert.Equal(t, tt.outcome == OutcomeAutoApproved, d.AutoApproved())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, Config{RequireApproval: true}.Validate())
	assert.NoError(t, Config{RequireApproval: true, AutoApproveThreshold: threshold("100")}.Validate())
	assert.Error(t, Config{RequireApproval: true, AutoApproveThreshold: threshold("-1")}.Validate())
}
