package currency_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/tally/internal/currency"
)

func TestFormat(t *testing.T) {
	type testCase struct {
		name   string
		amount string
		code   string
		want   string
	}

	tests := []testCase{
		{name: "Rupees", amount: "95000", code: "INR", want: "₹95,000.00"},
		{name: "Rounds", amount: "10.005", code: "USD", want: "$10.01"},
		{name: "Negative", amount: "-588.74", code: "USD", want: "-$588.74"},
		{name: "Grouping", amount: "1234567.8", code: "USD", want: "$1,234,567.80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, currency.Format(decimal.RequireFromString(tt.amount), tt.code))
		})
	}
}

func TestSigned(t *testing.T) {
	assert.Equal(t, "+$5.00", currency.Signed(decimal.NewFromInt(5), "USD"))
	assert.Equal(t, "-$5.00", currency.Signed(decimal.NewFromInt(-5), "USD"))
	assert.Equal(t, "$0.00", currency.Signed(decimal.Zero, "USD"))
}
