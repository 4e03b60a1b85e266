package currency

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Format renders an amount in major units with the currency's symbol,
// separators and fraction digits, e.g. ₹95,000.00.
func Format(amount decimal.Decimal, code string) string {
	// money.New never returns a nil currency, unlike money.GetCurrency.
	cur := *money.New(0, code).Currency()
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))

	return cur.Formatter().Format(minor.IntPart())
}

// Signed prefixes positive amounts with "+".
func Signed(amount decimal.Decimal, code string) string {
	if amount.IsPositive() {
		return "+" + Format(amount, code)
	}

	return Format(amount, code)
}
