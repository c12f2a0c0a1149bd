// internal/pkg/money/money.go
package money

import "github.com/shopspring/decimal"

var oneHundred = decimal.NewFromInt(100)

// DiscountedPrice applies a percentage discount to a unit price without
// rounding. Line-level values stay at full precision; rounding happens once,
// at the summary level.
func DiscountedPrice(price decimal.Decimal, discountPercentage decimal.Decimal) decimal.Decimal {
	if discountPercentage.IsZero() {
		return price
	}
	discount := price.Mul(discountPercentage).Div(oneHundred)
	return price.Sub(discount)
}

// Round2 rounds a monetary amount to 2 decimal places, half up.
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
