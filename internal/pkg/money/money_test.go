package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		discount string
		want     string
	}{
		{"no discount", "10.00", "0", "10.00"},
		{"flat percentage", "100.00", "25", "75.00"},
		{"keeps full precision", "33.33", "15", "28.3305"},
		{"full discount", "9.99", "100", "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price := decimal.RequireFromString(tt.price)
			discount := decimal.RequireFromString(tt.discount)
			want := decimal.RequireFromString(tt.want)

			got := DiscountedPrice(price, discount)
			assert.True(t, got.Equal(want), "got %s, want %s", got, want)
		})
	}
}

func TestRound2HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"84.9915", "84.99"},
		{"84.995", "85.00"},
		{"2.675", "2.68"},
		{"10", "10.00"},
	}

	for _, tt := range tests {
		got := Round2(decimal.RequireFromString(tt.in))
		want := decimal.RequireFromString(tt.want)
		assert.True(t, got.Equal(want), "Round2(%s) = %s, want %s", tt.in, got, want)
	}
}
