package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineAndSum(t *testing.T) {
	assert.True(t, d("91.98").Equal(Line(d("45.99"), 2)))
	assert.True(t, d("0").Equal(Line(d("45.99"), 0)))
	assert.True(t, d("121.97").Equal(Sum(d("91.98"), d("29.99"))))
	assert.True(t, Sum().IsZero())
}

func TestApplyRate(t *testing.T) {
	assert.True(t, d("18.2955").Equal(ApplyRate(d("121.97"), d("0.15"))))
}

func TestRoundAndFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"18.2955", "18.30"},
		{"140.2655", "140.27"},
		{"0.005", "0.01"},
		{"-0.005", "-0.01"},
		{"7", "7.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(d(tt.in)))
			assert.Equal(t, tt.want, Round(d(tt.in)).StringFixed(2))
		})
	}
}

func TestParseRate(t *testing.T) {
	def := d("0.15")

	t.Run("Empty uses default", func(t *testing.T) {
		r, err := ParseRate("  ", def)
		require.NoError(t, err)
		assert.True(t, def.Equal(r))
	})

	t.Run("Fraction", func(t *testing.T) {
		r, err := ParseRate("0.10", def)
		require.NoError(t, err)
		assert.True(t, d("0.1").Equal(r))
	})

	t.Run("Percent", func(t *testing.T) {
		r, err := ParseRate("15%", def)
		require.NoError(t, err)
		assert.True(t, d("0.15").Equal(r))
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseRate("abc", def)
		assert.Error(t, err)
	})

	t.Run("Out of range", func(t *testing.T) {
		_, err := ParseRate("1.5", def)
		assert.Error(t, err)

		_, err = ParseRate("-0.1", def)
		assert.Error(t, err)
	})
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "15%", Percent(d("0.15")))
}
