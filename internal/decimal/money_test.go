package decimal_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalbr/icmsst/internal/decimal"
)

func TestFromFloat(t *testing.T) {
	d := decimal.FromFloat(100.555)
	// Should round half-up to 2 decimal places
	assert.True(t, d.Equal(dec.NewFromFloat(100.56)))
}

func TestFromString(t *testing.T) {
	d, err := decimal.FromString("123456.78")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec.RequireFromString("123456.78")))

	_, err = decimal.FromString("not-a-number")
	require.Error(t, err)
}

func TestMustFromString(t *testing.T) {
	d := decimal.MustFromString("999.99")
	assert.True(t, d.Equal(dec.RequireFromString("999.99")))

	assert.Panics(t, func() {
		decimal.MustFromString("invalid")
	})
}

func TestRound2_HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1.00"},
		{"1.665", "1.67"},
		{"25.204", "25.20"},
		{"0.125", "0.13"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := decimal.Round2(dec.RequireFromString(tt.in))
			assert.True(t, got.Equal(dec.RequireFromString(tt.want)),
				"Round2(%s) = %s, want %s", tt.in, got, tt.want)
		})
	}
}

func TestApplyPercent(t *testing.T) {
	got := decimal.ApplyPercent(dec.NewFromInt(200), dec.NewFromInt(12))
	assert.True(t, got.Equal(dec.NewFromInt(24)))
}

func TestReductionFactor(t *testing.T) {
	got := decimal.ReductionFactor(dec.NewFromInt(30))
	assert.True(t, got.Equal(dec.RequireFromString("0.7")))

	// zero reduction leaves the base untouched
	got = decimal.ReductionFactor(decimal.Zero)
	assert.True(t, got.Equal(dec.NewFromInt(1)))
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.RequireFromString("1.10"),
		dec.RequireFromString("2.20"),
		dec.RequireFromString("3.30"),
	}
	assert.True(t, decimal.Sum(values).Equal(dec.RequireFromString("6.60")))
	assert.True(t, decimal.Sum(nil).Equal(decimal.Zero))
}

func TestIsPositive(t *testing.T) {
	assert.True(t, decimal.IsPositive(dec.NewFromInt(1)))
	assert.False(t, decimal.IsPositive(decimal.Zero))
	assert.False(t, decimal.IsPositive(dec.NewFromInt(-1)))
}
