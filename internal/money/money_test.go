package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"water-delivery/internal/apperr"
)

func TestNew(t *testing.T) {
	a, err := New(2300)
	require.NoError(t, err)
	assert.Equal(t, Amount(2300), a)

	_, err = New(-1)
	assert.ErrorIs(t, err, apperr.ErrNegativeAmount)
}

func TestArithmetic(t *testing.T) {
	price := Amount(2300)

	total, err := price.Mul(2)
	require.NoError(t, err)
	assert.Equal(t, Amount(4600), total)

	change, err := Amount(5000).Sub(total)
	require.NoError(t, err)
	assert.Equal(t, Amount(400), change)

	_, err = Amount(4000).Sub(total)
	assert.ErrorIs(t, err, apperr.ErrNegativeAmount)

	assert.Equal(t, Amount(0), Amount(4000).SubClamped(total))
	assert.Equal(t, Amount(6950), Sum(2300, 3500, 1050, 100))
	assert.Equal(t, Amount(3350), Amount(2300).Add(1050))
}

func TestMulRejectsBadInput(t *testing.T) {
	_, err := Amount(100).Mul(-1)
	assert.ErrorIs(t, err, apperr.ErrNegativeAmount)

	_, err = Amount(math.MaxInt64 / 2).Mul(3)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	zero, err := Amount(100).Mul(0)
	require.NoError(t, err)
	assert.Equal(t, Amount(0), zero)
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Amount
	}{
		{"23", 2300},
		{"23.5", 2350},
		{"23,50", 2350},
		{" 10.50 ", 1050},
		{"0.005", 1},
		{"0.004", 0},
		{"1.234,56", 123456},
		{"1,234.56", 123456},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = Parse("ten")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = Parse("-1.00")
	assert.ErrorIs(t, err, apperr.ErrNegativeAmount)
}

func TestString(t *testing.T) {
	assert.Equal(t, "23.00", Amount(2300).String())
	assert.Equal(t, "0.05", Amount(5).String())
	assert.Equal(t, "0.00", Amount(0).String())
}
