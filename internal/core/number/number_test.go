package number

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertDecimals(t *testing.T) {
	cases := []struct {
		value    int64
		from, to int
		want     int64
	}{
		{100, 8, 8, 100},
		{100, 8, 10, 10_000},
		{12_345, 10, 8, 123},
		{12_399, 10, 8, 123}, // truncates, never rounds
		{-12_399, 10, 8, -123},
		{0, 8, 18, 0},
	}
	for _, tc := range cases {
		got := ConvertDecimals(big.NewInt(tc.value), tc.from, tc.to)
		assert.Equal(t, tc.want, got.Int64(), "convert %d from %d to %d", tc.value, tc.from, tc.to)
	}
	assert.Zero(t, ConvertDecimals(nil, 8, 10).Sign())
}

func TestConvertDecimalsRounded(t *testing.T) {
	assert.EqualValues(t, 124, ConvertDecimalsRounded(big.NewInt(12_350), 10, 8).Int64())
	assert.EqualValues(t, 123, ConvertDecimalsRounded(big.NewInt(12_349), 10, 8).Int64())
	assert.EqualValues(t, -124, ConvertDecimalsRounded(big.NewInt(-12_350), 10, 8).Int64())
}

func TestDivRoundHalfAway(t *testing.T) {
	cases := []struct{ a, b, want int64 }{
		{7, 2, 4},
		{5, 2, 3},
		{-5, 2, -3},
		{4, 2, 2},
		{1, 3, 0},
		{2, 3, 1},
	}
	for _, tc := range cases {
		got := DivRoundHalfAway(big.NewInt(tc.a), big.NewInt(tc.b))
		assert.Equal(t, tc.want, got.Int64(), "%d / %d", tc.a, tc.b)
	}
}

func TestDivCeil(t *testing.T) {
	assert.EqualValues(t, 4, DivCeil(big.NewInt(7), big.NewInt(2)).Int64())
	assert.EqualValues(t, 3, DivCeil(big.NewInt(6), big.NewInt(2)).Int64())
	assert.EqualValues(t, 1, DivCeil(big.NewInt(1), big.NewInt(100)).Int64())
}

func TestSqrt(t *testing.T) {
	assert.EqualValues(t, 0, Sqrt(big.NewInt(0)).Int64())
	assert.EqualValues(t, 3, Sqrt(big.NewInt(9)).Int64())
	assert.EqualValues(t, 3, Sqrt(big.NewInt(15)).Int64())
	assert.EqualValues(t, 4, Sqrt(big.NewInt(16)).Int64())

	// floor(sqrt) of a perfect square times itself round-trips.
	v, _ := new(big.Int).SetString("123456789123456789", 10)
	sq := new(big.Int).Mul(v, v)
	assert.Zero(t, Sqrt(sq).Cmp(v))
}

func TestMinimumQuantity(t *testing.T) {
	assert.EqualValues(t, 1, MinimumQuantity(0).Int64())
	assert.EqualValues(t, 1, MinimumQuantity(1).Int64())
	assert.EqualValues(t, 10, MinimumQuantity(2).Int64())
	assert.EqualValues(t, 10_000, MinimumQuantity(8).Int64())
	assert.EqualValues(t, 100_000, MinimumQuantity(10).Int64())
	assert.EqualValues(t, 1_000_000_000, MinimumQuantity(18).Int64())
}

func TestMinReturnsCopy(t *testing.T) {
	a, b := big.NewInt(3), big.NewInt(5)
	m := Min(a, b)
	assert.EqualValues(t, 3, m.Int64())
	m.SetInt64(99)
	assert.EqualValues(t, 3, a.Int64())
}
