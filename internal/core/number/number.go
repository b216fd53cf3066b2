// Package number holds the integer fixed-point helpers used by the exchange
// and swap contracts. Token amounts are big.Int values denominated in the
// token's smallest unit; rescaling between decimal precisions is always an
// explicit operation with a named rounding policy, never a float.
package number

import "math/big"

var (
	one = big.NewInt(1)
	two = big.NewInt(2)
	ten = big.NewInt(10)
)

// Pow10 returns 10^n. n must be non-negative.
func Pow10(n int) *big.Int {
	if n < 0 {
		panic("number: negative power of ten")
	}
	return new(big.Int).Exp(ten, big.NewInt(int64(n)), nil)
}

// ConvertDecimals rescales value from one decimal precision to another,
// truncating towards zero when scaling down.
func ConvertDecimals(value *big.Int, fromDecimals, toDecimals int) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	switch {
	case fromDecimals == toDecimals:
		return new(big.Int).Set(value)
	case fromDecimals < toDecimals:
		return new(big.Int).Mul(value, Pow10(toDecimals-fromDecimals))
	default:
		return new(big.Int).Quo(value, Pow10(fromDecimals-toDecimals))
	}
}

// ConvertDecimalsRounded rescales like ConvertDecimals but rounds half away
// from zero when scaling down, matching the tie-breaking rule used by the
// pool-creation ratio check.
func ConvertDecimalsRounded(value *big.Int, fromDecimals, toDecimals int) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	if fromDecimals <= toDecimals {
		return ConvertDecimals(value, fromDecimals, toDecimals)
	}
	div := Pow10(fromDecimals - toDecimals)
	return DivRoundHalfAway(value, div)
}

// DivRoundHalfAway divides a by b rounding half away from zero.
func DivRoundHalfAway(a, b *big.Int) *big.Int {
	if b.Sign() == 0 {
		panic("number: division by zero")
	}
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() == 0 {
		return q
	}
	// compare 2*|r| against |b|
	doubled := new(big.Int).Mul(new(big.Int).Abs(r), two)
	if doubled.Cmp(new(big.Int).Abs(b)) >= 0 {
		if (a.Sign() < 0) != (b.Sign() < 0) {
			q.Sub(q, one)
		} else {
			q.Add(q, one)
		}
	}
	return q
}

// DivCeil divides a by b rounding away from zero for positive operands.
// Used when computing a required input from a desired output, so the caller
// never under-pays.
func DivCeil(a, b *big.Int) *big.Int {
	if b.Sign() == 0 {
		panic("number: division by zero")
	}
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, one)
	}
	return q
}

// Sqrt returns floor(sqrt(v)) for non-negative v.
func Sqrt(v *big.Int) *big.Int {
	if v.Sign() < 0 {
		panic("number: sqrt of negative value")
	}
	return new(big.Int).Sqrt(v)
}

// MinimumQuantity is the smallest order size or price accepted for a token
// with the given decimal precision: 10^(decimals/2), floored at 1. It bounds
// dust orders that would round to nothing during matching.
func MinimumQuantity(decimals int) *big.Int {
	if decimals < 0 {
		decimals = 0
	}
	q := Pow10(decimals / 2)
	if q.Sign() == 0 {
		return big.NewInt(1)
	}
	return q
}

// Min returns the smaller of a and b as a fresh value.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}
