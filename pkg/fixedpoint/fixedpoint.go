package fixedpoint

import (
	"math/big"
)

// 18-decimal fixed-point helpers shared by the stableswap math. All
// operations work on non-negative big integers and truncate toward zero,
// matching the on-chain integer semantics every caller assumes.

var (
	// Unit is the 18-decimal fixed-point scale (1e18).
	Unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// MulDiv returns floor(a * b / c). It panics on a zero divisor, which is a
// programming error: reserve-zero cases are screened before the math layer.
func MulDiv(a, b, c *big.Int) *big.Int {
	if c.Sign() == 0 {
		panic("fixedpoint: division by zero")
	}
	p := new(big.Int).Mul(a, b)
	return p.Quo(p, c)
}

// MulUnit returns floor(a * b / 1e18), the fixed-point product.
func MulUnit(a, b *big.Int) *big.Int {
	return MulDiv(a, b, Unit)
}

// DivUnit returns floor(a * 1e18 / b), the fixed-point quotient.
func DivUnit(a, b *big.Int) *big.Int {
	return MulDiv(a, Unit, b)
}

// Sqrt returns the integer square root of n, i.e. the largest s with
// s*s <= n. Negative input panics.
func Sqrt(n *big.Int) *big.Int {
	if n.Sign() < 0 {
		panic("fixedpoint: sqrt of negative value")
	}
	return new(big.Int).Sqrt(n)
}

// Cbrt returns the integer cube root of n, the largest c with c^3 <= n.
// Newton iteration on c' = (2c + n/c^2) / 3, seeded from the bit length so
// the sequence decreases monotonically onto the floor root. Negative input
// panics.
func Cbrt(n *big.Int) *big.Int {
	if n.Sign() < 0 {
		panic("fixedpoint: cbrt of negative value")
	}
	if n.Sign() == 0 || n.Cmp(one) == 0 {
		return new(big.Int).Set(n)
	}
	// Initial guess: 2^(ceil(bits/3)) >= cbrt(n).
	c := new(big.Int).Lsh(one, uint(n.BitLen()+2)/3)
	for {
		sq := new(big.Int).Mul(c, c)
		next := new(big.Int).Quo(n, sq)
		next.Add(next, new(big.Int).Mul(c, two))
		next.Quo(next, three)
		if next.Cmp(c) >= 0 {
			return c
		}
		c = next
	}
}
