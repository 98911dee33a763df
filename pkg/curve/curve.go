package curve

import (
	"errors"
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/castleswap/tranche-dex/pkg/fixedpoint"
)

// Stableswap invariant solver for a two-asset pool whose base side is
// weighted by an external oracle price. With k the oracle price, x the base
// balance and y the quote balance (all 18-decimal), the pool holds
//
//	4A*(k*x + y) + D = 4A*D + D^3 / (4*k*x*y)
//
// where A is the amplification coefficient. SolveD computes D from the
// reserves; SolveQuote/SolveBase invert the relation for one reserve given
// the other and a target D. A closed-form path (Cardano cubic, quadratic
// discriminant) is kept alongside the Newton path; both agree to within
// integer rounding and the tests hold them to it.
//
// All divisions floor. Callers that feed a solved reserve into a safety
// check are expected to add their own +1 bias; the solver itself is exact.

// MaxIterations bounds every Newton loop. It is a termination guarantee,
// not a tuning knob.
const MaxIterations = 255

var (
	ErrZeroAmplification    = errors.New("curve: zero amplification reached solver")
	ErrZeroReserve          = errors.New("curve: zero reserve with nonzero invariant")
	ErrNegativeDiscriminant = errors.New("curve: negative discriminant, invariant state corrupted")
	ErrDiverged             = errors.New("curve: newton iteration left the solution domain")
)

// SolveD computes the invariant D for the given reserves, amplification and
// oracle price via Newton iteration:
//
//	d' = (4A*sum + 2t) * d / ((4A-1)*d + 3t),  t = d^3 / (4*kx*y)
//
// seeded at d0 = kx + y. Empty reserves on either side yield D = 0.
func SolveD(base, quote, ampl, oraclePrice sdkmath.Int) (sdkmath.Int, error) {
	if !ampl.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmplification
	}
	kx := fixedpoint.MulUnit(oraclePrice.BigInt(), base.BigInt())
	y := quote.BigInt()
	if kx.Sign() == 0 || y.Sign() == 0 {
		return sdkmath.ZeroInt(), nil
	}

	a4 := new(big.Int).Lsh(ampl.BigInt(), 2) // 4A
	a4m1 := new(big.Int).Sub(a4, big.NewInt(1))
	sum := new(big.Int).Add(kx, y)
	y4 := new(big.Int).Lsh(y, 2)

	d := new(big.Int).Set(sum)
	for i := 0; i < MaxIterations; i++ {
		t := new(big.Int).Mul(d, d)
		t.Quo(t, kx)
		t.Mul(t, d)
		t.Quo(t, y4)

		num := new(big.Int).Mul(a4, sum)
		num.Add(num, new(big.Int).Lsh(t, 1))
		num.Mul(num, d)

		den := new(big.Int).Mul(a4m1, d)
		den.Add(den, new(big.Int).Mul(big.NewInt(3), t))

		next := num.Quo(num, den)
		if withinOne(next, d) {
			return sdkmath.NewIntFromBigInt(next), nil
		}
		d = next
	}
	return sdkmath.NewIntFromBigInt(d), nil
}

// SolveQuote returns the quote balance that satisfies the invariant for the
// given base balance and target D. Newton on the quadratic
// y^2 + b*y - c = 0 with b = kx + D/(4A) - D and c = D^3 / (16*A*kx).
func SolveQuote(base, d, ampl, oraclePrice sdkmath.Int) (sdkmath.Int, error) {
	if !ampl.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmplification
	}
	if d.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	kx := fixedpoint.MulUnit(oraclePrice.BigInt(), base.BigInt())
	if kx.Sign() == 0 {
		return sdkmath.ZeroInt(), ErrZeroReserve
	}
	y, err := solveSide(kx, d.BigInt(), ampl.BigInt())
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return sdkmath.NewIntFromBigInt(y), nil
}

// SolveBase returns the base balance that satisfies the invariant for the
// given quote balance and target D. The invariant is symmetric in (kx, y),
// so the same quadratic is solved for kx and divided back through the
// oracle price.
func SolveBase(quote, d, ampl, oraclePrice sdkmath.Int) (sdkmath.Int, error) {
	if !ampl.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmplification
	}
	if d.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	y := quote.BigInt()
	if y.Sign() == 0 {
		return sdkmath.ZeroInt(), ErrZeroReserve
	}
	kx, err := solveSide(y, d.BigInt(), ampl.BigInt())
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	x := fixedpoint.DivUnit(kx, oraclePrice.BigInt())
	return sdkmath.NewIntFromBigInt(x), nil
}

// solveSide finds the positive root of u^2 + b*u - c = 0 where the known
// side is `other` (already price-weighted where applicable):
//
//	b = other + D/(4A) - D,  c = D^3 / (16*A*other)
//
// Newton: u' = (u^2 + c) / (2u + b), seeded at D. Seeded from above the
// root, the denominator stays positive; a nonpositive denominator means
// the inputs do not describe a reachable pool state.
func solveSide(other, d, a *big.Int) (*big.Int, error) {
	c := new(big.Int).Mul(d, d)
	c.Quo(c, other)
	c.Mul(c, d)
	c.Quo(c, new(big.Int).Lsh(a, 4))

	b := new(big.Int).Quo(d, new(big.Int).Lsh(a, 2))
	b.Add(b, other)
	b.Sub(b, d) // may be negative

	u := new(big.Int).Set(d)
	for i := 0; i < MaxIterations; i++ {
		den := new(big.Int).Lsh(u, 1)
		den.Add(den, b)
		if den.Sign() <= 0 {
			return nil, ErrDiverged
		}
		next := new(big.Int).Mul(u, u)
		next.Add(next, c)
		next.Quo(next, den)
		if withinOne(next, u) {
			return next, nil
		}
		u = next
	}
	return u, nil
}

// SolveDClosedForm computes D by reducing the invariant to the depressed
// cubic D^3 + p*D + q = 0 with
//
//	p = 4*kx*y*(4A-1),  q = -16*kx*y*A*(kx+y)
//
// and applying Cardano's formula with integer square and cube roots. p > 0
// guarantees a single real root:
//
//	D = cbrt(q' + sqrt(delta)) - cbrt(sqrt(delta) - q'),
//	q' = -q/2, delta = q'^2 + (p/3)^3
func SolveDClosedForm(base, quote, ampl, oraclePrice sdkmath.Int) (sdkmath.Int, error) {
	if !ampl.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmplification
	}
	kx := fixedpoint.MulUnit(oraclePrice.BigInt(), base.BigInt())
	y := quote.BigInt()
	if kx.Sign() == 0 || y.Sign() == 0 {
		return sdkmath.ZeroInt(), nil
	}
	a := ampl.BigInt()
	pr := new(big.Int).Mul(kx, y)

	a4m1 := new(big.Int).Lsh(a, 2)
	a4m1.Sub(a4m1, big.NewInt(1))
	p := new(big.Int).Mul(pr, a4m1)
	p.Lsh(p, 2)

	qHalf := new(big.Int).Mul(pr, a)
	qHalf.Mul(qHalf, new(big.Int).Add(kx, y))
	qHalf.Lsh(qHalf, 3) // -q/2 = 8*pr*A*(kx+y)

	p3 := new(big.Int).Quo(p, big.NewInt(3))
	delta := new(big.Int).Mul(p3, p3)
	delta.Mul(delta, p3)
	delta.Add(delta, new(big.Int).Mul(qHalf, qHalf))
	if delta.Sign() < 0 {
		return sdkmath.ZeroInt(), ErrNegativeDiscriminant
	}
	root := fixedpoint.Sqrt(delta)

	d := fixedpoint.Cbrt(new(big.Int).Add(root, qHalf))
	d.Sub(d, fixedpoint.Cbrt(new(big.Int).Sub(root, qHalf)))
	return sdkmath.NewIntFromBigInt(d), nil
}

// SolveQuoteClosedForm solves the quadratic y^2 + b*y - c = 0 directly via
// the discriminant: y = (sqrt(b^2 + 4c) - b) / 2. A negative discriminant
// indicates corrupted invariant state and fails loudly.
func SolveQuoteClosedForm(base, d, ampl, oraclePrice sdkmath.Int) (sdkmath.Int, error) {
	if !ampl.IsPositive() {
		return sdkmath.ZeroInt(), ErrZeroAmplification
	}
	if d.IsZero() {
		return sdkmath.ZeroInt(), nil
	}
	kx := fixedpoint.MulUnit(oraclePrice.BigInt(), base.BigInt())
	if kx.Sign() == 0 {
		return sdkmath.ZeroInt(), ErrZeroReserve
	}
	y, err := solveSideClosedForm(kx, d.BigInt(), ampl.BigInt())
	if err != nil {
		return sdkmath.ZeroInt(), err
	}
	return sdkmath.NewIntFromBigInt(y), nil
}

func solveSideClosedForm(other, d, a *big.Int) (*big.Int, error) {
	c := new(big.Int).Mul(d, d)
	c.Quo(c, other)
	c.Mul(c, d)
	c.Quo(c, new(big.Int).Lsh(a, 4))

	b := new(big.Int).Quo(d, new(big.Int).Lsh(a, 2))
	b.Add(b, other)
	b.Sub(b, d)

	disc := new(big.Int).Mul(b, b)
	disc.Add(disc, new(big.Int).Lsh(c, 2))
	if disc.Sign() < 0 {
		return nil, ErrNegativeDiscriminant
	}
	u := fixedpoint.Sqrt(disc)
	u.Sub(u, b)
	u.Rsh(u, 1)
	return u, nil
}

func withinOne(a, b *big.Int) bool {
	diff := new(big.Int).Sub(a, b)
	return diff.CmpAbs(big.NewInt(1)) <= 0
}
