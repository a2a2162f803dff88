package lending

import "math/big"

// Interest accrues over fixed 15 second periods. Rates are quoted in basis
// points per annum and converted to a per-period rate in wad (1e18) fixed
// point. Compounding is approximated by the first three terms of the binomial
// series for (1+r)^n - 1:
//
//	growth ≈ n*r + n(n-1)/2 * r^2 + n(n-1)(n-2)/6 * r^3
//
// which avoids a general exponentiation primitive while keeping the error of
// the truncated tail far below one wei for realistic rates.
const (
	accrualPeriodSeconds = 15
	secondsPerYear       = 31_536_000
	periodsPerYear       = secondsPerYear / accrualPeriodSeconds
)

var (
	wad         = big.NewInt(1_000_000_000_000_000_000)
	basisPoints = big.NewInt(10_000)

	big2 = big.NewInt(2)
	big6 = big.NewInt(6)
)

// Accrue returns the interest earned on principal between last and now at the
// given per-annum rate.
//
// Every division truncates toward zero, and the truncation order is fixed so
// replays are bit-identical: the per-period rate is truncated to wad
// precision first, each power of r is truncated back to wad scale immediately
// after its multiplication, the binomial coefficients divide before scaling
// by the rate powers, and the principal is applied last with a single final
// truncation.
func Accrue(rateBps uint64, lastTimestamp, now int64, principal *big.Int) (*big.Int, error) {
	if now < lastTimestamp {
		return nil, ErrInvalidTimeRange
	}
	if principal == nil || principal.Sign() <= 0 || rateBps == 0 {
		return big.NewInt(0), nil
	}
	periods := (now - lastTimestamp) / accrualPeriodSeconds
	if periods == 0 {
		return big.NewInt(0), nil
	}
	n := big.NewInt(periods)

	// Per-period rate in wad: rateBps/10000 per annum over periodsPerYear.
	r := new(big.Int).Mul(new(big.Int).SetUint64(rateBps), wad)
	r.Quo(r, new(big.Int).Mul(basisPoints, big.NewInt(periodsPerYear)))

	// term1 = n * r
	growth := new(big.Int).Mul(n, r)

	// r2 = r^2, truncated back to wad scale before use.
	r2 := new(big.Int).Mul(r, r)
	r2.Quo(r2, wad)
	// c2 = n(n-1)/2; exact for integer n.
	c2 := new(big.Int).Sub(n, big.NewInt(1))
	c2.Mul(c2, n)
	c2.Quo(c2, big2)
	growth.Add(growth, new(big.Int).Mul(c2, r2))

	// r3 = r2 * r, truncated again.
	r3 := new(big.Int).Mul(r2, r)
	r3.Quo(r3, wad)
	// c3 = n(n-1)(n-2)/6; the product of three consecutive integers is
	// divisible by 6, so the division is exact.
	c3 := new(big.Int).Sub(n, big.NewInt(1))
	c3.Mul(c3, n)
	c3.Mul(c3, new(big.Int).Sub(n, big2))
	if c3.Sign() < 0 {
		c3.SetInt64(0)
	}
	c3.Quo(c3, big6)
	growth.Add(growth, new(big.Int).Mul(c3, r3))

	interest := new(big.Int).Mul(principal, growth)
	interest.Quo(interest, wad)
	return interest, nil
}
