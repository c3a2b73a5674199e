// Package yield computes time-weighted expected yield for bond tranches.
package yield

import "math/big"

// SecondsPerYear is the accrual year used for rate annualization.
const SecondsPerYear = 365 * 24 * 3600

var (
	bpsDenominator = big.NewInt(10000)
	secondsPerYear = big.NewInt(SecondsPerYear)
)

// Expected returns the yield earned by principal at rateBps (basis points,
// 10000 = 100%) over elapsedSeconds:
//
//	annual = principal * rateBps / 10000
//	yield  = annual * elapsedSeconds / SecondsPerYear
//
// Both divisions truncate, in that order. Returns 0 when elapsedSeconds <= 0.
// Intermediate products are computed with math/big since
// annual*elapsedSeconds can exceed int64 for large principals. Negative
// principal or rate is a caller error; the result for such inputs is
// unspecified.
func Expected(principal, rateBps, elapsedSeconds int64) int64 {
	if elapsedSeconds <= 0 {
		return 0
	}

	annual := new(big.Int).Mul(big.NewInt(principal), big.NewInt(rateBps))
	annual.Quo(annual, bpsDenominator)

	earned := annual.Mul(annual, big.NewInt(elapsedSeconds))
	earned.Quo(earned, secondsPerYear)

	return earned.Int64()
}
