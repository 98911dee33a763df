package types

import (
	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "fund"
	StoreKey   = ModuleName
)

// Tranche denoms. QUEEN is the whole-fund share; one QUEEN splits into one
// BISHOP plus one ROOK and merges back the same way.
const (
	DenomQueen  = "queen"
	DenomBishop = "bishop"
	DenomRook   = "rook"
)

// Underlying and reward denoms handled by the fund's bank accounts.
const (
	DenomUnderlying = "ubtc"
	DenomChess      = "chess"
)

// RebalanceRecord describes one tranche-ratio rebalance. The record at
// version v transforms holdings valid at version v into holdings valid at
// version v+1:
//
//	q' = q*RatioQueen + b*RatioBishopToQueen + r*RatioRookToQueen
//	b' = b*RatioTranche
//	r' = r*RatioTranche
type RebalanceRecord struct {
	Version            uint64         `json:"version"`
	RatioQueen         math.LegacyDec `json:"ratio_queen"`
	RatioTranche       math.LegacyDec `json:"ratio_tranche"`
	RatioBishopToQueen math.LegacyDec `json:"ratio_bishop_to_queen"`
	RatioRookToQueen   math.LegacyDec `json:"ratio_rook_to_queen"`
	Timestamp          int64          `json:"timestamp"`
}

// Validate checks ratio sanity before a record is accepted.
func (r RebalanceRecord) Validate() error {
	for _, ratio := range []math.LegacyDec{r.RatioQueen, r.RatioTranche, r.RatioBishopToQueen, r.RatioRookToQueen} {
		if ratio.IsNil() || ratio.IsNegative() {
			return ErrInvalidRatio
		}
	}
	if r.RatioQueen.IsZero() {
		return ErrInvalidRatio
	}
	return nil
}

// Navs carries the per-tranche net asset values extrapolated from an
// underlying price, all 18-decimal.
type Navs struct {
	Queen  math.Int `json:"queen"`
	Bishop math.Int `json:"bishop"`
	Rook   math.Int `json:"rook"`
}
