package types

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

// Module name and store key
const (
	ModuleName = "swap"
	StoreKey   = ModuleName
)

// Quote asset denom traded against every tranche.
const DenomQuote = "usd"

// UnitInt is the 18-decimal fixed-point scale shared with the curve solver.
var UnitInt = math.NewIntWithDecimal(1, 18)

// Amplification bounds. A ramp may move A by at most MaxAmplChange in
// either direction and must run for at least MinRampTime seconds.
var (
	AmplMax       = math.NewInt(1_000_000)
	MaxAmplChange = math.NewInt(10)
)

const MinRampTime = int64(86400)

// Fee bounds. AdminFeeRate is a fraction of the trading fee, so its cap is
// exactly one.
var (
	MaxFeeRate      = math.LegacyMustNewDecFromStr("0.5")
	MaxAdminFeeRate = math.LegacyOneDec()
)

// MinimumLiquidity is the LP floor locked forever on the first deposit,
// guarding against first-depositor share-price manipulation.
var MinimumLiquidity = math.NewInt(1000)

// MaxPriceDeviation bounds how far a trade's execution price may drift from
// the oracle price.
var MaxPriceDeviation = math.LegacyMustNewDecFromStr("0.10")

// AmplRamp is a linear interpolation schedule for the amplification
// coefficient.
type AmplRamp struct {
	Start          math.Int `json:"start"`
	End            math.Int `json:"end"`
	StartTimestamp int64    `json:"start_timestamp"`
	EndTimestamp   int64    `json:"end_timestamp"`
}

// At returns the interpolated amplification at the given unix time.
func (r AmplRamp) At(now int64) math.Int {
	if now >= r.EndTimestamp {
		return r.End
	}
	if now <= r.StartTimestamp || r.EndTimestamp <= r.StartTimestamp {
		return r.Start
	}
	elapsed := math.NewInt(now - r.StartTimestamp)
	total := math.NewInt(r.EndTimestamp - r.StartTimestamp)
	diff := r.End.Sub(r.Start)
	return r.Start.Add(diff.Mul(elapsed).Quo(total))
}

// Pool is a stableswap pool trading one tranche against the quote asset.
// BaseBalance and QuoteBalance are the AMM's local view of liquidity, valid
// at CurrentVersion; QuoteBalance already excludes TotalAdminFee.
type Pool struct {
	PoolID       string `json:"pool_id"`
	BaseTranche  string `json:"base_tranche"`
	QuoteDenom   string `json:"quote_denom"`
	Owner        string `json:"owner"`

	BaseBalance  math.Int `json:"base_balance"`
	QuoteBalance math.Int `json:"quote_balance"`

	CurrentVersion uint64 `json:"current_version"`

	Ampl AmplRamp `json:"ampl"`

	FeeRate          math.LegacyDec `json:"fee_rate"`
	AdminFeeRate     math.LegacyDec `json:"admin_fee_rate"`
	SurchargeRate    math.LegacyDec `json:"surcharge_rate"`
	CoolingOffPeriod int64          `json:"cooling_off_period"`
	TotalAdminFee    math.Int       `json:"total_admin_fee"`

	LastRebalanceTimestamp int64 `json:"last_rebalance_timestamp"`

	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// CurrentAmpl returns the amplification coefficient at the given time.
func (p *Pool) CurrentAmpl(now int64) math.Int {
	return p.Ampl.At(now)
}

// EffectiveFeeRate is the trading fee including the cooling-off surcharge,
// which decays linearly to zero over CoolingOffPeriod seconds after the
// last rebalance.
func (p *Pool) EffectiveFeeRate(now int64) math.LegacyDec {
	if p.SurchargeRate.IsNil() || p.SurchargeRate.IsZero() || p.CoolingOffPeriod <= 0 {
		return p.FeeRate
	}
	elapsed := now - p.LastRebalanceTimestamp
	if p.LastRebalanceTimestamp == 0 || elapsed >= p.CoolingOffPeriod {
		return p.FeeRate
	}
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := math.LegacyNewDec(p.CoolingOffPeriod - elapsed).
		Quo(math.LegacyNewDec(p.CoolingOffPeriod))
	return p.FeeRate.Add(p.SurchargeRate.Mul(remaining))
}

// RebalanceResult carries a pool's balances normalized to the fund's latest
// version plus the excess amounts owed to LPs. Timestamp is zero iff no
// rebalance occurred.
type RebalanceResult struct {
	Base         math.Int `json:"base"`
	Quote        math.Int `json:"quote"`
	ExcessQueen  math.Int `json:"excess_queen"`
	ExcessBishop math.Int `json:"excess_bishop"`
	ExcessRook   math.Int `json:"excess_rook"`
	ExcessQuote  math.Int `json:"excess_quote"`
	Timestamp    int64    `json:"timestamp"`
}

// Occurred reports whether any rebalance step was applied.
func (r RebalanceResult) Occurred() bool {
	return r.Timestamp != 0
}

// PoolAddress returns the escrow address holding a pool's reserves.
func PoolAddress(poolID string) sdk.AccAddress {
	return authtypes.NewModuleAddress(ModuleName + "/" + poolID)
}
