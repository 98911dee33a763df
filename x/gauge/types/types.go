package types

import (
	"cosmossdk.io/math"
)

// Module name and store key
const (
	ModuleName = "gauge"
	StoreKey   = ModuleName
)

// Reward and bonus denoms. Rewards are minted by the gauge; bonus tokens
// are escrowed in the module account by whoever funds the program.
const (
	DenomReward = "chess"
	DenomBonus  = "ubonus"
)

// MaxBoost caps the working-balance multiplier a voting-escrow position can
// earn over an unboosted deposit.
var MaxBoost = math.NewInt(3)

// RewardWeek is the emission accounting period in seconds.
const RewardWeek = int64(604800)

// MaxWeekIterations bounds a single checkpoint walk. A gauge idle for
// longer simply needs more than one checkpoint to catch up.
const MaxWeekIterations = 500

// GlobalState is the per-pool reward accounting snapshot.
type GlobalState struct {
	// Integral is the cumulative reward per working-balance unit, 18
	// decimals.
	Integral math.LegacyDec `json:"integral"`
	// BonusIntegral is the cumulative bonus per LP unit, unweighted by
	// boost, 18 decimals.
	BonusIntegral  math.LegacyDec `json:"bonus_integral"`
	BonusRate      math.Int       `json:"bonus_rate"`
	BonusPeriodEnd int64          `json:"bonus_period_end"`
	LastTimestamp  int64          `json:"last_timestamp"`
	TotalSupply    math.Int       `json:"total_supply"`
	WorkingSupply  math.Int       `json:"working_supply"`
}

// NewGlobalState returns an empty snapshot anchored at now.
func NewGlobalState(now int64) *GlobalState {
	return &GlobalState{
		Integral:      math.LegacyZeroDec(),
		BonusIntegral: math.LegacyZeroDec(),
		BonusRate:     math.ZeroInt(),
		LastTimestamp: now,
		TotalSupply:   math.ZeroInt(),
		WorkingSupply: math.ZeroInt(),
	}
}

// UserState is the per-account position in one pool's gauge.
type UserState struct {
	Balance        math.Int       `json:"balance"`
	WorkingBalance math.Int       `json:"working_balance"`
	// Version is the rebalance version the pending tranche amounts are
	// denominated in.
	Version           uint64         `json:"version"`
	IntegralPaid      math.LegacyDec `json:"integral_paid"`
	BonusIntegralPaid math.LegacyDec `json:"bonus_integral_paid"`
	ClaimableReward   math.Int       `json:"claimable_reward"`
	ClaimableBonus    math.Int       `json:"claimable_bonus"`
	PendingQueen      math.Int       `json:"pending_queen"`
	PendingBishop     math.Int       `json:"pending_bishop"`
	PendingRook       math.Int       `json:"pending_rook"`
	PendingQuote      math.Int       `json:"pending_quote"`
}

// NewUserState returns an empty position at the given rebalance version.
func NewUserState(version uint64) *UserState {
	return &UserState{
		Balance:           math.ZeroInt(),
		WorkingBalance:    math.ZeroInt(),
		Version:           version,
		IntegralPaid:      math.LegacyZeroDec(),
		BonusIntegralPaid: math.LegacyZeroDec(),
		ClaimableReward:   math.ZeroInt(),
		ClaimableBonus:    math.ZeroInt(),
		PendingQueen:      math.ZeroInt(),
		PendingBishop:     math.ZeroInt(),
		PendingRook:       math.ZeroInt(),
		PendingQuote:      math.ZeroInt(),
	}
}

// Distribution records assets handed to LPs when a pool crossed a
// rebalance version. Each holder's share is pro rata against the supply
// snapshot taken at distribution time.
type Distribution struct {
	Version     uint64   `json:"version"`
	Queen       math.Int `json:"queen"`
	Bishop      math.Int `json:"bishop"`
	Rook        math.Int `json:"rook"`
	Quote       math.Int `json:"quote"`
	TotalSupply math.Int `json:"total_supply"`
}
