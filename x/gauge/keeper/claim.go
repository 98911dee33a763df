package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	fundtypes "github.com/castleswap/tranche-dex/x/fund/types"
	"github.com/castleswap/tranche-dex/x/gauge/types"
	swaptypes "github.com/castleswap/tranche-dex/x/swap/types"
)

// ClaimResult reports what a claim paid out.
type ClaimResult struct {
	Reward math.Int
	Bonus  math.Int
	Queen  math.Int
	Bishop math.Int
	Rook   math.Int
	Quote  math.Int
}

func (r ClaimResult) empty() bool {
	return !r.Reward.IsPositive() && !r.Bonus.IsPositive() &&
		!r.Queen.IsPositive() && !r.Bishop.IsPositive() &&
		!r.Rook.IsPositive() && !r.Quote.IsPositive()
}

// Claim settles and pays out everything an account has accrued in a pool's
// gauge: minted rewards, escrowed bonus tokens and pending rebalance
// distributions.
func (k *Keeper) Claim(ctx sdk.Context, poolID string, claimer sdk.AccAddress) (ClaimResult, error) {
	g := k.GetGlobalState(ctx, poolID)
	k.checkpoint(ctx, g)
	user := k.GetUserState(ctx, poolID, claimer)
	if err := k.syncVersion(ctx, poolID, user); err != nil {
		return ClaimResult{}, err
	}
	checkpointUser(user, g)
	k.updateWorking(ctx, claimer, user, g)

	result := ClaimResult{
		Reward: user.ClaimableReward,
		Bonus:  user.ClaimableBonus,
		Queen:  user.PendingQueen,
		Bishop: user.PendingBishop,
		Rook:   user.PendingRook,
		Quote:  user.PendingQuote,
	}
	if result.empty() {
		return ClaimResult{}, types.ErrNothingToClaim
	}

	if result.Reward.IsPositive() {
		coins := sdk.NewCoins(sdk.NewCoin(types.DenomReward, result.Reward))
		if err := k.bankKeeper.MintCoins(ctx, types.ModuleName, coins); err != nil {
			return ClaimResult{}, err
		}
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, claimer, coins); err != nil {
			return ClaimResult{}, err
		}
	}

	escrowed := sdk.NewCoins()
	if result.Bonus.IsPositive() {
		escrowed = escrowed.Add(sdk.NewCoin(types.DenomBonus, result.Bonus))
	}
	if result.Queen.IsPositive() {
		escrowed = escrowed.Add(sdk.NewCoin(fundtypes.DenomQueen, result.Queen))
	}
	if result.Bishop.IsPositive() {
		escrowed = escrowed.Add(sdk.NewCoin(fundtypes.DenomBishop, result.Bishop))
	}
	if result.Rook.IsPositive() {
		escrowed = escrowed.Add(sdk.NewCoin(fundtypes.DenomRook, result.Rook))
	}
	if result.Quote.IsPositive() {
		escrowed = escrowed.Add(sdk.NewCoin(swaptypes.DenomQuote, result.Quote))
	}
	if !escrowed.IsZero() {
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, claimer, escrowed); err != nil {
			return ClaimResult{}, err
		}
	}

	user.ClaimableReward = math.ZeroInt()
	user.ClaimableBonus = math.ZeroInt()
	user.PendingQueen = math.ZeroInt()
	user.PendingBishop = math.ZeroInt()
	user.PendingRook = math.ZeroInt()
	user.PendingQuote = math.ZeroInt()
	k.SetUserState(ctx, poolID, claimer, user)
	k.SetGlobalState(ctx, poolID, g)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"gauge_claim",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("claimer", claimer.String()),
			sdk.NewAttribute("reward", result.Reward.String()),
			sdk.NewAttribute("bonus", result.Bonus.String()),
		),
	)
	k.logger.Info("Rewards claimed",
		"pool_id", poolID,
		"claimer", claimer.String(),
		"reward", result.Reward.String(),
	)
	return result, nil
}

// NotifyBonus starts a linear bonus program for a pool. The funder must
// have transferred the bonus tokens to the gauge module account already; a
// new program cannot start while one is running.
func (k *Keeper) NotifyBonus(ctx sdk.Context, poolID string, amount math.Int, duration int64) error {
	if !amount.IsPositive() || duration <= 0 {
		return types.ErrZeroAmount
	}
	now := ctx.BlockTime().Unix()
	g := k.GetGlobalState(ctx, poolID)
	k.checkpoint(ctx, g)
	if g.BonusPeriodEnd > now {
		return types.ErrBonusPeriodActive
	}
	g.BonusRate = amount.QuoRaw(duration)
	g.BonusPeriodEnd = now + duration
	k.SetGlobalState(ctx, poolID, g)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"gauge_notify_bonus",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	return nil
}
