package keeper

import (
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/swap/types"
)

// Sync applies any pending rebalance and then reconciles the stored
// balances with what the escrow actually holds, folding donations into the
// pool. Anyone may call it.
func (k *Keeper) Sync(ctx sdk.Context, poolID string) error {
	if err := k.lock(poolID); err != nil {
		return err
	}
	defer k.unlock(poolID)

	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if err := k.handleRebalance(ctx, pool); err != nil {
		return err
	}

	physBase := k.escrowBalance(ctx, poolID, pool.BaseTranche)
	physQuote := k.escrowBalance(ctx, poolID, pool.QuoteDenom).Sub(pool.TotalAdminFee)
	if physBase.LT(pool.BaseBalance) || physQuote.LT(pool.QuoteBalance) {
		return types.ErrInsufficientInput
	}
	pool.BaseBalance = physBase
	pool.QuoteBalance = physQuote
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_sync",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("base_balance", physBase.String()),
			sdk.NewAttribute("quote_balance", physQuote.String()),
		),
	)
	return nil
}

// Skim transfers any escrow surplus above the recorded reserves to the
// pool owner. The counterpart of Sync, which folds the surplus in.
func (k *Keeper) Skim(ctx sdk.Context, owner, poolID string) (sdk.Coins, error) {
	if err := k.lock(poolID); err != nil {
		return nil, err
	}
	defer k.unlock(poolID)

	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	if owner != pool.Owner && owner != k.authority {
		return nil, types.ErrUnauthorized
	}
	if err := k.handleRebalance(ctx, pool); err != nil {
		return nil, err
	}

	surplusBase := k.escrowBalance(ctx, poolID, pool.BaseTranche).Sub(pool.BaseBalance)
	surplusQuote := k.escrowBalance(ctx, poolID, pool.QuoteDenom).
		Sub(pool.TotalAdminFee).Sub(pool.QuoteBalance)

	out := sdk.NewCoins()
	if surplusBase.IsPositive() {
		out = out.Add(sdk.NewCoin(pool.BaseTranche, surplusBase))
	}
	if surplusQuote.IsPositive() {
		out = out.Add(sdk.NewCoin(pool.QuoteDenom, surplusQuote))
	}
	if out.IsZero() {
		return nil, types.ErrNothingToCollect
	}

	ownerAddr, err := sdk.AccAddressFromBech32(pool.Owner)
	if err != nil {
		return nil, err
	}
	if err := k.bankKeeper.SendCoins(ctx, types.PoolAddress(poolID), ownerAddr, out); err != nil {
		return nil, err
	}
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_skim",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("owner", pool.Owner),
			sdk.NewAttribute("skimmed", out.String()),
		),
	)
	return out, nil
}

// CollectFee pays the accumulated admin fee out to the pool owner.
func (k *Keeper) CollectFee(ctx sdk.Context, owner, poolID string) (math.Int, error) {
	zero := math.ZeroInt()
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return zero, types.ErrPoolNotFound
	}
	if owner != pool.Owner && owner != k.authority {
		return zero, types.ErrUnauthorized
	}
	if !pool.TotalAdminFee.IsPositive() {
		return zero, types.ErrNothingToCollect
	}
	ownerAddr, err := sdk.AccAddressFromBech32(pool.Owner)
	if err != nil {
		return zero, err
	}
	amount := pool.TotalAdminFee
	out := sdk.NewCoins(sdk.NewCoin(pool.QuoteDenom, amount))
	if err := k.bankKeeper.SendCoins(ctx, types.PoolAddress(poolID), ownerAddr, out); err != nil {
		return zero, err
	}
	pool.TotalAdminFee = zero
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_collect_fee",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("owner", pool.Owner),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	k.logger.Info("Admin fee collected", "pool_id", poolID, "amount", amount.String())
	return amount, nil
}

// SetFeeRate updates the trading and admin fee rates of a pool.
func (k *Keeper) SetFeeRate(ctx sdk.Context, owner, poolID string, feeRate, adminFeeRate math.LegacyDec) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if owner != pool.Owner && owner != k.authority {
		return types.ErrUnauthorized
	}
	if feeRate.IsNegative() || feeRate.GTE(types.MaxFeeRate) {
		return types.ErrInvalidFeeRate
	}
	if adminFeeRate.IsNegative() || adminFeeRate.GT(types.MaxAdminFeeRate) {
		return types.ErrInvalidFeeRate
	}
	pool.FeeRate = feeRate
	pool.AdminFeeRate = adminFeeRate
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_set_fee_rate",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("fee_rate", feeRate.String()),
			sdk.NewAttribute("admin_fee_rate", adminFeeRate.String()),
		),
	)
	return nil
}

// RampAmpl starts a linear amplification ramp from the current value to
// target, ending at endTimestamp. The ramp must run at least MinRampTime
// and may change A by at most a factor of MaxAmplChange either way.
func (k *Keeper) RampAmpl(ctx sdk.Context, owner, poolID string, target math.Int, endTimestamp int64) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if owner != pool.Owner && owner != k.authority {
		return types.ErrUnauthorized
	}
	if !target.IsPositive() || target.GTE(types.AmplMax) {
		return types.ErrInvalidAmpl
	}
	now := ctx.BlockTime().Unix()
	if endTimestamp < now+types.MinRampTime {
		return types.ErrRampTooShort
	}
	current := pool.CurrentAmpl(now)
	if target.GT(current.Mul(types.MaxAmplChange)) || target.Mul(types.MaxAmplChange).LT(current) {
		return types.ErrRampChangeTooLarge
	}
	pool.Ampl = types.AmplRamp{
		Start:          current,
		End:            target,
		StartTimestamp: now,
		EndTimestamp:   endTimestamp,
	}
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_ramp_ampl",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("start_ampl", current.String()),
			sdk.NewAttribute("target_ampl", target.String()),
			sdk.NewAttribute("end_timestamp", strconv.FormatInt(endTimestamp, 10)),
		),
	)
	k.logger.Info("Amplification ramp started",
		"pool_id", poolID,
		"target", target.String(),
	)
	return nil
}

// StopRampAmpl freezes the amplification at its current interpolated value.
func (k *Keeper) StopRampAmpl(ctx sdk.Context, owner, poolID string) error {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return types.ErrPoolNotFound
	}
	if owner != pool.Owner && owner != k.authority {
		return types.ErrUnauthorized
	}
	now := ctx.BlockTime().Unix()
	current := pool.CurrentAmpl(now)
	pool.Ampl = types.AmplRamp{
		Start:          current,
		End:            current,
		StartTimestamp: now,
		EndTimestamp:   now,
	}
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_stop_ramp_ampl",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("ampl", current.String()),
		),
	)
	return nil
}
