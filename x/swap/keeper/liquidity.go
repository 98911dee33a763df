package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/pkg/curve"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

// AddLiquidity deposits base and/or quote and mints LP shares through the
// gauge. The first deposit locks MinimumLiquidity shares to the pool escrow
// forever. Later deposits pay a half-rate fee on the imbalanced portion of
// each side, the same way an equivalent swap would have.
func (k *Keeper) AddLiquidity(ctx sdk.Context, msg *types.MsgAddLiquidity) (math.Int, error) {
	zero := math.ZeroInt()
	if err := k.lock(msg.PoolID); err != nil {
		return zero, err
	}
	defer k.unlock(msg.PoolID)

	pool := k.GetPool(ctx, msg.PoolID)
	if pool == nil {
		return zero, types.ErrPoolNotFound
	}
	if err := k.checkVersion(ctx, msg.Version); err != nil {
		return zero, err
	}
	baseIn, ok := math.NewIntFromString(msg.BaseIn)
	if !ok || baseIn.IsNegative() {
		return zero, types.ErrZeroAmount
	}
	quoteIn, ok := math.NewIntFromString(msg.QuoteIn)
	if !ok || quoteIn.IsNegative() {
		return zero, types.ErrZeroAmount
	}
	if baseIn.IsZero() && quoteIn.IsZero() {
		return zero, types.ErrZeroAmount
	}
	minLPOut, ok := math.NewIntFromString(msg.MinLPOut)
	if !ok {
		return zero, types.ErrZeroAmount
	}
	if err := k.handleRebalance(ctx, pool); err != nil {
		return zero, err
	}
	price, err := k.fundKeeper.GetOraclePrice(ctx)
	if err != nil {
		return zero, err
	}
	now := ctx.BlockTime().Unix()
	ampl := pool.CurrentAmpl(now)

	d0, err := curve.SolveD(pool.BaseBalance, pool.QuoteBalance, ampl, price)
	if err != nil {
		return zero, err
	}

	provider, err := sdk.AccAddressFromBech32(msg.Provider)
	if err != nil {
		return zero, err
	}
	recipient := provider
	if msg.Recipient != "" {
		if recipient, err = sdk.AccAddressFromBech32(msg.Recipient); err != nil {
			return zero, err
		}
	}
	escrow := types.PoolAddress(msg.PoolID)
	deposit := sdk.NewCoins()
	if baseIn.IsPositive() {
		deposit = deposit.Add(sdk.NewCoin(pool.BaseTranche, baseIn))
	}
	if quoteIn.IsPositive() {
		deposit = deposit.Add(sdk.NewCoin(pool.QuoteDenom, quoteIn))
	}
	if err := k.bankKeeper.SendCoins(ctx, provider, escrow, deposit); err != nil {
		return zero, err
	}

	newBase := pool.BaseBalance.Add(baseIn)
	newQuote := pool.QuoteBalance.Add(quoteIn)
	d1, err := curve.SolveD(newBase, newQuote, ampl, price)
	if err != nil {
		return zero, err
	}
	if d1.LTE(d0) {
		return zero, types.ErrZeroAmount
	}

	supply := k.gaugeKeeper.TotalSupply(ctx, msg.PoolID)
	var minted, adminFee math.Int
	if supply.IsZero() {
		if d1.LTE(types.MinimumLiquidity) {
			return zero, types.ErrInsufficientLiquidity
		}
		minted = d1.Sub(types.MinimumLiquidity)
		adminFee = zero
		if err := k.gaugeKeeper.Mint(ctx, msg.PoolID, escrow, types.MinimumLiquidity); err != nil {
			return zero, err
		}
	} else {
		// Fee on the imbalanced part of each side, at half the swap rate.
		feeRate := pool.EffectiveFeeRate(now).QuoInt64(2)
		idealBase := pool.BaseBalance.Mul(d1).Quo(d0)
		idealQuote := pool.QuoteBalance.Mul(d1).Quo(d0)
		feeBase := feeRate.MulInt(newBase.Sub(idealBase).Abs()).TruncateInt()
		feeQuote := feeRate.MulInt(newQuote.Sub(idealQuote).Abs()).TruncateInt()
		adminFee = pool.AdminFeeRate.MulInt(feeQuote).TruncateInt()

		d2, err := curve.SolveD(newBase.Sub(feeBase), newQuote.Sub(feeQuote), ampl, price)
		if err != nil {
			return zero, err
		}
		minted = supply.Mul(d2.Sub(d0)).Quo(d0)
		if !minted.IsPositive() {
			return zero, types.ErrZeroAmount
		}
	}
	if minted.LT(minLPOut) {
		return zero, types.ErrSlippageExceeded
	}
	if err := k.gaugeKeeper.Mint(ctx, msg.PoolID, recipient, minted); err != nil {
		return zero, err
	}

	pool.BaseBalance = newBase
	pool.QuoteBalance = newQuote.Sub(adminFee)
	pool.TotalAdminFee = pool.TotalAdminFee.Add(adminFee)
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_add_liquidity",
			sdk.NewAttribute("pool_id", msg.PoolID),
			sdk.NewAttribute("provider", msg.Provider),
			sdk.NewAttribute("base_in", baseIn.String()),
			sdk.NewAttribute("quote_in", quoteIn.String()),
			sdk.NewAttribute("lp_minted", minted.String()),
		),
	)
	k.logger.Info("Liquidity added",
		"pool_id", msg.PoolID,
		"lp_minted", minted.String(),
	)
	return minted, nil
}

// RemoveLiquidity burns LP shares for a proportional slice of both sides.
// No fee: a proportional withdrawal moves no value between LPs.
func (k *Keeper) RemoveLiquidity(ctx sdk.Context, msg *types.MsgRemoveLiquidity) (math.Int, math.Int, error) {
	zero := math.ZeroInt()
	if err := k.lock(msg.PoolID); err != nil {
		return zero, zero, err
	}
	defer k.unlock(msg.PoolID)

	pool := k.GetPool(ctx, msg.PoolID)
	if pool == nil {
		return zero, zero, types.ErrPoolNotFound
	}
	if err := k.checkVersion(ctx, msg.Version); err != nil {
		return zero, zero, err
	}
	lp, ok := math.NewIntFromString(msg.LPAmount)
	if !ok || !lp.IsPositive() {
		return zero, zero, types.ErrZeroAmount
	}
	minBaseOut, ok := math.NewIntFromString(msg.MinBaseOut)
	if !ok {
		return zero, zero, types.ErrZeroAmount
	}
	minQuoteOut, ok := math.NewIntFromString(msg.MinQuoteOut)
	if !ok {
		return zero, zero, types.ErrZeroAmount
	}
	if err := k.handleRebalance(ctx, pool); err != nil {
		return zero, zero, err
	}

	supply := k.gaugeKeeper.TotalSupply(ctx, msg.PoolID)
	if !supply.IsPositive() || lp.GT(supply) {
		return zero, zero, types.ErrInsufficientLiquidity
	}
	baseOut := pool.BaseBalance.Mul(lp).Quo(supply)
	quoteOut := pool.QuoteBalance.Mul(lp).Quo(supply)
	if baseOut.LT(minBaseOut) || quoteOut.LT(minQuoteOut) {
		return zero, zero, types.ErrSlippageExceeded
	}

	provider, err := sdk.AccAddressFromBech32(msg.Provider)
	if err != nil {
		return zero, zero, err
	}
	if err := k.gaugeKeeper.BurnFrom(ctx, msg.PoolID, provider, lp); err != nil {
		return zero, zero, err
	}
	out := sdk.NewCoins()
	if baseOut.IsPositive() {
		out = out.Add(sdk.NewCoin(pool.BaseTranche, baseOut))
	}
	if quoteOut.IsPositive() {
		out = out.Add(sdk.NewCoin(pool.QuoteDenom, quoteOut))
	}
	if !out.IsZero() {
		if err := k.bankKeeper.SendCoins(ctx, types.PoolAddress(msg.PoolID), provider, out); err != nil {
			return zero, zero, err
		}
	}

	pool.BaseBalance = pool.BaseBalance.Sub(baseOut)
	pool.QuoteBalance = pool.QuoteBalance.Sub(quoteOut)
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_remove_liquidity",
			sdk.NewAttribute("pool_id", msg.PoolID),
			sdk.NewAttribute("provider", msg.Provider),
			sdk.NewAttribute("lp_burned", lp.String()),
			sdk.NewAttribute("base_out", baseOut.String()),
			sdk.NewAttribute("quote_out", quoteOut.String()),
		),
	)
	return baseOut, quoteOut, nil
}

// singleSidedTarget computes the shrunk invariant after burning lp shares.
func (k *Keeper) singleSidedTarget(ctx sdk.Context, pool *types.Pool, lp math.Int, price math.Int) (d1 math.Int, ampl math.Int, err error) {
	supply := k.gaugeKeeper.TotalSupply(ctx, pool.PoolID)
	if !supply.IsPositive() || lp.GTE(supply) {
		return math.ZeroInt(), math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	ampl = pool.CurrentAmpl(ctx.BlockTime().Unix())
	d0, err := curve.SolveD(pool.BaseBalance, pool.QuoteBalance, ampl, price)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), err
	}
	return d0.Sub(d0.Mul(lp).Quo(supply)), ampl, nil
}

// RemoveBaseLiquidity burns LP shares for base only. The quote side stays
// put, so the exit is equivalent to a proportional withdrawal plus a swap
// and pays the swap fee on the output.
func (k *Keeper) RemoveBaseLiquidity(ctx sdk.Context, msg *types.MsgRemoveBaseLiquidity) (math.Int, error) {
	zero := math.ZeroInt()
	if err := k.lock(msg.PoolID); err != nil {
		return zero, err
	}
	defer k.unlock(msg.PoolID)

	pool := k.GetPool(ctx, msg.PoolID)
	if pool == nil {
		return zero, types.ErrPoolNotFound
	}
	if err := k.checkVersion(ctx, msg.Version); err != nil {
		return zero, err
	}
	lp, ok := math.NewIntFromString(msg.LPAmount)
	if !ok || !lp.IsPositive() {
		return zero, types.ErrZeroAmount
	}
	minBaseOut, ok := math.NewIntFromString(msg.MinBaseOut)
	if !ok {
		return zero, types.ErrZeroAmount
	}
	if err := k.handleRebalance(ctx, pool); err != nil {
		return zero, err
	}
	price, err := k.fundKeeper.GetOraclePrice(ctx)
	if err != nil {
		return zero, err
	}
	d1, ampl, err := k.singleSidedTarget(ctx, pool, lp, price)
	if err != nil {
		return zero, err
	}
	newBase, err := curve.SolveBase(pool.QuoteBalance, d1, ampl, price)
	if err != nil {
		return zero, err
	}
	newBase = newBase.AddRaw(1)
	if newBase.GTE(pool.BaseBalance) {
		return zero, types.ErrInsufficientLiquidity
	}
	rawOut := pool.BaseBalance.Sub(newBase)
	fee := pool.EffectiveFeeRate(ctx.BlockTime().Unix()).MulInt(rawOut).TruncateInt()
	baseOut := rawOut.Sub(fee)
	if baseOut.LT(minBaseOut) {
		return zero, types.ErrSlippageExceeded
	}

	provider, err := sdk.AccAddressFromBech32(msg.Provider)
	if err != nil {
		return zero, err
	}
	if err := k.gaugeKeeper.BurnFrom(ctx, msg.PoolID, provider, lp); err != nil {
		return zero, err
	}
	out := sdk.NewCoins(sdk.NewCoin(pool.BaseTranche, baseOut))
	if err := k.bankKeeper.SendCoins(ctx, types.PoolAddress(msg.PoolID), provider, out); err != nil {
		return zero, err
	}

	// The fee stays in the pool for remaining LPs.
	pool.BaseBalance = pool.BaseBalance.Sub(baseOut)
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_remove_base_liquidity",
			sdk.NewAttribute("pool_id", msg.PoolID),
			sdk.NewAttribute("provider", msg.Provider),
			sdk.NewAttribute("lp_burned", lp.String()),
			sdk.NewAttribute("base_out", baseOut.String()),
			sdk.NewAttribute("fee", fee.String()),
		),
	)
	return baseOut, nil
}

// RemoveQuoteLiquidity burns LP shares for quote only. Pays the swap fee on
// the output; the admin share of that fee is split out like on a trade.
func (k *Keeper) RemoveQuoteLiquidity(ctx sdk.Context, msg *types.MsgRemoveQuoteLiquidity) (math.Int, error) {
	zero := math.ZeroInt()
	if err := k.lock(msg.PoolID); err != nil {
		return zero, err
	}
	defer k.unlock(msg.PoolID)

	pool := k.GetPool(ctx, msg.PoolID)
	if pool == nil {
		return zero, types.ErrPoolNotFound
	}
	if err := k.checkVersion(ctx, msg.Version); err != nil {
		return zero, err
	}
	lp, ok := math.NewIntFromString(msg.LPAmount)
	if !ok || !lp.IsPositive() {
		return zero, types.ErrZeroAmount
	}
	minQuoteOut, ok := math.NewIntFromString(msg.MinQuoteOut)
	if !ok {
		return zero, types.ErrZeroAmount
	}
	if err := k.handleRebalance(ctx, pool); err != nil {
		return zero, err
	}
	price, err := k.fundKeeper.GetOraclePrice(ctx)
	if err != nil {
		return zero, err
	}
	d1, ampl, err := k.singleSidedTarget(ctx, pool, lp, price)
	if err != nil {
		return zero, err
	}
	newQuote, err := curve.SolveQuote(pool.BaseBalance, d1, ampl, price)
	if err != nil {
		return zero, err
	}
	newQuote = newQuote.AddRaw(1)
	if newQuote.GTE(pool.QuoteBalance) {
		return zero, types.ErrInsufficientLiquidity
	}
	rawOut := pool.QuoteBalance.Sub(newQuote)
	fee := pool.EffectiveFeeRate(ctx.BlockTime().Unix()).MulInt(rawOut).TruncateInt()
	adminFee := pool.AdminFeeRate.MulInt(fee).TruncateInt()
	quoteOut := rawOut.Sub(fee)
	if quoteOut.LT(minQuoteOut) {
		return zero, types.ErrSlippageExceeded
	}

	provider, err := sdk.AccAddressFromBech32(msg.Provider)
	if err != nil {
		return zero, err
	}
	if err := k.gaugeKeeper.BurnFrom(ctx, msg.PoolID, provider, lp); err != nil {
		return zero, err
	}
	out := sdk.NewCoins(sdk.NewCoin(pool.QuoteDenom, quoteOut))
	if err := k.bankKeeper.SendCoins(ctx, types.PoolAddress(msg.PoolID), provider, out); err != nil {
		return zero, err
	}

	pool.QuoteBalance = pool.QuoteBalance.Sub(quoteOut).Sub(adminFee)
	pool.TotalAdminFee = pool.TotalAdminFee.Add(adminFee)
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_remove_quote_liquidity",
			sdk.NewAttribute("pool_id", msg.PoolID),
			sdk.NewAttribute("provider", msg.Provider),
			sdk.NewAttribute("lp_burned", lp.String()),
			sdk.NewAttribute("quote_out", quoteOut.String()),
			sdk.NewAttribute("fee", fee.String()),
		),
	)
	return quoteOut, nil
}
