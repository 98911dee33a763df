package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/pkg/curve"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

// tradeQuote holds the priced legs of a single swap before settlement.
type tradeQuote struct {
	d        math.Int // invariant before the trade
	newQuote math.Int // invariant-side quote balance after the trade
	fee      math.Int
	adminFee math.Int
}

// priceBuy computes the quote owed for baseOut against the current view.
// Returns the gross quote input and the fee legs. The trader owes, so
// rounding runs against them.
func priceBuy(v *tradeView, baseOut math.Int) (math.Int, tradeQuote, error) {
	zero := math.ZeroInt()
	if baseOut.GTE(v.base) {
		return zero, tradeQuote{}, types.ErrInsufficientLiquidity
	}
	d, err := v.invariant()
	if err != nil {
		return zero, tradeQuote{}, err
	}
	if d.IsZero() {
		return zero, tradeQuote{}, types.ErrInsufficientLiquidity
	}
	newQuote, err := curve.SolveQuote(v.base.Sub(baseOut), d, v.ampl, v.price)
	if err != nil {
		return zero, tradeQuote{}, err
	}
	newQuote = newQuote.AddRaw(1)
	delta := newQuote.Sub(v.quote)
	if !delta.IsPositive() {
		return zero, tradeQuote{}, types.ErrInsufficientLiquidity
	}
	quoteIn := grossUp(delta, v.feeRate)
	fee := quoteIn.Sub(delta)
	q := tradeQuote{
		d:        d,
		newQuote: newQuote,
		fee:      fee,
		adminFee: v.pool.AdminFeeRate.MulInt(fee).TruncateInt(),
	}
	return quoteIn, q, nil
}

// priceSell computes the base owed for receiving quoteOut. The fee is taken
// on the quote side before solving, so the curve sees the gross amount.
func priceSell(v *tradeView, quoteOut math.Int) (math.Int, tradeQuote, error) {
	zero := math.ZeroInt()
	d, err := v.invariant()
	if err != nil {
		return zero, tradeQuote{}, err
	}
	if d.IsZero() {
		return zero, tradeQuote{}, types.ErrInsufficientLiquidity
	}
	beforeFee := grossUp(quoteOut, v.feeRate)
	if beforeFee.GTE(v.quote) {
		return zero, tradeQuote{}, types.ErrInsufficientLiquidity
	}
	newBase, err := curve.SolveBase(v.quote.Sub(beforeFee), d, v.ampl, v.price)
	if err != nil {
		return zero, tradeQuote{}, err
	}
	newBase = newBase.AddRaw(1)
	baseIn := newBase.Sub(v.base)
	if !baseIn.IsPositive() {
		return zero, tradeQuote{}, types.ErrInsufficientLiquidity
	}
	fee := beforeFee.Sub(quoteOut)
	q := tradeQuote{
		d:        d,
		newQuote: v.quote.Sub(beforeFee),
		fee:      fee,
		adminFee: v.pool.AdminFeeRate.MulInt(fee).TruncateInt(),
	}
	return baseIn, q, nil
}

// checkDeviation rejects trades whose net execution price strays more than
// MaxPriceDeviation from the oracle. Empty pools are exempt so the first
// trades can seed a price.
func checkDeviation(base, quote, baseAmt, quoteAmt, oracle math.Int) error {
	if base.IsZero() || quote.IsZero() || baseAmt.IsZero() {
		return nil
	}
	exec := quoteAmt.Mul(types.UnitInt).Quo(baseAmt)
	bound := types.MaxPriceDeviation.MulInt(oracle)
	diff := math.LegacyNewDecFromInt(exec.Sub(oracle)).Abs()
	if diff.GT(bound) {
		return types.ErrPriceDeviation
	}
	return nil
}

// tradeViewOf builds the view for an already-rebalanced pool.
func (k *Keeper) tradeViewOf(ctx sdk.Context, pool *types.Pool, price math.Int) *tradeView {
	now := ctx.BlockTime().Unix()
	return &tradeView{
		pool:    pool,
		base:    pool.BaseBalance,
		quote:   pool.QuoteBalance,
		price:   price,
		ampl:    pool.CurrentAmpl(now),
		feeRate: pool.EffectiveFeeRate(now),
	}
}

// runCallback invokes the registered flash-swap callback for the recipient
// and re-checks the pool's rebalance version afterwards, since the callback
// may have advanced it and invalidated the priced trade.
func (k *Keeper) runCallback(ctx sdk.Context, pool *types.Pool, recipient string, baseOut, quoteOut math.Int, data []byte) error {
	cb, ok := k.callbacks[recipient]
	if !ok {
		return types.ErrUnknownCallback
	}
	if err := cb.OnSwap(ctx, pool.PoolID, baseOut, quoteOut, data); err != nil {
		return err
	}
	if k.fundKeeper.GetRebalanceSize(ctx) != pool.CurrentVersion {
		return types.ErrVersionDrift
	}
	return nil
}

// Buy swaps quote for baseOut of the pool's tranche. The base leaves the
// pool before the quote arrives: when msg.Data is non-empty the registered
// callback for the recipient runs in between and must deposit the quote
// itself, which enables flash swaps. The quote actually received is measured
// from the escrow's bank balance, and the trade settles only if the
// invariant did not shrink.
func (k *Keeper) Buy(ctx sdk.Context, msg *types.MsgBuy) (math.Int, error) {
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
	baseOut, ok := math.NewIntFromString(msg.BaseOut)
	if !ok || !baseOut.IsPositive() {
		return zero, types.ErrZeroAmount
	}
	maxQuoteIn, ok := math.NewIntFromString(msg.MaxQuoteIn)
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

	view := k.tradeViewOf(ctx, pool, price)
	quoteIn, tq, err := priceBuy(view, baseOut)
	if err != nil {
		return zero, err
	}
	if quoteIn.GT(maxQuoteIn) {
		return zero, types.ErrSlippageExceeded
	}
	if err := checkDeviation(pool.BaseBalance, pool.QuoteBalance, baseOut, quoteIn.Sub(tq.fee), price); err != nil {
		return zero, err
	}

	escrow := types.PoolAddress(msg.PoolID)
	recipient, err := sdk.AccAddressFromBech32(msg.Recipient)
	if err != nil {
		return zero, err
	}
	quoteBefore := k.escrowBalance(ctx, msg.PoolID, pool.QuoteDenom)

	// Optimistic transfer of the base leg.
	out := sdk.NewCoins(sdk.NewCoin(pool.BaseTranche, baseOut))
	if err := k.bankKeeper.SendCoins(ctx, escrow, recipient, out); err != nil {
		return zero, err
	}

	if len(msg.Data) > 0 {
		if err := k.runCallback(ctx, pool, msg.Recipient, baseOut, zero, msg.Data); err != nil {
			return zero, err
		}
	} else {
		buyer, err := sdk.AccAddressFromBech32(msg.Buyer)
		if err != nil {
			return zero, err
		}
		in := sdk.NewCoins(sdk.NewCoin(pool.QuoteDenom, quoteIn))
		if err := k.bankKeeper.SendCoins(ctx, buyer, escrow, in); err != nil {
			return zero, err
		}
	}

	// Settle on what actually arrived, not what was promised.
	received := k.escrowBalance(ctx, msg.PoolID, pool.QuoteDenom).Sub(quoteBefore)
	fee := view.feeRate.MulInt(received).TruncateInt()
	adminFee := pool.AdminFeeRate.MulInt(fee).TruncateInt()
	after, err := curve.SolveD(pool.BaseBalance.Sub(baseOut), pool.QuoteBalance.Add(received).Sub(fee), view.ampl, price)
	if err != nil {
		return zero, err
	}
	if after.LT(tq.d) {
		return zero, types.ErrInvariantViolation
	}

	pool.BaseBalance = pool.BaseBalance.Sub(baseOut)
	pool.QuoteBalance = pool.QuoteBalance.Add(received).Sub(adminFee)
	pool.TotalAdminFee = pool.TotalAdminFee.Add(adminFee)
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_buy",
			sdk.NewAttribute("pool_id", msg.PoolID),
			sdk.NewAttribute("buyer", msg.Buyer),
			sdk.NewAttribute("recipient", msg.Recipient),
			sdk.NewAttribute("base_out", baseOut.String()),
			sdk.NewAttribute("quote_in", received.String()),
			sdk.NewAttribute("fee", fee.String()),
			sdk.NewAttribute("admin_fee", adminFee.String()),
		),
	)
	k.logger.Info("Buy executed",
		"pool_id", msg.PoolID,
		"base_out", baseOut.String(),
		"quote_in", received.String(),
	)
	return received, nil
}

// Sell swaps the pool's tranche for quoteOut of quote. Mirrors Buy: the
// quote leg is paid out first, an optional callback runs, and the base
// actually received by the escrow settles the trade.
func (k *Keeper) Sell(ctx sdk.Context, msg *types.MsgSell) (math.Int, error) {
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
	quoteOut, ok := math.NewIntFromString(msg.QuoteOut)
	if !ok || !quoteOut.IsPositive() {
		return zero, types.ErrZeroAmount
	}
	maxBaseIn, ok := math.NewIntFromString(msg.MaxBaseIn)
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

	view := k.tradeViewOf(ctx, pool, price)
	baseIn, tq, err := priceSell(view, quoteOut)
	if err != nil {
		return zero, err
	}
	if baseIn.GT(maxBaseIn) {
		return zero, types.ErrSlippageExceeded
	}
	if err := checkDeviation(pool.BaseBalance, pool.QuoteBalance, baseIn, quoteOut.Add(tq.fee), price); err != nil {
		return zero, err
	}

	escrow := types.PoolAddress(msg.PoolID)
	recipient, err := sdk.AccAddressFromBech32(msg.Recipient)
	if err != nil {
		return zero, err
	}
	baseBefore := k.escrowBalance(ctx, msg.PoolID, pool.BaseTranche)

	out := sdk.NewCoins(sdk.NewCoin(pool.QuoteDenom, quoteOut))
	if err := k.bankKeeper.SendCoins(ctx, escrow, recipient, out); err != nil {
		return zero, err
	}

	if len(msg.Data) > 0 {
		if err := k.runCallback(ctx, pool, msg.Recipient, zero, quoteOut, msg.Data); err != nil {
			return zero, err
		}
	} else {
		seller, err := sdk.AccAddressFromBech32(msg.Seller)
		if err != nil {
			return zero, err
		}
		in := sdk.NewCoins(sdk.NewCoin(pool.BaseTranche, baseIn))
		if err := k.bankKeeper.SendCoins(ctx, seller, escrow, in); err != nil {
			return zero, err
		}
	}

	received := k.escrowBalance(ctx, msg.PoolID, pool.BaseTranche).Sub(baseBefore)
	after, err := curve.SolveD(pool.BaseBalance.Add(received), tq.newQuote, view.ampl, price)
	if err != nil {
		return zero, err
	}
	if after.LT(tq.d) {
		return zero, types.ErrInvariantViolation
	}

	pool.BaseBalance = pool.BaseBalance.Add(received)
	pool.QuoteBalance = pool.QuoteBalance.Sub(quoteOut).Sub(tq.adminFee)
	pool.TotalAdminFee = pool.TotalAdminFee.Add(tq.adminFee)
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_sell",
			sdk.NewAttribute("pool_id", msg.PoolID),
			sdk.NewAttribute("seller", msg.Seller),
			sdk.NewAttribute("recipient", msg.Recipient),
			sdk.NewAttribute("base_in", received.String()),
			sdk.NewAttribute("quote_out", quoteOut.String()),
			sdk.NewAttribute("fee", tq.fee.String()),
			sdk.NewAttribute("admin_fee", tq.adminFee.String()),
		),
	)
	k.logger.Info("Sell executed",
		"pool_id", msg.PoolID,
		"base_in", received.String(),
		"quote_out", quoteOut.String(),
	)
	return baseIn, nil
}
