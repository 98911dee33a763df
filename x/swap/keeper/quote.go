package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/pkg/curve"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

// tradeView is the read-only snapshot every quote and trade prices
// against: rebalance-normalized balances, the oracle price, the ramped
// amplification and the effective fee at the current block time.
type tradeView struct {
	pool    *types.Pool
	base    math.Int
	quote   math.Int
	price   math.Int
	ampl    math.Int
	feeRate math.LegacyDec
}

func (k *Keeper) newTradeView(ctx sdk.Context, poolID string) (*tradeView, error) {
	pool := k.GetPool(ctx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	result, err := k.ResolveRebalance(ctx, pool)
	if err != nil {
		return nil, err
	}
	price, err := k.fundKeeper.GetOraclePrice(ctx)
	if err != nil {
		return nil, err
	}
	now := ctx.BlockTime().Unix()
	// A pending rebalance triggers the cooling-off surcharge as if it had
	// just been applied.
	if result.Occurred() && result.Timestamp > pool.LastRebalanceTimestamp {
		pool.LastRebalanceTimestamp = result.Timestamp
	}
	return &tradeView{
		pool:    pool,
		base:    result.Base,
		quote:   result.Quote,
		price:   price,
		ampl:    pool.CurrentAmpl(now),
		feeRate: pool.EffectiveFeeRate(now),
	}, nil
}

func (v *tradeView) invariant() (math.Int, error) {
	return curve.SolveD(v.base, v.quote, v.ampl, v.price)
}

// feeOn computes the fee on an amount quoted after fee.
func feeOn(amount math.Int, rate math.LegacyDec) math.Int {
	return rate.MulInt(amount).TruncateInt()
}

// grossUp converts an after-fee amount to its before-fee equivalent,
// amount / (1 - rate), rounded up so the trader always owes at least the
// exact value.
func grossUp(amount math.Int, rate math.LegacyDec) math.Int {
	return math.LegacyNewDecFromInt(amount).Quo(math.LegacyOneDec().Sub(rate)).Ceil().TruncateInt()
}

// GetQuoteOut quotes the quote amount received for selling baseIn,
// inclusive of the trading fee.
func (k *Keeper) GetQuoteOut(ctx sdk.Context, poolID string, baseIn math.Int) (math.Int, error) {
	if !baseIn.IsPositive() {
		return math.ZeroInt(), types.ErrZeroAmount
	}
	v, err := k.newTradeView(ctx, poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	d, err := v.invariant()
	if err != nil {
		return math.ZeroInt(), err
	}
	if d.IsZero() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	newQuote, err := curve.SolveQuote(v.base.Add(baseIn), d, v.ampl, v.price)
	if err != nil {
		return math.ZeroInt(), err
	}
	newQuote = newQuote.AddRaw(1)
	if newQuote.GTE(v.quote) {
		return math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	out := v.quote.Sub(newQuote)
	return out.Sub(feeOn(out, v.feeRate)), nil
}

// GetQuoteIn quotes the quote amount owed for buying baseOut, inclusive of
// the trading fee. The trader owes, so rounding is up.
func (k *Keeper) GetQuoteIn(ctx sdk.Context, poolID string, baseOut math.Int) (math.Int, error) {
	if !baseOut.IsPositive() {
		return math.ZeroInt(), types.ErrZeroAmount
	}
	v, err := k.newTradeView(ctx, poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	d, err := v.invariant()
	if err != nil {
		return math.ZeroInt(), err
	}
	if d.IsZero() || baseOut.GTE(v.base) {
		return math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	newQuote, err := curve.SolveQuote(v.base.Sub(baseOut), d, v.ampl, v.price)
	if err != nil {
		return math.ZeroInt(), err
	}
	newQuote = newQuote.AddRaw(1)
	delta := newQuote.Sub(v.quote)
	if !delta.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	return grossUp(delta, v.feeRate), nil
}

// GetBaseOut quotes the base amount received for paying quoteIn.
func (k *Keeper) GetBaseOut(ctx sdk.Context, poolID string, quoteIn math.Int) (math.Int, error) {
	if !quoteIn.IsPositive() {
		return math.ZeroInt(), types.ErrZeroAmount
	}
	v, err := k.newTradeView(ctx, poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	d, err := v.invariant()
	if err != nil {
		return math.ZeroInt(), err
	}
	if d.IsZero() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	afterFee := quoteIn.Sub(feeOn(quoteIn, v.feeRate))
	newBase, err := curve.SolveBase(v.quote.Add(afterFee), d, v.ampl, v.price)
	if err != nil {
		return math.ZeroInt(), err
	}
	newBase = newBase.AddRaw(1)
	if newBase.GTE(v.base) {
		return math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	return v.base.Sub(newBase), nil
}

// GetBaseIn quotes the base amount owed for receiving quoteOut.
func (k *Keeper) GetBaseIn(ctx sdk.Context, poolID string, quoteOut math.Int) (math.Int, error) {
	if !quoteOut.IsPositive() {
		return math.ZeroInt(), types.ErrZeroAmount
	}
	v, err := k.newTradeView(ctx, poolID)
	if err != nil {
		return math.ZeroInt(), err
	}
	d, err := v.invariant()
	if err != nil {
		return math.ZeroInt(), err
	}
	if d.IsZero() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	beforeFee := grossUp(quoteOut, v.feeRate)
	if beforeFee.GTE(v.quote) {
		return math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	newBase, err := curve.SolveBase(v.quote.Sub(beforeFee), d, v.ampl, v.price)
	if err != nil {
		return math.ZeroInt(), err
	}
	newBase = newBase.AddRaw(1)
	baseIn := newBase.Sub(v.base)
	if !baseIn.IsPositive() {
		return math.ZeroInt(), types.ErrInsufficientLiquidity
	}
	return baseIn, nil
}
