package keeper

import (
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	fundtypes "github.com/castleswap/tranche-dex/x/fund/types"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

// rebalancePolicy resolves a pool's stored balances to a target rebalance
// version. One implementation per tranche; selected by policyFor. Policies
// are pure computations, the keeper applies their results.
type rebalancePolicy interface {
	resolve(ctx sdk.Context, k *Keeper, pool *types.Pool, targetVersion uint64) (types.RebalanceResult, error)
}

func policyFor(tranche string) rebalancePolicy {
	switch tranche {
	case fundtypes.DenomQueen:
		return queenPolicy{}
	case fundtypes.DenomBishop:
		return ratioPolicy{tranche: fundtypes.DenomBishop}
	case fundtypes.DenomRook:
		// A lower rebalance can wipe the rook side entirely. The pro-rata
		// quote scaling already floors the removed quote at the full quote
		// balance: shortfall never exceeds the stored base.
		return ratioPolicy{tranche: fundtypes.DenomRook}
	default:
		return nil
	}
}

// queenPolicy: QUEEN shares are not redenominated by a rebalance, so the
// pool only advances its version tag.
type queenPolicy struct{}

func (queenPolicy) resolve(ctx sdk.Context, k *Keeper, pool *types.Pool, targetVersion uint64) (types.RebalanceResult, error) {
	return types.RebalanceResult{
		Base:         pool.BaseBalance,
		Quote:        pool.QuoteBalance,
		ExcessQueen:  math.ZeroInt(),
		ExcessBishop: math.ZeroInt(),
		ExcessRook:   math.ZeroInt(),
		ExcessQuote:  math.ZeroInt(),
		Timestamp:    k.fundKeeper.GetRebalanceTimestamp(ctx, targetVersion-1),
	}, nil
}

// ratioPolicy: the base holding is pushed through the fund's batch
// transform. Surplus QUEEN thrown off by the transform is split back into
// tranche tokens to make the pool whole; the alternate tranche from that
// split is always distributed. A remaining base shortfall scales the quote
// balance down pro rata, with the removed quote distributed; a base surplus
// is distributed directly. Value never disappears into the reserves.
type ratioPolicy struct {
	tranche string
}

func (p ratioPolicy) resolve(ctx sdk.Context, k *Keeper, pool *types.Pool, targetVersion uint64) (types.RebalanceResult, error) {
	q0, b0, r0 := math.ZeroInt(), math.ZeroInt(), math.ZeroInt()
	if p.tranche == fundtypes.DenomBishop {
		b0 = pool.BaseBalance
	} else {
		r0 = pool.BaseBalance
	}
	q, b, r, err := k.fundKeeper.BatchRebalance(ctx, q0, b0, r0, pool.CurrentVersion, targetVersion)
	if err != nil {
		return types.RebalanceResult{}, err
	}

	// Splitting q QUEEN yields q of each tranche.
	var newBase, excessAlt math.Int
	result := types.RebalanceResult{
		ExcessQueen: math.ZeroInt(),
		ExcessQuote: math.ZeroInt(),
		Timestamp:   k.fundKeeper.GetRebalanceTimestamp(ctx, targetVersion-1),
	}
	if p.tranche == fundtypes.DenomBishop {
		newBase = b.Add(q)
		excessAlt = r.Add(q)
		result.ExcessRook = excessAlt
		result.ExcessBishop = math.ZeroInt()
	} else {
		newBase = r.Add(q)
		excessAlt = b.Add(q)
		result.ExcessBishop = excessAlt
		result.ExcessRook = math.ZeroInt()
	}

	quote := pool.QuoteBalance
	switch {
	case newBase.GT(pool.BaseBalance):
		surplus := newBase.Sub(pool.BaseBalance)
		if p.tranche == fundtypes.DenomBishop {
			result.ExcessBishop = surplus
		} else {
			result.ExcessRook = surplus
		}
		newBase = pool.BaseBalance
	case newBase.LT(pool.BaseBalance):
		shortfall := pool.BaseBalance.Sub(newBase)
		excessQuote := quote.Mul(shortfall).Quo(pool.BaseBalance)
		result.ExcessQuote = excessQuote
		quote = quote.Sub(excessQuote)
	}

	result.Base = newBase
	result.Quote = quote
	return result, nil
}

// ResolveRebalance computes, without mutating state, the pool's balances at
// the fund's current version plus any excess owed to LPs. A pool already at
// the current version resolves to itself with a zero timestamp.
func (k *Keeper) ResolveRebalance(ctx sdk.Context, pool *types.Pool) (types.RebalanceResult, error) {
	targetVersion := k.fundKeeper.GetRebalanceSize(ctx)
	if pool.CurrentVersion == targetVersion {
		return types.RebalanceResult{
			Base:         pool.BaseBalance,
			Quote:        pool.QuoteBalance,
			ExcessQueen:  math.ZeroInt(),
			ExcessBishop: math.ZeroInt(),
			ExcessRook:   math.ZeroInt(),
			ExcessQuote:  math.ZeroInt(),
		}, nil
	}
	policy := policyFor(pool.BaseTranche)
	if policy == nil {
		return types.RebalanceResult{}, types.ErrUnknownTranche
	}
	return policy.resolve(ctx, k, pool, targetVersion)
}

// handleRebalance applies a pending rebalance before any fee or invariant
// math: the escrow's tranche holdings are physically converted, surplus
// QUEEN is split back into tranches, excess amounts are forwarded to the
// gauge for pro-rata LP distribution, and the pool's balances and version
// are committed. No-op when the pool is current.
func (k *Keeper) handleRebalance(ctx sdk.Context, pool *types.Pool) error {
	targetVersion := k.fundKeeper.GetRebalanceSize(ctx)
	if pool.CurrentVersion == targetVersion {
		return nil
	}
	result, err := k.ResolveRebalance(ctx, pool)
	if err != nil {
		return err
	}

	addr := types.PoolAddress(pool.PoolID)
	if pool.BaseTranche != fundtypes.DenomQueen {
		if err := k.fundKeeper.RefreshBalance(ctx, addr, pool.CurrentVersion, targetVersion); err != nil {
			return err
		}
		queenHeld := k.bankKeeper.GetBalance(ctx, addr, fundtypes.DenomQueen).Amount
		if queenHeld.IsPositive() {
			if err := k.fundKeeper.Split(ctx, addr, queenHeld); err != nil {
				return err
			}
		}
	}

	excess := sdk.NewCoins()
	if result.ExcessQueen.IsPositive() {
		excess = excess.Add(sdk.NewCoin(fundtypes.DenomQueen, result.ExcessQueen))
	}
	if result.ExcessBishop.IsPositive() {
		excess = excess.Add(sdk.NewCoin(fundtypes.DenomBishop, result.ExcessBishop))
	}
	if result.ExcessRook.IsPositive() {
		excess = excess.Add(sdk.NewCoin(fundtypes.DenomRook, result.ExcessRook))
	}
	if result.ExcessQuote.IsPositive() {
		excess = excess.Add(sdk.NewCoin(pool.QuoteDenom, result.ExcessQuote))
	}
	if !excess.IsZero() {
		if err := k.bankKeeper.SendCoins(ctx, addr, k.gaugeKeeper.ModuleAddress(), excess); err != nil {
			return err
		}
		if err := k.gaugeKeeper.Distribute(ctx, pool.PoolID,
			result.ExcessQueen, result.ExcessBishop, result.ExcessRook, result.ExcessQuote,
			targetVersion); err != nil {
			return err
		}
	}

	pool.BaseBalance = result.Base
	pool.QuoteBalance = result.Quote
	pool.CurrentVersion = targetVersion
	pool.LastRebalanceTimestamp = result.Timestamp
	k.touch(pool, ctx.BlockTime())
	k.SetPool(ctx, pool)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"swap_rebalance",
			sdk.NewAttribute("pool_id", pool.PoolID),
			sdk.NewAttribute("version", strconv.FormatUint(targetVersion, 10)),
			sdk.NewAttribute("base_balance", result.Base.String()),
			sdk.NewAttribute("quote_balance", result.Quote.String()),
			sdk.NewAttribute("excess_quote", result.ExcessQuote.String()),
		),
	)
	k.logger.Info("Pool rebalanced",
		"pool_id", pool.PoolID,
		"version", targetVersion,
		"base", result.Base.String(),
		"quote", result.Quote.String(),
	)
	return nil
}
