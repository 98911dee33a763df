package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/fund/types"
)

// Create mints QUEEN against a deposit of the underlying. QUEEN tracks the
// underlying one to one, so the deposit is escrowed in the module account
// and the same amount of QUEEN is minted to the owner.
func (k *Keeper) Create(ctx sdk.Context, owner sdk.AccAddress, underlying math.Int) error {
	if !underlying.IsPositive() {
		return types.ErrZeroAmount
	}
	if _, err := k.GetOraclePrice(ctx); err != nil {
		return err
	}
	deposit := sdk.NewCoins(sdk.NewCoin(types.DenomUnderlying, underlying))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, owner, types.ModuleName, deposit); err != nil {
		return err
	}
	queen := sdk.NewCoins(sdk.NewCoin(types.DenomQueen, underlying))
	if err := k.bankKeeper.MintCoins(ctx, types.ModuleName, queen); err != nil {
		return err
	}
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, owner, queen); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"fund_create",
			sdk.NewAttribute("owner", owner.String()),
			sdk.NewAttribute("underlying", underlying.String()),
		),
	)
	return nil
}

// Redeem burns current-version QUEEN and pays the underlying back out of
// the module escrow.
func (k *Keeper) Redeem(ctx sdk.Context, owner sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return types.ErrZeroAmount
	}
	queen := sdk.NewCoins(sdk.NewCoin(types.DenomQueen, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, owner, types.ModuleName, queen); err != nil {
		return err
	}
	if err := k.bankKeeper.BurnCoins(ctx, types.ModuleName, queen); err != nil {
		return err
	}
	out := sdk.NewCoins(sdk.NewCoin(types.DenomUnderlying, amount))
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, owner, out); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"fund_redeem",
			sdk.NewAttribute("owner", owner.String()),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	return nil
}

// Split converts QUEEN held by owner into equal amounts of BISHOP and ROOK.
// The queen is pulled into the module account and burned; the tranche
// tokens are minted straight back to the owner.
func (k *Keeper) Split(ctx sdk.Context, owner sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return types.ErrZeroAmount
	}
	queen := sdk.NewCoins(sdk.NewCoin(types.DenomQueen, amount))
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, owner, types.ModuleName, queen); err != nil {
		return err
	}
	if err := k.bankKeeper.BurnCoins(ctx, types.ModuleName, queen); err != nil {
		return err
	}
	minted := sdk.NewCoins(
		sdk.NewCoin(types.DenomBishop, amount),
		sdk.NewCoin(types.DenomRook, amount),
	)
	if err := k.bankKeeper.MintCoins(ctx, types.ModuleName, minted); err != nil {
		return err
	}
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, owner, minted); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"fund_split",
			sdk.NewAttribute("owner", owner.String()),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	return nil
}

// Merge converts equal amounts of BISHOP and ROOK back into QUEEN.
func (k *Keeper) Merge(ctx sdk.Context, owner sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return types.ErrZeroAmount
	}
	tranches := sdk.NewCoins(
		sdk.NewCoin(types.DenomBishop, amount),
		sdk.NewCoin(types.DenomRook, amount),
	)
	if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, owner, types.ModuleName, tranches); err != nil {
		return err
	}
	if err := k.bankKeeper.BurnCoins(ctx, types.ModuleName, tranches); err != nil {
		return err
	}
	queen := sdk.NewCoins(sdk.NewCoin(types.DenomQueen, amount))
	if err := k.bankKeeper.MintCoins(ctx, types.ModuleName, queen); err != nil {
		return err
	}
	if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, owner, queen); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"fund_merge",
			sdk.NewAttribute("owner", owner.String()),
			sdk.NewAttribute("amount", amount.String()),
		),
	)
	return nil
}

// ExtrapolateNav derives the per-tranche NAVs from an underlying price.
// QUEEN tracks the underlying one to one, BISHOP holds its par value of one
// quote unit, and ROOK absorbs the remaining upside or downside:
// navRook = 2*navQueen - navBishop, floored at zero.
func (k *Keeper) ExtrapolateNav(ctx sdk.Context, price math.Int) types.Navs {
	unit := math.NewIntWithDecimal(1, 18)
	navQueen := price
	navBishop := unit
	navRook := navQueen.MulRaw(2).Sub(navBishop)
	if navRook.IsNegative() {
		navRook = math.ZeroInt()
	}
	return types.Navs{Queen: navQueen, Bishop: navBishop, Rook: navRook}
}

// RefreshBalance physically converts an account's tranche holdings across
// the version range [fromVersion, toVersion): the stale amounts are pulled
// in and burned, the transformed amounts minted back out. Callers (pool
// escrows, the gauge module account) hold tranche tokens at a single
// version, which this relies on.
func (k *Keeper) RefreshBalance(ctx sdk.Context, addr sdk.AccAddress, fromVersion, toVersion uint64) error {
	if fromVersion == toVersion {
		return nil
	}
	q := k.bankKeeper.GetBalance(ctx, addr, types.DenomQueen).Amount
	b := k.bankKeeper.GetBalance(ctx, addr, types.DenomBishop).Amount
	r := k.bankKeeper.GetBalance(ctx, addr, types.DenomRook).Amount

	newQ, newB, newR, err := k.BatchRebalance(ctx, q, b, r, fromVersion, toVersion)
	if err != nil {
		return err
	}

	old := trancheCoins(q, b, r)
	if !old.IsZero() {
		if err := k.bankKeeper.SendCoinsFromAccountToModule(ctx, addr, types.ModuleName, old); err != nil {
			return err
		}
		if err := k.bankKeeper.BurnCoins(ctx, types.ModuleName, old); err != nil {
			return err
		}
	}
	minted := trancheCoins(newQ, newB, newR)
	if !minted.IsZero() {
		if err := k.bankKeeper.MintCoins(ctx, types.ModuleName, minted); err != nil {
			return err
		}
		if err := k.bankKeeper.SendCoinsFromModuleToAccount(ctx, types.ModuleName, addr, minted); err != nil {
			return err
		}
	}

	k.logger.Info("Tranche balance refreshed",
		"address", addr.String(),
		"from_version", fromVersion,
		"to_version", toVersion,
	)
	return nil
}

func trancheCoins(q, b, r math.Int) sdk.Coins {
	coins := sdk.NewCoins()
	if q.IsPositive() {
		coins = coins.Add(sdk.NewCoin(types.DenomQueen, q))
	}
	if b.IsPositive() {
		coins = coins.Add(sdk.NewCoin(types.DenomBishop, b))
	}
	if r.IsPositive() {
		coins = coins.Add(sdk.NewCoin(types.DenomRook, r))
	}
	return coins
}

// TrancheBalance reports an account's balance of one tranche denom.
func (k *Keeper) TrancheBalance(ctx sdk.Context, addr sdk.AccAddress, denom string) (math.Int, error) {
	switch denom {
	case types.DenomQueen, types.DenomBishop, types.DenomRook:
		return k.bankKeeper.GetBalance(ctx, addr, denom).Amount, nil
	default:
		return math.ZeroInt(), types.ErrUnknownTranche
	}
}
