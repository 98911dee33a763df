package keeper

import (
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	fundtypes "github.com/castleswap/tranche-dex/x/fund/types"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

// bootstrapPool creates an empty pool and makes the first deposit from the
// provider. Returns the LP amount minted to the provider.
func bootstrapPool(t *testing.T, k *Keeper, ctx sdk.Context, bank *mockBank, amount math.Int) math.Int {
	t.Helper()

	if _, err := k.CreatePool(ctx, testOwner.String(), "bishop-usd", fundtypes.DenomBishop,
		math.NewInt(85),
		math.LegacyMustNewDecFromStr("0.0003"),
		math.LegacyMustNewDecFromStr("0.4"),
		math.LegacyZeroDec(), 0); err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	bank.add(testProvider, sdk.NewCoins(
		sdk.NewCoin(fundtypes.DenomBishop, amount),
		sdk.NewCoin(types.DenomQuote, amount),
	))
	minted, err := k.AddLiquidity(ctx, &types.MsgAddLiquidity{
		Provider: testProvider.String(),
		PoolID:   "bishop-usd",
		BaseIn:   amount.String(),
		QuoteIn:  amount.String(),
		MinLPOut: "0",
	})
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	return minted
}

func TestAddLiquidityBootstrap(t *testing.T) {
	k, _, gauge, bank, ctx := setupKeeper(t)
	amount := math.NewInt(1_000_000_000_000)
	minted := bootstrapPool(t, k, ctx, bank, amount)

	if !minted.IsPositive() {
		t.Fatalf("first deposit minted %s", minted)
	}
	supply := gauge.TotalSupply(ctx, "bishop-usd")
	if want := minted.Add(types.MinimumLiquidity); !supply.Equal(want) {
		t.Errorf("LP supply = %s, want %s", supply, want)
	}
	// The minimum stays locked with the escrow forever.
	escrow := types.PoolAddress("bishop-usd")
	if locked := gauge.balanceOf("bishop-usd", escrow); !locked.Equal(types.MinimumLiquidity) {
		t.Errorf("locked LP = %s, want %s", locked, types.MinimumLiquidity)
	}
	pool := k.GetPool(ctx, "bishop-usd")
	if !pool.BaseBalance.Equal(amount) || !pool.QuoteBalance.Equal(amount) {
		t.Errorf("pool reserves = %s/%s, want %s each", pool.BaseBalance, pool.QuoteBalance, amount)
	}
}

func TestAddLiquidityProportional(t *testing.T) {
	k, _, gauge, bank, ctx := setupKeeper(t)
	amount := math.NewInt(1_000_000_000_000)
	bootstrapPool(t, k, ctx, bank, amount)
	supply := gauge.TotalSupply(ctx, "bishop-usd")

	// A perfectly proportional deposit pays no imbalance fee and doubles
	// the supply, up to solver rounding.
	bank.add(testProvider, sdk.NewCoins(
		sdk.NewCoin(fundtypes.DenomBishop, amount),
		sdk.NewCoin(types.DenomQuote, amount),
	))
	minted, err := k.AddLiquidity(ctx, &types.MsgAddLiquidity{
		Provider: testProvider.String(),
		PoolID:   "bishop-usd",
		BaseIn:   amount.String(),
		QuoteIn:  amount.String(),
		MinLPOut: "0",
	})
	if err != nil {
		t.Fatalf("second AddLiquidity: %v", err)
	}
	if diff := minted.Sub(supply).Abs(); diff.GT(math.NewInt(10)) {
		t.Errorf("proportional deposit minted %s, want about %s", minted, supply)
	}
}

func TestAddLiquiditySlippage(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	amount := math.NewInt(1_000_000_000_000)
	bootstrapPool(t, k, ctx, bank, amount)

	bank.add(testProvider, sdk.NewCoins(sdk.NewCoin(types.DenomQuote, amount)))
	_, err := k.AddLiquidity(ctx, &types.MsgAddLiquidity{
		Provider: testProvider.String(),
		PoolID:   "bishop-usd",
		BaseIn:   "0",
		QuoteIn:  amount.String(),
		MinLPOut: amount.MulRaw(2).String(),
	})
	if err != types.ErrSlippageExceeded {
		t.Errorf("err = %v, want ErrSlippageExceeded", err)
	}
}

func TestRemoveLiquidity(t *testing.T) {
	k, _, gauge, bank, ctx := setupKeeper(t)
	amount := math.NewInt(1_000_000_000_000)
	minted := bootstrapPool(t, k, ctx, bank, amount)
	supply := gauge.TotalSupply(ctx, "bishop-usd")
	pool := k.GetPool(ctx, "bishop-usd")
	wantBase := pool.BaseBalance.Mul(minted).Quo(supply)
	wantQuote := pool.QuoteBalance.Mul(minted).Quo(supply)

	baseOut, quoteOut, err := k.RemoveLiquidity(ctx, &types.MsgRemoveLiquidity{
		Provider:    testProvider.String(),
		PoolID:      "bishop-usd",
		LPAmount:    minted.String(),
		MinBaseOut:  "0",
		MinQuoteOut: "0",
	})
	if err != nil {
		t.Fatalf("RemoveLiquidity: %v", err)
	}
	if !baseOut.Equal(wantBase) || !quoteOut.Equal(wantQuote) {
		t.Errorf("withdrew %s/%s, want %s/%s", baseOut, quoteOut, wantBase, wantQuote)
	}
	if got := bank.GetBalance(ctx, testProvider, fundtypes.DenomBishop).Amount; !got.Equal(baseOut) {
		t.Errorf("provider base = %s, want %s", got, baseOut)
	}
	// Only the locked minimum remains.
	if got := gauge.TotalSupply(ctx, "bishop-usd"); !got.Equal(types.MinimumLiquidity) {
		t.Errorf("remaining supply = %s, want %s", got, types.MinimumLiquidity)
	}
	pool = k.GetPool(ctx, "bishop-usd")
	if pool.BaseBalance.IsNegative() || pool.QuoteBalance.IsNegative() {
		t.Errorf("reserves went negative: %s/%s", pool.BaseBalance, pool.QuoteBalance)
	}
}

func TestRemoveLiquiditySlippage(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	amount := math.NewInt(1_000_000_000_000)
	minted := bootstrapPool(t, k, ctx, bank, amount)

	_, _, err := k.RemoveLiquidity(ctx, &types.MsgRemoveLiquidity{
		Provider:    testProvider.String(),
		PoolID:      "bishop-usd",
		LPAmount:    minted.String(),
		MinBaseOut:  amount.MulRaw(2).String(),
		MinQuoteOut: "0",
	})
	if err != types.ErrSlippageExceeded {
		t.Errorf("err = %v, want ErrSlippageExceeded", err)
	}

	_, _, err = k.RemoveLiquidity(ctx, &types.MsgRemoveLiquidity{
		Provider:    testProvider.String(),
		PoolID:      "bishop-usd",
		LPAmount:    minted.MulRaw(2).String(),
		MinBaseOut:  "0",
		MinQuoteOut: "0",
	})
	if err != types.ErrInsufficientLiquidity {
		t.Errorf("overdrawn burn err = %v, want ErrInsufficientLiquidity", err)
	}
}

func TestRemoveBaseLiquidity(t *testing.T) {
	k, _, gauge, bank, ctx := setupKeeper(t)
	amount := math.NewInt(1_000_000_000_000)
	minted := bootstrapPool(t, k, ctx, bank, amount)
	supply := gauge.TotalSupply(ctx, "bishop-usd")
	pool := k.GetPool(ctx, "bishop-usd")

	lp := minted.QuoRaw(10)
	proportional := pool.BaseBalance.Mul(lp).Quo(supply)

	baseOut, err := k.RemoveBaseLiquidity(ctx, &types.MsgRemoveBaseLiquidity{
		Provider:   testProvider.String(),
		PoolID:     "bishop-usd",
		LPAmount:   lp.String(),
		MinBaseOut: "0",
	})
	if err != nil {
		t.Fatalf("RemoveBaseLiquidity: %v", err)
	}
	// The quote share is converted into base, so the single-sided exit
	// pays out more base than a proportional one, net of the swap fee.
	if baseOut.LTE(proportional) {
		t.Errorf("single-sided base out %s <= proportional %s", baseOut, proportional)
	}
	after := k.GetPool(ctx, "bishop-usd")
	if want := pool.BaseBalance.Sub(baseOut); !after.BaseBalance.Equal(want) {
		t.Errorf("pool base = %s, want %s", after.BaseBalance, want)
	}
	if !after.QuoteBalance.Equal(pool.QuoteBalance) {
		t.Errorf("pool quote moved on a base-only exit: %s -> %s", pool.QuoteBalance, after.QuoteBalance)
	}
}

func TestRemoveQuoteLiquidity(t *testing.T) {
	k, _, gauge, bank, ctx := setupKeeper(t)
	amount := math.NewInt(1_000_000_000_000)
	minted := bootstrapPool(t, k, ctx, bank, amount)
	supply := gauge.TotalSupply(ctx, "bishop-usd")
	pool := k.GetPool(ctx, "bishop-usd")

	lp := minted.QuoRaw(10)
	proportional := pool.QuoteBalance.Mul(lp).Quo(supply)

	quoteOut, err := k.RemoveQuoteLiquidity(ctx, &types.MsgRemoveQuoteLiquidity{
		Provider:    testProvider.String(),
		PoolID:      "bishop-usd",
		LPAmount:    lp.String(),
		MinQuoteOut: "0",
	})
	if err != nil {
		t.Fatalf("RemoveQuoteLiquidity: %v", err)
	}
	if quoteOut.LTE(proportional) {
		t.Errorf("single-sided quote out %s <= proportional %s", quoteOut, proportional)
	}
	after := k.GetPool(ctx, "bishop-usd")
	if !after.BaseBalance.Equal(pool.BaseBalance) {
		t.Errorf("pool base moved on a quote-only exit: %s -> %s", pool.BaseBalance, after.BaseBalance)
	}
	// The admin share of the exit fee accrues like on a trade.
	if !after.TotalAdminFee.IsPositive() {
		t.Error("expected accrued admin fee after single-sided quote exit")
	}
}

func TestAddLiquidityZeroAmounts(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	amount := math.NewInt(1_000_000)
	bootstrapPool(t, k, ctx, bank, amount)

	_, err := k.AddLiquidity(ctx, &types.MsgAddLiquidity{
		Provider: testProvider.String(),
		PoolID:   "bishop-usd",
		BaseIn:   "0",
		QuoteIn:  "0",
		MinLPOut: "0",
	})
	if err != types.ErrZeroAmount {
		t.Errorf("err = %v, want ErrZeroAmount", err)
	}
}
