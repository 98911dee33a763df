package keeper

import (
	"testing"

	"cosmossdk.io/math"

	fundtypes "github.com/castleswap/tranche-dex/x/fund/types"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

func TestFeeRounding(t *testing.T) {
	rate := math.LegacyMustNewDecFromStr("0.0003")

	if got := feeOn(math.NewInt(10_000), rate); !got.Equal(math.NewInt(3)) {
		t.Errorf("feeOn(10000) = %s, want 3", got)
	}
	// Truncation: the fee never exceeds the exact value.
	if got := feeOn(math.NewInt(9_999), rate); !got.Equal(math.NewInt(2)) {
		t.Errorf("feeOn(9999) = %s, want 2", got)
	}

	// Grossing up then re-taking the fee always covers the target amount.
	for _, amt := range []int64{1, 997, 10_000, 123_456_789} {
		after := math.NewInt(amt)
		before := grossUp(after, rate)
		if net := before.Sub(feeOn(before, rate)); net.LT(after) {
			t.Errorf("grossUp(%d): net %s < target %s", amt, net, after)
		}
	}
}

func TestQuotesAroundPar(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	reserve := math.NewInt(1_000_000_000_000)
	seedPool(t, k, ctx, bank, fundtypes.DenomBishop, reserve, reserve)
	trade := math.NewInt(1_000_000_000)

	quoteOut, err := k.GetQuoteOut(ctx, "bishop-usd", trade)
	if err != nil {
		t.Fatalf("GetQuoteOut: %v", err)
	}
	if !quoteOut.IsPositive() || quoteOut.GTE(trade) {
		t.Errorf("quote out = %s, want in (0, %s) near par", quoteOut, trade)
	}

	quoteIn, err := k.GetQuoteIn(ctx, "bishop-usd", trade)
	if err != nil {
		t.Fatalf("GetQuoteIn: %v", err)
	}
	if quoteIn.LTE(quoteOut) {
		t.Errorf("buying costs %s, selling yields %s, want a positive spread", quoteIn, quoteOut)
	}

	baseOut, err := k.GetBaseOut(ctx, "bishop-usd", trade)
	if err != nil {
		t.Fatalf("GetBaseOut: %v", err)
	}
	if !baseOut.IsPositive() || baseOut.GTE(trade) {
		t.Errorf("base out = %s, want in (0, %s) near par", baseOut, trade)
	}

	baseIn, err := k.GetBaseIn(ctx, "bishop-usd", trade)
	if err != nil {
		t.Fatalf("GetBaseIn: %v", err)
	}
	if baseIn.LTE(baseOut) {
		t.Errorf("base in %s <= base out %s, want a positive spread", baseIn, baseOut)
	}
}

func TestQuoteRoundTripFavorsPool(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	reserve := math.NewInt(1_000_000_000_000)
	seedPool(t, k, ctx, bank, fundtypes.DenomBishop, reserve, reserve)

	// Sell base for quote, then buy the base back: the quote spent must
	// exceed the quote received, or the pool leaks value.
	baseAmount := math.NewInt(5_000_000_000)
	received, err := k.GetQuoteOut(ctx, "bishop-usd", baseAmount)
	if err != nil {
		t.Fatalf("GetQuoteOut: %v", err)
	}
	spent, err := k.GetQuoteIn(ctx, "bishop-usd", baseAmount)
	if err != nil {
		t.Fatalf("GetQuoteIn: %v", err)
	}
	if spent.LTE(received) {
		t.Errorf("round trip: spent %s <= received %s", spent, received)
	}
}

func TestQuoteOffParPrice(t *testing.T) {
	k, fund, _, bank, ctx := setupKeeper(t)
	reserve := math.NewInt(1_000_000_000_000)
	seedPool(t, k, ctx, bank, fundtypes.DenomBishop, reserve, reserve)

	// With the tranche worth half a quote unit, selling base yields
	// roughly half the quote amount.
	fund.price = types.UnitInt.QuoRaw(2)
	trade := math.NewInt(1_000_000_000)
	quoteOut, err := k.GetQuoteOut(ctx, "bishop-usd", trade)
	if err != nil {
		t.Fatalf("GetQuoteOut: %v", err)
	}
	if quoteOut.GTE(trade.MulRaw(3).QuoRaw(4)) || quoteOut.LTE(trade.QuoRaw(4)) {
		t.Errorf("quote out at half price = %s, want near %s", quoteOut, trade.QuoRaw(2))
	}
}

func TestQuoteErrors(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	reserve := math.NewInt(1_000_000)
	seedPool(t, k, ctx, bank, fundtypes.DenomBishop, reserve, reserve)

	if _, err := k.GetQuoteOut(ctx, "bishop-usd", math.ZeroInt()); err != types.ErrZeroAmount {
		t.Errorf("zero amount err = %v, want ErrZeroAmount", err)
	}
	if _, err := k.GetQuoteOut(ctx, "missing", math.NewInt(1)); err != types.ErrPoolNotFound {
		t.Errorf("missing pool err = %v, want ErrPoolNotFound", err)
	}
	if _, err := k.GetQuoteIn(ctx, "bishop-usd", reserve); err != types.ErrInsufficientLiquidity {
		t.Errorf("buy entire reserve err = %v, want ErrInsufficientLiquidity", err)
	}
	if _, err := k.GetBaseIn(ctx, "bishop-usd", reserve.MulRaw(2)); err != types.ErrInsufficientLiquidity {
		t.Errorf("drain quote err = %v, want ErrInsufficientLiquidity", err)
	}
}

func TestQuoteEmptyPool(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	seedPool(t, k, ctx, bank, fundtypes.DenomBishop, math.ZeroInt(), math.ZeroInt())

	if _, err := k.GetQuoteOut(ctx, "bishop-usd", math.NewInt(1000)); err != types.ErrInsufficientLiquidity {
		t.Errorf("empty pool err = %v, want ErrInsufficientLiquidity", err)
	}
}
