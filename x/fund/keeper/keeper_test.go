package keeper

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/testutil"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/fund/types"
)

// mockBank is an in-memory bank keeper for tests
type mockBank struct {
	balances map[string]sdk.Coins
}

func newMockBank() *mockBank {
	return &mockBank{balances: make(map[string]sdk.Coins)}
}

func (m *mockBank) moduleKey(name string) string { return "module:" + name }

func (m *mockBank) add(key string, amt sdk.Coins) {
	m.balances[key] = m.balances[key].Add(amt...)
}

func (m *mockBank) sub(key string, amt sdk.Coins) error {
	current := m.balances[key]
	remaining, negative := current.SafeSub(amt...)
	if negative {
		return types.ErrZeroAmount
	}
	m.balances[key] = remaining
	return nil
}

func (m *mockBank) MintCoins(_ context.Context, moduleName string, amt sdk.Coins) error {
	m.add(m.moduleKey(moduleName), amt)
	return nil
}

func (m *mockBank) BurnCoins(_ context.Context, moduleName string, amt sdk.Coins) error {
	return m.sub(m.moduleKey(moduleName), amt)
}

func (m *mockBank) SendCoinsFromAccountToModule(_ context.Context, sender sdk.AccAddress, recipientModule string, amt sdk.Coins) error {
	if err := m.sub(sender.String(), amt); err != nil {
		return err
	}
	m.add(m.moduleKey(recipientModule), amt)
	return nil
}

func (m *mockBank) SendCoinsFromModuleToAccount(_ context.Context, senderModule string, recipient sdk.AccAddress, amt sdk.Coins) error {
	if err := m.sub(m.moduleKey(senderModule), amt); err != nil {
		return err
	}
	m.add(recipient.String(), amt)
	return nil
}

func (m *mockBank) GetBalance(_ context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, m.balances[addr.String()].AmountOf(denom))
}

func setupKeeper(t *testing.T) (*Keeper, *mockBank, sdk.Context) {
	t.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	ctx := testutil.DefaultContext(storeKey, storetypes.NewTransientStoreKey("transient_test"))
	ctx = ctx.WithBlockTime(time.Unix(1700000000, 0))

	bank := newMockBank()
	k := NewKeeper(nil, storeKey, bank, "authority", log.NewNopLogger())
	return k, bank, ctx
}

func identityRecord() types.RebalanceRecord {
	return types.RebalanceRecord{
		RatioQueen:         math.LegacyOneDec(),
		RatioTranche:       math.LegacyOneDec(),
		RatioBishopToQueen: math.LegacyZeroDec(),
		RatioRookToQueen:   math.LegacyZeroDec(),
	}
}

// TestAddRebalance tests appending rebalance records to the ledger
func TestAddRebalance(t *testing.T) {
	k, _, ctx := setupKeeper(t)

	if size := k.GetRebalanceSize(ctx); size != 0 {
		t.Fatalf("expected empty ledger, got size %d", size)
	}

	version, err := k.AddRebalance(ctx, identityRecord())
	if err != nil {
		t.Fatalf("AddRebalance failed: %v", err)
	}
	if version != 0 {
		t.Errorf("expected version 0, got %d", version)
	}
	if size := k.GetRebalanceSize(ctx); size != 1 {
		t.Errorf("expected size 1, got %d", size)
	}

	record, err := k.GetRebalance(ctx, 0)
	if err != nil {
		t.Fatalf("GetRebalance failed: %v", err)
	}
	if !record.RatioQueen.Equal(math.LegacyOneDec()) {
		t.Errorf("expected ratio queen 1, got %s", record.RatioQueen)
	}
	if record.Timestamp != ctx.BlockTime().Unix() {
		t.Errorf("expected timestamp %d, got %d", ctx.BlockTime().Unix(), record.Timestamp)
	}

	if _, err := k.GetRebalance(ctx, 1); err == nil {
		t.Error("expected error for out-of-range version")
	}
}

// TestAddRebalanceRejectsInvalidRatio tests ratio validation
func TestAddRebalanceRejectsInvalidRatio(t *testing.T) {
	k, _, ctx := setupKeeper(t)

	record := identityRecord()
	record.RatioQueen = math.LegacyZeroDec()
	if _, err := k.AddRebalance(ctx, record); err == nil {
		t.Error("expected error for zero queen ratio")
	}

	record = identityRecord()
	record.RatioTranche = math.LegacyNewDec(-1)
	if _, err := k.AddRebalance(ctx, record); err == nil {
		t.Error("expected error for negative tranche ratio")
	}
}

// TestApplyRebalance tests the single-step holding transform
func TestApplyRebalance(t *testing.T) {
	record := types.RebalanceRecord{
		RatioQueen:         math.LegacyNewDec(2),
		RatioTranche:       math.LegacyMustNewDecFromStr("0.5"),
		RatioBishopToQueen: math.LegacyMustNewDecFromStr("0.1"),
		RatioRookToQueen:   math.LegacyZeroDec(),
	}

	q, b, r := ApplyRebalance(&record, math.NewInt(100), math.NewInt(50), math.NewInt(10))

	// 2*100 + 0.1*50 + 0*10
	if !q.Equal(math.NewInt(205)) {
		t.Errorf("expected queen 205, got %s", q)
	}
	if !b.Equal(math.NewInt(25)) {
		t.Errorf("expected bishop 25, got %s", b)
	}
	if !r.Equal(math.NewInt(5)) {
		t.Errorf("expected rook 5, got %s", r)
	}
}

// TestBatchRebalance tests folding across a version range
func TestBatchRebalance(t *testing.T) {
	k, _, ctx := setupKeeper(t)

	if _, err := k.AddRebalance(ctx, identityRecord()); err != nil {
		t.Fatalf("AddRebalance failed: %v", err)
	}
	halving := identityRecord()
	halving.RatioTranche = math.LegacyMustNewDecFromStr("0.5")
	if _, err := k.AddRebalance(ctx, halving); err != nil {
		t.Fatalf("AddRebalance failed: %v", err)
	}

	q, b, r, err := k.BatchRebalance(ctx, math.NewInt(100), math.NewInt(100), math.NewInt(100), 0, 2)
	if err != nil {
		t.Fatalf("BatchRebalance failed: %v", err)
	}
	if !q.Equal(math.NewInt(100)) {
		t.Errorf("expected queen 100, got %s", q)
	}
	if !b.Equal(math.NewInt(50)) || !r.Equal(math.NewInt(50)) {
		t.Errorf("expected tranches 50/50, got %s/%s", b, r)
	}

	// Empty range is a no-op
	q, b, r, err = k.BatchRebalance(ctx, math.NewInt(7), math.NewInt(7), math.NewInt(7), 1, 1)
	if err != nil {
		t.Fatalf("BatchRebalance failed: %v", err)
	}
	if !q.Equal(math.NewInt(7)) || !b.Equal(math.NewInt(7)) || !r.Equal(math.NewInt(7)) {
		t.Error("expected empty range to preserve holdings")
	}

	// Target version beyond the ledger
	if _, _, _, err := k.BatchRebalance(ctx, math.NewInt(1), math.NewInt(1), math.NewInt(1), 0, 3); err == nil {
		t.Error("expected error for version beyond ledger")
	}
}

// TestSplitMerge tests the QUEEN <-> BISHOP/ROOK round trip
func TestCreateRedeem(t *testing.T) {
	k, bank, ctx := setupKeeper(t)
	owner := sdk.AccAddress("owner_______________")

	amount := math.NewInt(1000)
	bank.add(owner.String(), sdk.NewCoins(sdk.NewCoin(types.DenomUnderlying, amount)))

	// Creation needs a live oracle price.
	if err := k.Create(ctx, owner, amount); err != types.ErrOraclePriceNotSet {
		t.Errorf("create without oracle err = %v, want ErrOraclePriceNotSet", err)
	}
	if err := k.SetOraclePrice(ctx, math.NewIntWithDecimal(1, 18)); err != nil {
		t.Fatalf("SetOraclePrice failed: %v", err)
	}

	if err := k.Create(ctx, owner, amount); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got := bank.GetBalance(ctx, owner, types.DenomQueen).Amount; !got.Equal(amount) {
		t.Errorf("expected %s queen after create, got %s", amount, got)
	}
	if got := bank.GetBalance(ctx, owner, types.DenomUnderlying).Amount; !got.IsZero() {
		t.Errorf("expected no underlying after create, got %s", got)
	}

	half := amount.QuoRaw(2)
	if err := k.Redeem(ctx, owner, half); err != nil {
		t.Fatalf("Redeem failed: %v", err)
	}
	if got := bank.GetBalance(ctx, owner, types.DenomUnderlying).Amount; !got.Equal(half) {
		t.Errorf("expected %s underlying after redeem, got %s", half, got)
	}
	if got := bank.GetBalance(ctx, owner, types.DenomQueen).Amount; !got.Equal(half) {
		t.Errorf("expected %s queen left, got %s", half, got)
	}

	if err := k.Create(ctx, owner, math.ZeroInt()); err != types.ErrZeroAmount {
		t.Errorf("zero create err = %v, want ErrZeroAmount", err)
	}
	if err := k.Redeem(ctx, owner, amount); err == nil {
		t.Error("expected error for redeem beyond balance")
	}
}

func TestSplitMerge(t *testing.T) {
	k, bank, ctx := setupKeeper(t)
	owner := sdk.AccAddress("owner_______________")

	amount := math.NewInt(1000)
	bank.add(owner.String(), sdk.NewCoins(sdk.NewCoin(types.DenomQueen, amount)))

	if err := k.Split(ctx, owner, amount); err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if got := bank.GetBalance(ctx, owner, types.DenomQueen).Amount; !got.IsZero() {
		t.Errorf("expected no queen after split, got %s", got)
	}
	if got := bank.GetBalance(ctx, owner, types.DenomBishop).Amount; !got.Equal(amount) {
		t.Errorf("expected %s bishop, got %s", amount, got)
	}
	if got := bank.GetBalance(ctx, owner, types.DenomRook).Amount; !got.Equal(amount) {
		t.Errorf("expected %s rook, got %s", amount, got)
	}

	if err := k.Merge(ctx, owner, amount); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if got := bank.GetBalance(ctx, owner, types.DenomQueen).Amount; !got.Equal(amount) {
		t.Errorf("expected %s queen after merge, got %s", amount, got)
	}

	if err := k.Split(ctx, owner, math.ZeroInt()); err == nil {
		t.Error("expected error for zero split")
	}
	if err := k.Split(ctx, owner, amount.MulRaw(2)); err == nil {
		t.Error("expected error for split beyond balance")
	}
}

// TestExtrapolateNav tests NAV derivation from the underlying price
func TestExtrapolateNav(t *testing.T) {
	k, _, ctx := setupKeeper(t)
	unit := math.NewIntWithDecimal(1, 18)

	navs := k.ExtrapolateNav(ctx, unit)
	if !navs.Queen.Equal(unit) || !navs.Bishop.Equal(unit) || !navs.Rook.Equal(unit) {
		t.Errorf("expected all NAVs at par, got %s/%s/%s", navs.Queen, navs.Bishop, navs.Rook)
	}

	// Above par the rook is levered two to one
	price := unit.MulRaw(3).QuoRaw(2)
	navs = k.ExtrapolateNav(ctx, price)
	if !navs.Rook.Equal(unit.MulRaw(2)) {
		t.Errorf("expected rook NAV 2e18, got %s", navs.Rook)
	}

	// Deep drawdown floors the rook at zero
	navs = k.ExtrapolateNav(ctx, unit.QuoRaw(4))
	if !navs.Rook.IsZero() {
		t.Errorf("expected rook NAV 0, got %s", navs.Rook)
	}
	if !navs.Bishop.Equal(unit) {
		t.Errorf("expected bishop NAV at par, got %s", navs.Bishop)
	}
}

// TestRefreshBalance tests physically converting an account across versions
func TestRefreshBalance(t *testing.T) {
	k, bank, ctx := setupKeeper(t)
	addr := sdk.AccAddress("escrow______________")

	halving := identityRecord()
	halving.RatioTranche = math.LegacyMustNewDecFromStr("0.5")
	halving.RatioBishopToQueen = math.LegacyMustNewDecFromStr("0.25")
	if _, err := k.AddRebalance(ctx, halving); err != nil {
		t.Fatalf("AddRebalance failed: %v", err)
	}

	bank.add(addr.String(), sdk.NewCoins(
		sdk.NewCoin(types.DenomQueen, math.NewInt(100)),
		sdk.NewCoin(types.DenomBishop, math.NewInt(200)),
		sdk.NewCoin(types.DenomRook, math.NewInt(200)),
	))

	if err := k.RefreshBalance(ctx, addr, 0, 1); err != nil {
		t.Fatalf("RefreshBalance failed: %v", err)
	}

	// queen: 100 + 0.25*200 = 150, tranches: 0.5*200 = 100
	if got := bank.GetBalance(ctx, addr, types.DenomQueen).Amount; !got.Equal(math.NewInt(150)) {
		t.Errorf("expected 150 queen, got %s", got)
	}
	if got := bank.GetBalance(ctx, addr, types.DenomBishop).Amount; !got.Equal(math.NewInt(100)) {
		t.Errorf("expected 100 bishop, got %s", got)
	}
	if got := bank.GetBalance(ctx, addr, types.DenomRook).Amount; !got.Equal(math.NewInt(100)) {
		t.Errorf("expected 100 rook, got %s", got)
	}
}

// TestOraclePrice tests the TWAP price store round trip
func TestOraclePrice(t *testing.T) {
	k, _, ctx := setupKeeper(t)

	if _, err := k.GetOraclePrice(ctx); err == nil {
		t.Error("expected error before price is set")
	}

	price := math.NewIntWithDecimal(1, 18)
	if err := k.SetOraclePrice(ctx, price); err != nil {
		t.Fatalf("SetOraclePrice failed: %v", err)
	}
	got, err := k.GetOraclePrice(ctx)
	if err != nil {
		t.Fatalf("GetOraclePrice failed: %v", err)
	}
	if !got.Equal(price) {
		t.Errorf("expected price %s, got %s", price, got)
	}

	if err := k.SetOraclePrice(ctx, math.ZeroInt()); err == nil {
		t.Error("expected error for zero price")
	}
}
