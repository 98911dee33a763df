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

	fundtypes "github.com/castleswap/tranche-dex/x/fund/types"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

// mockBank is an in-memory bank keeper for tests
type mockBank struct {
	balances map[string]sdk.Coins
}

func newMockBank() *mockBank {
	return &mockBank{balances: make(map[string]sdk.Coins)}
}

func (m *mockBank) add(addr sdk.AccAddress, amt sdk.Coins) {
	m.balances[addr.String()] = m.balances[addr.String()].Add(amt...)
}

func (m *mockBank) set(addr sdk.AccAddress, amt sdk.Coins) {
	m.balances[addr.String()] = amt
}

func (m *mockBank) SendCoins(_ context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error {
	remaining, negative := m.balances[fromAddr.String()].SafeSub(amt...)
	if negative {
		return types.ErrInsufficientInput
	}
	m.balances[fromAddr.String()] = remaining
	m.add(toAddr, amt)
	return nil
}

func (m *mockBank) GetBalance(_ context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, m.balances[addr.String()].AmountOf(denom))
}

// rebalanceStep mirrors one fund rebalance record for the mock.
type rebalanceStep struct {
	queen         math.LegacyDec
	bishopToQueen math.LegacyDec
	rookToQueen   math.LegacyDec
	bishop        math.LegacyDec
	rook          math.LegacyDec
}

func (s rebalanceStep) apply(q, b, r math.Int) (math.Int, math.Int, math.Int) {
	newQ := s.queen.MulInt(q).Add(s.bishopToQueen.MulInt(b)).Add(s.rookToQueen.MulInt(r)).TruncateInt()
	return newQ, s.bishop.MulInt(b).TruncateInt(), s.rook.MulInt(r).TruncateInt()
}

// mockFund is an in-memory fund keeper for tests. RefreshBalance and Split
// move actual mock bank balances so the escrow flows can be observed.
type mockFund struct {
	bank       *mockBank
	size       uint64
	timestamps map[uint64]int64
	steps      map[uint64]rebalanceStep
	price      math.Int
}

func newMockFund(bank *mockBank) *mockFund {
	return &mockFund{
		bank:       bank,
		timestamps: make(map[uint64]int64),
		steps:      make(map[uint64]rebalanceStep),
		price:      types.UnitInt,
	}
}

func (m *mockFund) GetRebalanceSize(_ sdk.Context) uint64 { return m.size }

func (m *mockFund) GetRebalanceTimestamp(_ sdk.Context, version uint64) int64 {
	return m.timestamps[version]
}

func (m *mockFund) BatchRebalance(_ sdk.Context, q, b, r math.Int, fromVersion, toVersion uint64) (math.Int, math.Int, math.Int, error) {
	if toVersion > m.size || fromVersion > toVersion {
		return math.Int{}, math.Int{}, math.Int{}, fundtypes.ErrVersionOutOfRange
	}
	for v := fromVersion; v < toVersion; v++ {
		q, b, r = m.steps[v].apply(q, b, r)
	}
	return q, b, r, nil
}

func (m *mockFund) RefreshBalance(ctx sdk.Context, addr sdk.AccAddress, fromVersion, toVersion uint64) error {
	q := m.bank.GetBalance(ctx, addr, fundtypes.DenomQueen).Amount
	b := m.bank.GetBalance(ctx, addr, fundtypes.DenomBishop).Amount
	r := m.bank.GetBalance(ctx, addr, fundtypes.DenomRook).Amount
	newQ, newB, newR, err := m.BatchRebalance(ctx, q, b, r, fromVersion, toVersion)
	if err != nil {
		return err
	}
	held := m.bank.balances[addr.String()]
	held, _ = held.SafeSub(sdk.NewCoin(fundtypes.DenomQueen, q), sdk.NewCoin(fundtypes.DenomBishop, b), sdk.NewCoin(fundtypes.DenomRook, r))
	m.bank.set(addr, held.
		Add(sdk.NewCoin(fundtypes.DenomQueen, newQ)).
		Add(sdk.NewCoin(fundtypes.DenomBishop, newB)).
		Add(sdk.NewCoin(fundtypes.DenomRook, newR)))
	return nil
}

func (m *mockFund) Split(ctx sdk.Context, owner sdk.AccAddress, amount math.Int) error {
	held := m.bank.balances[owner.String()]
	remaining, negative := held.SafeSub(sdk.NewCoin(fundtypes.DenomQueen, amount))
	if negative {
		return fundtypes.ErrInsufficientBalance
	}
	m.bank.set(owner, remaining.
		Add(sdk.NewCoin(fundtypes.DenomBishop, amount)).
		Add(sdk.NewCoin(fundtypes.DenomRook, amount)))
	return nil
}

func (m *mockFund) GetOraclePrice(_ sdk.Context) (math.Int, error) {
	if m.price.IsNil() {
		return math.Int{}, fundtypes.ErrOraclePriceNotSet
	}
	return m.price, nil
}

// mockGauge is an in-memory LP ledger for tests.
type mockGauge struct {
	supply      map[string]math.Int
	holdings    map[string]math.Int
	distributed int
	lastVersion uint64
	addr        sdk.AccAddress
}

func newMockGauge() *mockGauge {
	return &mockGauge{
		supply:   make(map[string]math.Int),
		holdings: make(map[string]math.Int),
		addr:     sdk.AccAddress([]byte("gauge_module_addr___")),
	}
}

func (m *mockGauge) key(poolID string, account sdk.AccAddress) string {
	return poolID + "/" + account.String()
}

func (m *mockGauge) balanceOf(poolID string, account sdk.AccAddress) math.Int {
	if bal, ok := m.holdings[m.key(poolID, account)]; ok {
		return bal
	}
	return math.ZeroInt()
}

func (m *mockGauge) Mint(_ sdk.Context, poolID string, account sdk.AccAddress, amount math.Int) error {
	m.supply[poolID] = m.TotalSupply(sdk.Context{}, poolID).Add(amount)
	m.holdings[m.key(poolID, account)] = m.balanceOf(poolID, account).Add(amount)
	return nil
}

func (m *mockGauge) BurnFrom(_ sdk.Context, poolID string, account sdk.AccAddress, amount math.Int) error {
	held := m.balanceOf(poolID, account)
	if held.LT(amount) {
		return types.ErrInsufficientLiquidity
	}
	m.holdings[m.key(poolID, account)] = held.Sub(amount)
	m.supply[poolID] = m.supply[poolID].Sub(amount)
	return nil
}

func (m *mockGauge) TotalSupply(_ sdk.Context, poolID string) math.Int {
	if s, ok := m.supply[poolID]; ok {
		return s
	}
	return math.ZeroInt()
}

func (m *mockGauge) Distribute(_ sdk.Context, poolID string, queen, bishop, rook, quote math.Int, version uint64) error {
	m.distributed++
	m.lastVersion = version
	return nil
}

func (m *mockGauge) ModuleAddress() sdk.AccAddress { return m.addr }

const testAuthority = "authority"

var (
	testOwner    = sdk.AccAddress([]byte("pool_owner_addr_____"))
	testTrader   = sdk.AccAddress([]byte("trader_addr_________"))
	testProvider = sdk.AccAddress([]byte("provider_addr_______"))
)

func setupKeeper(t *testing.T) (*Keeper, *mockFund, *mockGauge, *mockBank, sdk.Context) {
	t.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	ctx := testutil.DefaultContext(storeKey, storetypes.NewTransientStoreKey("transient_test"))
	ctx = ctx.WithBlockTime(time.Unix(1700000000, 0))

	bank := newMockBank()
	fund := newMockFund(bank)
	gauge := newMockGauge()
	k := NewKeeper(nil, storeKey, fund, gauge, bank, testAuthority, log.NewNopLogger())
	return k, fund, gauge, bank, ctx
}

// seedPool creates a pool with the given reserves and funds its escrow to
// match. Fee rates follow the defaults used across the suite.
func seedPool(t *testing.T, k *Keeper, ctx sdk.Context, bank *mockBank, tranche string, base, quote math.Int) *types.Pool {
	t.Helper()

	poolID := tranche + "-usd"
	pool, err := k.CreatePool(ctx, testOwner.String(), poolID, tranche,
		math.NewInt(85),
		math.LegacyMustNewDecFromStr("0.0003"),
		math.LegacyMustNewDecFromStr("0.4"),
		math.LegacyZeroDec(), 0)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	pool.BaseBalance = base
	pool.QuoteBalance = quote
	k.SetPool(ctx, pool)
	bank.add(types.PoolAddress(poolID), sdk.NewCoins(
		sdk.NewCoin(tranche, base),
		sdk.NewCoin(types.DenomQuote, quote),
	))
	return pool
}

func TestCreatePool(t *testing.T) {
	k, _, _, _, ctx := setupKeeper(t)

	pool, err := k.CreatePool(ctx, testOwner.String(), "bishop-usd", fundtypes.DenomBishop,
		math.NewInt(85),
		math.LegacyMustNewDecFromStr("0.0003"),
		math.LegacyMustNewDecFromStr("0.4"),
		math.LegacyMustNewDecFromStr("0.005"), 3600)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if !pool.BaseBalance.IsZero() || !pool.QuoteBalance.IsZero() {
		t.Errorf("new pool reserves = %s/%s, want zero", pool.BaseBalance, pool.QuoteBalance)
	}
	if pool.QuoteDenom != types.DenomQuote {
		t.Errorf("quote denom = %s, want %s", pool.QuoteDenom, types.DenomQuote)
	}
	if got := k.GetPool(ctx, "bishop-usd"); got == nil {
		t.Fatal("pool not persisted")
	}

	if _, err := k.CreatePool(ctx, testOwner.String(), "bishop-usd", fundtypes.DenomBishop,
		math.NewInt(85), math.LegacyZeroDec(), math.LegacyZeroDec(), math.LegacyZeroDec(), 0); err != types.ErrPoolAlreadyExists {
		t.Errorf("duplicate pool err = %v, want ErrPoolAlreadyExists", err)
	}
	if _, err := k.CreatePool(ctx, testOwner.String(), "knight-usd", "knight",
		math.NewInt(85), math.LegacyZeroDec(), math.LegacyZeroDec(), math.LegacyZeroDec(), 0); err != types.ErrUnknownTranche {
		t.Errorf("unknown tranche err = %v, want ErrUnknownTranche", err)
	}
	if _, err := k.CreatePool(ctx, testOwner.String(), "p1", fundtypes.DenomQueen,
		math.ZeroInt(), math.LegacyZeroDec(), math.LegacyZeroDec(), math.LegacyZeroDec(), 0); err != types.ErrInvalidAmpl {
		t.Errorf("zero ampl err = %v, want ErrInvalidAmpl", err)
	}
	if _, err := k.CreatePool(ctx, testOwner.String(), "p2", fundtypes.DenomQueen,
		types.AmplMax, math.LegacyZeroDec(), math.LegacyZeroDec(), math.LegacyZeroDec(), 0); err != types.ErrInvalidAmpl {
		t.Errorf("ampl at max err = %v, want ErrInvalidAmpl", err)
	}
	if _, err := k.CreatePool(ctx, testOwner.String(), "p3", fundtypes.DenomQueen,
		math.NewInt(85), types.MaxFeeRate, math.LegacyZeroDec(), math.LegacyZeroDec(), 0); err != types.ErrInvalidFeeRate {
		t.Errorf("fee at max err = %v, want ErrInvalidFeeRate", err)
	}
	if _, err := k.CreatePool(ctx, testOwner.String(), "p4", fundtypes.DenomQueen,
		math.NewInt(85), math.LegacyZeroDec(), math.LegacyMustNewDecFromStr("1.1"), math.LegacyZeroDec(), 0); err != types.ErrInvalidFeeRate {
		t.Errorf("admin fee above one err = %v, want ErrInvalidFeeRate", err)
	}
}

func TestCreatePoolStartsAtCurrentVersion(t *testing.T) {
	k, fund, _, _, ctx := setupKeeper(t)
	fund.size = 7

	pool, err := k.CreatePool(ctx, testOwner.String(), "queen-usd", fundtypes.DenomQueen,
		math.NewInt(85), math.LegacyZeroDec(), math.LegacyZeroDec(), math.LegacyZeroDec(), 0)
	if err != nil {
		t.Fatalf("CreatePool: %v", err)
	}
	if pool.CurrentVersion != 7 {
		t.Errorf("current version = %d, want 7", pool.CurrentVersion)
	}
}

func TestSetFeeRate(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	unit := math.NewInt(1_000_000)
	seedPool(t, k, ctx, bank, fundtypes.DenomBishop, unit, unit)

	newFee := math.LegacyMustNewDecFromStr("0.001")
	newAdmin := math.LegacyMustNewDecFromStr("0.5")
	if err := k.SetFeeRate(ctx, testOwner.String(), "bishop-usd", newFee, newAdmin); err != nil {
		t.Fatalf("SetFeeRate: %v", err)
	}
	pool := k.GetPool(ctx, "bishop-usd")
	if !pool.FeeRate.Equal(newFee) || !pool.AdminFeeRate.Equal(newAdmin) {
		t.Errorf("rates = %s/%s, want %s/%s", pool.FeeRate, pool.AdminFeeRate, newFee, newAdmin)
	}

	if err := k.SetFeeRate(ctx, testTrader.String(), "bishop-usd", newFee, newAdmin); err != types.ErrUnauthorized {
		t.Errorf("stranger err = %v, want ErrUnauthorized", err)
	}
	if err := k.SetFeeRate(ctx, testAuthority, "bishop-usd", newFee, newAdmin); err != nil {
		t.Errorf("authority SetFeeRate: %v", err)
	}
	if err := k.SetFeeRate(ctx, testOwner.String(), "bishop-usd", types.MaxFeeRate, newAdmin); err != types.ErrInvalidFeeRate {
		t.Errorf("fee at max err = %v, want ErrInvalidFeeRate", err)
	}
	if err := k.SetFeeRate(ctx, testOwner.String(), "missing", newFee, newAdmin); err != types.ErrPoolNotFound {
		t.Errorf("missing pool err = %v, want ErrPoolNotFound", err)
	}
}

func TestRampAmpl(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	unit := math.NewInt(1_000_000)
	seedPool(t, k, ctx, bank, fundtypes.DenomBishop, unit, unit)
	now := ctx.BlockTime().Unix()

	if err := k.RampAmpl(ctx, testOwner.String(), "bishop-usd", math.NewInt(170), now+types.MinRampTime-1); err != types.ErrRampTooShort {
		t.Errorf("short ramp err = %v, want ErrRampTooShort", err)
	}
	if err := k.RampAmpl(ctx, testOwner.String(), "bishop-usd", math.NewInt(851), now+types.MinRampTime); err != types.ErrRampChangeTooLarge {
		t.Errorf("oversized ramp err = %v, want ErrRampChangeTooLarge", err)
	}
	if err := k.RampAmpl(ctx, testOwner.String(), "bishop-usd", math.NewInt(8), now+types.MinRampTime); err != types.ErrRampChangeTooLarge {
		t.Errorf("undersized ramp err = %v, want ErrRampChangeTooLarge", err)
	}
	if err := k.RampAmpl(ctx, testOwner.String(), "bishop-usd", types.AmplMax, now+types.MinRampTime); err != types.ErrInvalidAmpl {
		t.Errorf("target at max err = %v, want ErrInvalidAmpl", err)
	}

	end := now + 2*types.MinRampTime
	if err := k.RampAmpl(ctx, testOwner.String(), "bishop-usd", math.NewInt(170), end); err != nil {
		t.Fatalf("RampAmpl: %v", err)
	}
	pool := k.GetPool(ctx, "bishop-usd")
	if got := pool.CurrentAmpl(now); !got.Equal(math.NewInt(85)) {
		t.Errorf("ampl at start = %s, want 85", got)
	}
	mid := now + types.MinRampTime
	if got := pool.CurrentAmpl(mid); !got.Equal(math.NewInt(127)) {
		t.Errorf("ampl at midpoint = %s, want 127", got)
	}
	if got := pool.CurrentAmpl(end + 1); !got.Equal(math.NewInt(170)) {
		t.Errorf("ampl past end = %s, want 170", got)
	}

	// Freezing mid-ramp pins the interpolated value.
	ctx = ctx.WithBlockTime(time.Unix(mid, 0))
	if err := k.StopRampAmpl(ctx, testOwner.String(), "bishop-usd"); err != nil {
		t.Fatalf("StopRampAmpl: %v", err)
	}
	pool = k.GetPool(ctx, "bishop-usd")
	if got := pool.CurrentAmpl(end + 1000); !got.Equal(math.NewInt(127)) {
		t.Errorf("frozen ampl = %s, want 127", got)
	}
}

func TestCollectFee(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	unit := math.NewInt(1_000_000)
	pool := seedPool(t, k, ctx, bank, fundtypes.DenomBishop, unit, unit)

	if _, err := k.CollectFee(ctx, testOwner.String(), "bishop-usd"); err != types.ErrNothingToCollect {
		t.Errorf("empty collect err = %v, want ErrNothingToCollect", err)
	}

	fee := math.NewInt(5000)
	pool.TotalAdminFee = fee
	k.SetPool(ctx, pool)
	bank.add(types.PoolAddress("bishop-usd"), sdk.NewCoins(sdk.NewCoin(types.DenomQuote, fee)))

	if _, err := k.CollectFee(ctx, testTrader.String(), "bishop-usd"); err != types.ErrUnauthorized {
		t.Errorf("stranger collect err = %v, want ErrUnauthorized", err)
	}
	got, err := k.CollectFee(ctx, testOwner.String(), "bishop-usd")
	if err != nil {
		t.Fatalf("CollectFee: %v", err)
	}
	if !got.Equal(fee) {
		t.Errorf("collected = %s, want %s", got, fee)
	}
	if paid := bank.GetBalance(ctx, testOwner, types.DenomQuote).Amount; !paid.Equal(fee) {
		t.Errorf("owner balance = %s, want %s", paid, fee)
	}
	if pool = k.GetPool(ctx, "bishop-usd"); !pool.TotalAdminFee.IsZero() {
		t.Errorf("remaining admin fee = %s, want 0", pool.TotalAdminFee)
	}
}

func TestSync(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	base := math.NewInt(1_000_000)
	quote := math.NewInt(1_000_000)
	seedPool(t, k, ctx, bank, fundtypes.DenomBishop, base, quote)

	// A donation to the escrow is folded into the reserves.
	donation := math.NewInt(7777)
	bank.add(types.PoolAddress("bishop-usd"), sdk.NewCoins(sdk.NewCoin(types.DenomQuote, donation)))
	if err := k.Sync(ctx, "bishop-usd"); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	pool := k.GetPool(ctx, "bishop-usd")
	if want := quote.Add(donation); !pool.QuoteBalance.Equal(want) {
		t.Errorf("quote balance = %s, want %s", pool.QuoteBalance, want)
	}
	if !pool.BaseBalance.Equal(base) {
		t.Errorf("base balance = %s, want %s", pool.BaseBalance, base)
	}

	// A pool recorded richer than its escrow must not sync.
	pool.QuoteBalance = pool.QuoteBalance.Add(math.NewInt(1))
	k.SetPool(ctx, pool)
	if err := k.Sync(ctx, "bishop-usd"); err != types.ErrInsufficientInput {
		t.Errorf("deficit sync err = %v, want ErrInsufficientInput", err)
	}
}

func TestSkim(t *testing.T) {
	k, _, _, bank, ctx := setupKeeper(t)
	base := math.NewInt(1_000_000)
	quote := math.NewInt(1_000_000)
	seedPool(t, k, ctx, bank, fundtypes.DenomBishop, base, quote)

	if _, err := k.Skim(ctx, testOwner.String(), "bishop-usd"); err != types.ErrNothingToCollect {
		t.Errorf("empty skim err = %v, want ErrNothingToCollect", err)
	}

	baseSurplus := math.NewInt(300)
	quoteSurplus := math.NewInt(7777)
	bank.add(types.PoolAddress("bishop-usd"), sdk.NewCoins(
		sdk.NewCoin(fundtypes.DenomBishop, baseSurplus),
		sdk.NewCoin(types.DenomQuote, quoteSurplus),
	))

	if _, err := k.Skim(ctx, testTrader.String(), "bishop-usd"); err != types.ErrUnauthorized {
		t.Errorf("stranger skim err = %v, want ErrUnauthorized", err)
	}
	got, err := k.Skim(ctx, testOwner.String(), "bishop-usd")
	if err != nil {
		t.Fatalf("Skim: %v", err)
	}
	if want := sdk.NewCoins(
		sdk.NewCoin(fundtypes.DenomBishop, baseSurplus),
		sdk.NewCoin(types.DenomQuote, quoteSurplus),
	); !got.Equal(want) {
		t.Errorf("skimmed = %s, want %s", got, want)
	}
	if paid := bank.GetBalance(ctx, testOwner, types.DenomQuote).Amount; !paid.Equal(quoteSurplus) {
		t.Errorf("owner quote balance = %s, want %s", paid, quoteSurplus)
	}

	// Reserves stay as recorded, only the surplus leaves the escrow.
	pool := k.GetPool(ctx, "bishop-usd")
	if !pool.BaseBalance.Equal(base) || !pool.QuoteBalance.Equal(quote) {
		t.Errorf("reserves = %s/%s, want %s/%s",
			pool.BaseBalance, pool.QuoteBalance, base, quote)
	}
}
