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
	"github.com/castleswap/tranche-dex/x/gauge/types"
)

// mockBank is an in-memory bank keeper for tests
type mockBank struct {
	balances map[string]sdk.Coins
	minted   sdk.Coins
}

func newMockBank() *mockBank {
	return &mockBank{balances: make(map[string]sdk.Coins)}
}

func (m *mockBank) moduleKey(name string) string { return "module:" + name }

func (m *mockBank) MintCoins(_ context.Context, moduleName string, amt sdk.Coins) error {
	m.minted = m.minted.Add(amt...)
	m.balances[m.moduleKey(moduleName)] = m.balances[m.moduleKey(moduleName)].Add(amt...)
	return nil
}

func (m *mockBank) SendCoinsFromModuleToAccount(_ context.Context, senderModule string, recipient sdk.AccAddress, amt sdk.Coins) error {
	remaining, negative := m.balances[m.moduleKey(senderModule)].SafeSub(amt...)
	if negative {
		return types.ErrInsufficientBalance
	}
	m.balances[m.moduleKey(senderModule)] = remaining
	m.balances[recipient.String()] = m.balances[recipient.String()].Add(amt...)
	return nil
}

func (m *mockBank) GetBalance(_ context.Context, addr sdk.AccAddress, denom string) sdk.Coin {
	return sdk.NewCoin(denom, m.balances[addr.String()].AmountOf(denom))
}

// fundModule returns the gauge module account's balance for assertions.
func (m *mockBank) fundModule(amt sdk.Coins) {
	m.balances[m.moduleKey(types.ModuleName)] = m.balances[m.moduleKey(types.ModuleName)].Add(amt...)
}

// rebalanceStep mirrors one fund rebalance record for the mock. A missing
// step is the identity transform.
type rebalanceStep struct {
	queen         math.LegacyDec
	bishopToQueen math.LegacyDec
	rookToQueen   math.LegacyDec
	bishop        math.LegacyDec
	rook          math.LegacyDec
}

type mockFund struct {
	size  uint64
	steps map[uint64]rebalanceStep
}

func newMockFund() *mockFund {
	return &mockFund{steps: make(map[uint64]rebalanceStep)}
}

func (m *mockFund) GetRebalanceSize(_ sdk.Context) uint64 { return m.size }

func (m *mockFund) BatchRebalance(_ sdk.Context, q, b, r math.Int, fromVersion, toVersion uint64) (math.Int, math.Int, math.Int, error) {
	for v := fromVersion; v < toVersion; v++ {
		s, ok := m.steps[v]
		if !ok {
			continue
		}
		newQ := s.queen.MulInt(q).Add(s.bishopToQueen.MulInt(b)).Add(s.rookToQueen.MulInt(r)).TruncateInt()
		q, b, r = newQ, s.bishop.MulInt(b).TruncateInt(), s.rook.MulInt(r).TruncateInt()
	}
	return q, b, r, nil
}

// mockEscrow is an in-memory voting escrow for tests
type mockEscrow struct {
	locked map[string]math.Int
	total  math.Int
}

func (m *mockEscrow) BalanceOf(_ sdk.Context, addr sdk.AccAddress) math.Int {
	if bal, ok := m.locked[addr.String()]; ok {
		return bal
	}
	return math.ZeroInt()
}

func (m *mockEscrow) TotalLocked(_ sdk.Context) math.Int { return m.total }

var (
	alice = sdk.AccAddress([]byte("alice_address_______"))
	bob   = sdk.AccAddress([]byte("bob_address_________"))
)

const baseTime = int64(1700000000)

func setupKeeper(t *testing.T, fund *mockFund, escrow VotingEscrow, schedule types.EmissionSchedule) (*Keeper, *mockBank, sdk.Context) {
	t.Helper()

	storeKey := storetypes.NewKVStoreKey(types.StoreKey)
	ctx := testutil.DefaultContext(storeKey, storetypes.NewTransientStoreKey("transient_test"))
	ctx = ctx.WithBlockTime(time.Unix(baseTime, 0))

	bank := newMockBank()
	k := NewKeeper(nil, storeKey, bank, fund, escrow, schedule, "authority", log.NewNopLogger())
	return k, bank, ctx
}

func TestMintBurn(t *testing.T) {
	k, _, ctx := setupKeeper(t, newMockFund(), nil, nil)

	if err := k.Mint(ctx, "bishop-usd", alice, math.NewInt(100)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if got := k.TotalSupply(ctx, "bishop-usd"); !got.Equal(math.NewInt(100)) {
		t.Errorf("supply = %s, want 100", got)
	}
	if got := k.Balance(ctx, "bishop-usd", alice); !got.Equal(math.NewInt(100)) {
		t.Errorf("balance = %s, want 100", got)
	}
	// Without an escrow the working balance equals the share balance.
	if got := k.GetUserState(ctx, "bishop-usd", alice).WorkingBalance; !got.Equal(math.NewInt(100)) {
		t.Errorf("working balance = %s, want 100", got)
	}

	if err := k.BurnFrom(ctx, "bishop-usd", alice, math.NewInt(40)); err != nil {
		t.Fatalf("BurnFrom: %v", err)
	}
	if got := k.Balance(ctx, "bishop-usd", alice); !got.Equal(math.NewInt(60)) {
		t.Errorf("balance after burn = %s, want 60", got)
	}
	if err := k.BurnFrom(ctx, "bishop-usd", alice, math.NewInt(61)); err != types.ErrInsufficientBalance {
		t.Errorf("overburn err = %v, want ErrInsufficientBalance", err)
	}
	if err := k.Mint(ctx, "bishop-usd", alice, math.ZeroInt()); err != types.ErrZeroAmount {
		t.Errorf("zero mint err = %v, want ErrZeroAmount", err)
	}
	// Supplies are tracked per pool.
	if got := k.TotalSupply(ctx, "rook-usd"); !got.IsZero() {
		t.Errorf("untouched pool supply = %s, want 0", got)
	}
}

func TestRewardAccrual(t *testing.T) {
	schedule := types.HalvingSchedule{
		StartTimestamp: baseTime,
		InitialRate:    math.NewInt(1000),
		HalvingWeeks:   52,
		MaxHalvings:    10,
	}
	k, bank, ctx := setupKeeper(t, newMockFund(), nil, schedule)

	if err := k.Mint(ctx, "bishop-usd", alice, math.NewInt(100)); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// The sole LP earns the full emission over the hour.
	ctx = ctx.WithBlockTime(time.Unix(baseTime+3600, 0))
	result, err := k.Claim(ctx, "bishop-usd", alice)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	want := math.NewInt(3_600_000)
	if !result.Reward.Equal(want) {
		t.Errorf("reward = %s, want %s", result.Reward, want)
	}
	if got := bank.GetBalance(ctx, alice, types.DenomReward).Amount; !got.Equal(want) {
		t.Errorf("paid reward = %s, want %s", got, want)
	}
	if !bank.minted.AmountOf(types.DenomReward).Equal(want) {
		t.Errorf("minted = %s, want %s", bank.minted, want)
	}

	// Nothing more accrues at the same block time.
	if _, err := k.Claim(ctx, "bishop-usd", alice); err != types.ErrNothingToClaim {
		t.Errorf("repeat claim err = %v, want ErrNothingToClaim", err)
	}
}

func TestRewardSplitsByWorkingBalance(t *testing.T) {
	schedule := types.HalvingSchedule{
		StartTimestamp: baseTime,
		InitialRate:    math.NewInt(1000),
		HalvingWeeks:   52,
		MaxHalvings:    10,
	}
	k, _, ctx := setupKeeper(t, newMockFund(), nil, schedule)

	if err := k.Mint(ctx, "bishop-usd", alice, math.NewInt(300)); err != nil {
		t.Fatalf("Mint alice: %v", err)
	}
	if err := k.Mint(ctx, "bishop-usd", bob, math.NewInt(100)); err != nil {
		t.Fatalf("Mint bob: %v", err)
	}

	ctx = ctx.WithBlockTime(time.Unix(baseTime+4000, 0))
	aliceResult, err := k.Claim(ctx, "bishop-usd", alice)
	if err != nil {
		t.Fatalf("Claim alice: %v", err)
	}
	bobResult, err := k.Claim(ctx, "bishop-usd", bob)
	if err != nil {
		t.Fatalf("Claim bob: %v", err)
	}
	if !aliceResult.Reward.Equal(bobResult.Reward.MulRaw(3)) {
		t.Errorf("alice %s vs bob %s, want a 3:1 split", aliceResult.Reward, bobResult.Reward)
	}
	total := aliceResult.Reward.Add(bobResult.Reward)
	if want := math.NewInt(4_000_000); !total.Equal(want) {
		t.Errorf("total rewards = %s, want %s", total, want)
	}
}

func TestBoostCapsAtMax(t *testing.T) {
	escrow := &mockEscrow{
		locked: map[string]math.Int{alice.String(): math.NewInt(1000)},
		total:  math.NewInt(1000),
	}
	k, _, ctx := setupKeeper(t, newMockFund(), escrow, nil)

	if err := k.Mint(ctx, "bishop-usd", bob, math.NewInt(100)); err != nil {
		t.Fatalf("Mint bob: %v", err)
	}
	if err := k.Mint(ctx, "bishop-usd", alice, math.NewInt(100)); err != nil {
		t.Fatalf("Mint alice: %v", err)
	}

	// Bob holds no escrow and earns at base weight.
	if got := k.GetUserState(ctx, "bishop-usd", bob).WorkingBalance; !got.Equal(math.NewInt(100)) {
		t.Errorf("bob working = %s, want 100", got)
	}
	// Alice holds the whole escrow but the boost tops out at MaxBoost.
	wantAlice := math.NewInt(100).Mul(types.MaxBoost)
	if got := k.GetUserState(ctx, "bishop-usd", alice).WorkingBalance; !got.Equal(wantAlice) {
		t.Errorf("alice working = %s, want %s", got, wantAlice)
	}
	g := k.GetGlobalState(ctx, "bishop-usd")
	if want := wantAlice.AddRaw(100); !g.WorkingSupply.Equal(want) {
		t.Errorf("working supply = %s, want %s", g.WorkingSupply, want)
	}
}

func TestBonusProgram(t *testing.T) {
	k, bank, ctx := setupKeeper(t, newMockFund(), nil, nil)

	if err := k.Mint(ctx, "bishop-usd", alice, math.NewInt(100)); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	bonus := math.NewInt(7000)
	bank.fundModule(sdk.NewCoins(sdk.NewCoin(types.DenomBonus, bonus)))
	if err := k.NotifyBonus(ctx, "bishop-usd", bonus, 7000); err != nil {
		t.Fatalf("NotifyBonus: %v", err)
	}
	if err := k.NotifyBonus(ctx, "bishop-usd", bonus, 7000); err != types.ErrBonusPeriodActive {
		t.Errorf("overlapping program err = %v, want ErrBonusPeriodActive", err)
	}

	// Accrual stops at the period end even if the claim comes later.
	ctx = ctx.WithBlockTime(time.Unix(baseTime+10_000, 0))
	result, err := k.Claim(ctx, "bishop-usd", alice)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if !result.Bonus.Equal(bonus) {
		t.Errorf("bonus = %s, want %s", result.Bonus, bonus)
	}
	if got := bank.GetBalance(ctx, alice, types.DenomBonus).Amount; !got.Equal(bonus) {
		t.Errorf("paid bonus = %s, want %s", got, bonus)
	}

	// A new program may start once the previous one lapsed.
	bank.fundModule(sdk.NewCoins(sdk.NewCoin(types.DenomBonus, bonus)))
	if err := k.NotifyBonus(ctx, "bishop-usd", bonus, 7000); err != nil {
		t.Errorf("follow-up NotifyBonus: %v", err)
	}
}

func TestNotifyBonusValidation(t *testing.T) {
	k, _, ctx := setupKeeper(t, newMockFund(), nil, nil)

	if err := k.NotifyBonus(ctx, "bishop-usd", math.ZeroInt(), 7000); err != types.ErrZeroAmount {
		t.Errorf("zero amount err = %v, want ErrZeroAmount", err)
	}
	if err := k.NotifyBonus(ctx, "bishop-usd", math.NewInt(7000), 0); err != types.ErrZeroAmount {
		t.Errorf("zero duration err = %v, want ErrZeroAmount", err)
	}
}

func TestDistributionReplay(t *testing.T) {
	fund := newMockFund()
	k, bank, ctx := setupKeeper(t, fund, nil, nil)

	if err := k.Mint(ctx, "bishop-usd", alice, math.NewInt(100)); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// First rebalance pays 100 BISHOP and 400 quote to 100 LP shares.
	fund.size = 1
	if err := k.Distribute(ctx, "bishop-usd", math.ZeroInt(), math.NewInt(100), math.ZeroInt(), math.NewInt(400), 1); err != nil {
		t.Fatalf("Distribute v1: %v", err)
	}
	// Second rebalance halves BISHOP holdings and pays another 50.
	fund.size = 2
	fund.steps[1] = rebalanceStep{
		queen:         math.LegacyOneDec(),
		bishopToQueen: math.LegacyZeroDec(),
		rookToQueen:   math.LegacyZeroDec(),
		bishop:        math.LegacyMustNewDecFromStr("0.5"),
		rook:          math.LegacyOneDec(),
	}
	if err := k.Distribute(ctx, "bishop-usd", math.ZeroInt(), math.NewInt(50), math.ZeroInt(), math.ZeroInt(), 2); err != nil {
		t.Fatalf("Distribute v2: %v", err)
	}

	bank.fundModule(sdk.NewCoins(
		sdk.NewCoin(fundtypes.DenomBishop, math.NewInt(150)),
		sdk.NewCoin("usd", math.NewInt(400)),
	))

	// The v1 share is re-denominated through the v1->v2 step before the
	// v2 share lands: 100 -> 50, plus 50.
	result, err := k.Claim(ctx, "bishop-usd", alice)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if !result.Bishop.Equal(math.NewInt(100)) {
		t.Errorf("bishop = %s, want 100", result.Bishop)
	}
	if !result.Quote.Equal(math.NewInt(400)) {
		t.Errorf("quote = %s, want 400", result.Quote)
	}
	if got := bank.GetBalance(ctx, alice, fundtypes.DenomBishop).Amount; !got.Equal(math.NewInt(100)) {
		t.Errorf("paid bishop = %s, want 100", got)
	}

	user := k.GetUserState(ctx, "bishop-usd", alice)
	if user.Version != 2 {
		t.Errorf("user version = %d, want 2", user.Version)
	}
	if !user.PendingBishop.IsZero() {
		t.Errorf("pending bishop after claim = %s, want 0", user.PendingBishop)
	}
}

func TestDistributionRollback(t *testing.T) {
	fund := newMockFund()
	k, _, ctx := setupKeeper(t, fund, nil, nil)

	if err := k.Mint(ctx, "bishop-usd", alice, math.NewInt(1000)); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	// A distribution recorded on a discarded branch of the multistore
	// must leave no trace behind.
	fund.size = 1
	cacheCtx, _ := ctx.CacheContext()
	if err := k.Distribute(cacheCtx, "bishop-usd", math.ZeroInt(), math.NewInt(500), math.ZeroInt(), math.ZeroInt(), 1); err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if dist := k.GetDistribution(cacheCtx, "bishop-usd", 1); dist == nil {
		t.Fatal("distribution not visible on its own branch")
	}
	if dist := k.GetDistribution(ctx, "bishop-usd", 1); dist != nil {
		t.Errorf("discarded distribution still served: %+v", dist)
	}

	// The replay walk over the committed state credits nothing.
	if _, err := k.Claim(ctx, "bishop-usd", alice); err != types.ErrNothingToClaim {
		t.Errorf("claim err = %v, want ErrNothingToClaim", err)
	}
	user := k.GetUserState(ctx, "bishop-usd", alice)
	if !user.PendingBishop.IsZero() {
		t.Errorf("pending bishop = %s, want 0", user.PendingBishop)
	}
}

func TestDistributionProRata(t *testing.T) {
	fund := newMockFund()
	k, bank, ctx := setupKeeper(t, fund, nil, nil)

	if err := k.Mint(ctx, "bishop-usd", alice, math.NewInt(300)); err != nil {
		t.Fatalf("Mint alice: %v", err)
	}
	if err := k.Mint(ctx, "bishop-usd", bob, math.NewInt(100)); err != nil {
		t.Fatalf("Mint bob: %v", err)
	}

	fund.size = 1
	if err := k.Distribute(ctx, "bishop-usd", math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), math.NewInt(1000), 1); err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	bank.fundModule(sdk.NewCoins(sdk.NewCoin("usd", math.NewInt(1000))))

	aliceResult, err := k.Claim(ctx, "bishop-usd", alice)
	if err != nil {
		t.Fatalf("Claim alice: %v", err)
	}
	bobResult, err := k.Claim(ctx, "bishop-usd", bob)
	if err != nil {
		t.Fatalf("Claim bob: %v", err)
	}
	if !aliceResult.Quote.Equal(math.NewInt(750)) {
		t.Errorf("alice quote = %s, want 750", aliceResult.Quote)
	}
	if !bobResult.Quote.Equal(math.NewInt(250)) {
		t.Errorf("bob quote = %s, want 250", bobResult.Quote)
	}
}

func TestDistributeRejectsNegative(t *testing.T) {
	k, _, ctx := setupKeeper(t, newMockFund(), nil, nil)

	err := k.Distribute(ctx, "bishop-usd", math.NewInt(-1), math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), 1)
	if err != types.ErrInvalidDistribution {
		t.Errorf("err = %v, want ErrInvalidDistribution", err)
	}
}
