package keeper

import (
	"context"
	"encoding/json"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"

	"github.com/castleswap/tranche-dex/x/gauge/types"
)

// Store key prefixes
var (
	GlobalKeyPrefix       = []byte{0x01}
	UserKeyPrefix         = []byte{0x02}
	DistributionKeyPrefix = []byte{0x03}
)

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// FundKeeper defines the expected interface for the fund module
type FundKeeper interface {
	GetRebalanceSize(ctx sdk.Context) uint64
	BatchRebalance(ctx sdk.Context, q, b, r math.Int, fromVersion, toVersion uint64) (math.Int, math.Int, math.Int, error)
}

// VotingEscrow reports locked governance token balances used to boost
// working balances. A nil escrow means no boost for anyone.
type VotingEscrow interface {
	BalanceOf(ctx sdk.Context, addr sdk.AccAddress) math.Int
	TotalLocked(ctx sdk.Context) math.Int
}

// Keeper manages LP share accounting, reward emission and rebalance
// distributions for every pool gauge.
type Keeper struct {
	cdc          codec.BinaryCodec
	storeKey     storetypes.StoreKey
	bankKeeper   BankKeeper
	fundKeeper   FundKeeper
	votingEscrow VotingEscrow
	schedule     types.EmissionSchedule
	logger       log.Logger
	authority    string
}

// NewKeeper creates a new gauge keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	bankKeeper BankKeeper,
	fundKeeper FundKeeper,
	votingEscrow VotingEscrow,
	schedule types.EmissionSchedule,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:          cdc,
		storeKey:     storeKey,
		bankKeeper:   bankKeeper,
		fundKeeper:   fundKeeper,
		votingEscrow: votingEscrow,
		schedule:     schedule,
		authority:    authority,
		logger:       logger.With("module", "x/gauge"),
	}
}

// Logger returns the module logger
func (k *Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the governance authority address
func (k *Keeper) GetAuthority() string {
	return k.authority
}

// ModuleAddress returns the gauge module account address, which escrows
// rebalance distributions and bonus tokens.
func (k *Keeper) ModuleAddress() sdk.AccAddress {
	return authtypes.NewModuleAddress(types.ModuleName)
}

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

func globalKey(poolID string) []byte {
	return append(GlobalKeyPrefix, []byte(poolID)...)
}

func userKey(poolID string, addr sdk.AccAddress) []byte {
	key := append(UserKeyPrefix, []byte(poolID)...)
	key = append(key, '/')
	return append(key, addr.Bytes()...)
}

// GetGlobalState loads a pool's reward snapshot, creating an empty one
// anchored at the current block time if none exists.
func (k *Keeper) GetGlobalState(ctx sdk.Context, poolID string) *types.GlobalState {
	store := k.GetStore(ctx)
	bz := store.Get(globalKey(poolID))
	if bz == nil {
		return types.NewGlobalState(ctx.BlockTime().Unix())
	}
	var g types.GlobalState
	if err := json.Unmarshal(bz, &g); err != nil {
		return types.NewGlobalState(ctx.BlockTime().Unix())
	}
	return &g
}

// SetGlobalState saves a pool's reward snapshot
func (k *Keeper) SetGlobalState(ctx sdk.Context, poolID string, g *types.GlobalState) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(g)
	store.Set(globalKey(poolID), bz)
}

// GetUserState loads an account's gauge position, creating an empty one at
// the current rebalance version if none exists.
func (k *Keeper) GetUserState(ctx sdk.Context, poolID string, addr sdk.AccAddress) *types.UserState {
	store := k.GetStore(ctx)
	bz := store.Get(userKey(poolID, addr))
	if bz == nil {
		return types.NewUserState(k.fundKeeper.GetRebalanceSize(ctx))
	}
	var u types.UserState
	if err := json.Unmarshal(bz, &u); err != nil {
		return types.NewUserState(k.fundKeeper.GetRebalanceSize(ctx))
	}
	return &u
}

// SetUserState saves an account's gauge position
func (k *Keeper) SetUserState(ctx sdk.Context, poolID string, addr sdk.AccAddress, u *types.UserState) {
	store := k.GetStore(ctx)
	bz, _ := json.Marshal(u)
	store.Set(userKey(poolID, addr), bz)
}

// TotalSupply returns a pool's LP share supply
func (k *Keeper) TotalSupply(ctx sdk.Context, poolID string) math.Int {
	return k.GetGlobalState(ctx, poolID).TotalSupply
}

// Balance returns an account's LP share balance in a pool
func (k *Keeper) Balance(ctx sdk.Context, poolID string, addr sdk.AccAddress) math.Int {
	return k.GetUserState(ctx, poolID, addr).Balance
}

// updateWorking recomputes an account's working balance from its share
// balance and voting-escrow position, and folds the change into the pool's
// working supply. Without an escrow the working balance equals the share
// balance, so everyone earns at base weight.
func (k *Keeper) updateWorking(ctx sdk.Context, addr sdk.AccAddress, user *types.UserState, g *types.GlobalState) {
	working := user.Balance
	if k.votingEscrow != nil {
		veTotal := k.votingEscrow.TotalLocked(ctx)
		if veTotal.IsPositive() {
			veBal := k.votingEscrow.BalanceOf(ctx, addr)
			boost := g.TotalSupply.Mul(veBal).Mul(types.MaxBoost.SubRaw(1)).Quo(veTotal)
			working = user.Balance.Add(boost)
			if cap := user.Balance.Mul(types.MaxBoost); working.GT(cap) {
				working = cap
			}
		}
	}
	g.WorkingSupply = g.WorkingSupply.Sub(user.WorkingBalance).Add(working)
	user.WorkingBalance = working
}

// Mint credits LP shares to an account. Called by the swap keeper when
// liquidity is added.
func (k *Keeper) Mint(ctx sdk.Context, poolID string, account sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return types.ErrZeroAmount
	}
	g := k.GetGlobalState(ctx, poolID)
	k.checkpoint(ctx, g)
	user := k.GetUserState(ctx, poolID, account)
	if err := k.syncVersion(ctx, poolID, user); err != nil {
		return err
	}
	checkpointUser(user, g)

	user.Balance = user.Balance.Add(amount)
	g.TotalSupply = g.TotalSupply.Add(amount)
	k.updateWorking(ctx, account, user, g)

	k.SetUserState(ctx, poolID, account, user)
	k.SetGlobalState(ctx, poolID, g)
	return nil
}

// BurnFrom debits LP shares from an account. Called by the swap keeper
// when liquidity is removed.
func (k *Keeper) BurnFrom(ctx sdk.Context, poolID string, account sdk.AccAddress, amount math.Int) error {
	if !amount.IsPositive() {
		return types.ErrZeroAmount
	}
	g := k.GetGlobalState(ctx, poolID)
	k.checkpoint(ctx, g)
	user := k.GetUserState(ctx, poolID, account)
	if err := k.syncVersion(ctx, poolID, user); err != nil {
		return err
	}
	checkpointUser(user, g)

	if user.Balance.LT(amount) {
		return types.ErrInsufficientBalance
	}
	user.Balance = user.Balance.Sub(amount)
	g.TotalSupply = g.TotalSupply.Sub(amount)
	k.updateWorking(ctx, account, user, g)

	k.SetUserState(ctx, poolID, account, user)
	k.SetGlobalState(ctx, poolID, g)
	return nil
}
