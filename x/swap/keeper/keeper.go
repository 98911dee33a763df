package keeper

import (
	"context"
	"encoding/json"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	fundtypes "github.com/castleswap/tranche-dex/x/fund/types"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

// Store key prefixes
var (
	PoolKeyPrefix = []byte{0x01}
)

// FundKeeper defines the expected interface for the fund module
type FundKeeper interface {
	GetRebalanceSize(ctx sdk.Context) uint64
	GetRebalanceTimestamp(ctx sdk.Context, version uint64) int64
	BatchRebalance(ctx sdk.Context, q, b, r math.Int, fromVersion, toVersion uint64) (math.Int, math.Int, math.Int, error)
	RefreshBalance(ctx sdk.Context, addr sdk.AccAddress, fromVersion, toVersion uint64) error
	Split(ctx sdk.Context, owner sdk.AccAddress, amount math.Int) error
	GetOraclePrice(ctx sdk.Context) (math.Int, error)
}

// GaugeKeeper defines the expected interface for the gauge module, which
// owns the LP token supply and the LP distribution bookkeeping.
type GaugeKeeper interface {
	Mint(ctx sdk.Context, poolID string, account sdk.AccAddress, amount math.Int) error
	BurnFrom(ctx sdk.Context, poolID string, account sdk.AccAddress, amount math.Int) error
	TotalSupply(ctx sdk.Context, poolID string) math.Int
	Distribute(ctx sdk.Context, poolID string, queen, bishop, rook, quote math.Int, version uint64) error
	ModuleAddress() sdk.AccAddress
}

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	SendCoins(ctx context.Context, fromAddr, toAddr sdk.AccAddress, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// SwapCallback is invoked between the optimistic output transfer and
// settlement, enabling flash-swap style flows. Implementations are
// registered per recipient address at app wiring time.
type SwapCallback interface {
	OnSwap(ctx sdk.Context, poolID string, baseOut, quoteOut math.Int, data []byte) error
}

// Keeper manages the swap module state
type Keeper struct {
	cdc         codec.BinaryCodec
	storeKey    storetypes.StoreKey
	fundKeeper  FundKeeper
	gaugeKeeper GaugeKeeper
	bankKeeper  BankKeeper
	logger      log.Logger
	authority   string

	// Callback targets keyed by recipient address. Populated once during
	// wiring, read-only afterwards.
	callbacks map[string]SwapCallback

	// Per-pool reentrancy guard. Execution is serialized per transaction,
	// so a plain map scoped to the keeper is sufficient.
	inProgress map[string]bool
}

// NewKeeper creates a new swap keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	fundKeeper FundKeeper,
	gaugeKeeper GaugeKeeper,
	bankKeeper BankKeeper,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:         cdc,
		storeKey:    storeKey,
		fundKeeper:  fundKeeper,
		gaugeKeeper: gaugeKeeper,
		bankKeeper:  bankKeeper,
		authority:   authority,
		logger:      logger.With("module", "x/swap"),
		callbacks:   make(map[string]SwapCallback),
		inProgress:  make(map[string]bool),
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

// GetStore returns the KVStore
func (k *Keeper) GetStore(ctx sdk.Context) storetypes.KVStore {
	return ctx.KVStore(k.storeKey)
}

// RegisterCallback wires a flash-swap callback target for a recipient
// address. Called during app construction only.
func (k *Keeper) RegisterCallback(recipient string, cb SwapCallback) {
	k.callbacks[recipient] = cb
}

// SetPool saves a pool to the store
func (k *Keeper) SetPool(ctx sdk.Context, pool *types.Pool) {
	store := k.GetStore(ctx)
	key := append(PoolKeyPrefix, []byte(pool.PoolID)...)
	bz, _ := json.Marshal(pool)
	store.Set(key, bz)
}

// GetPool retrieves a pool from the store
func (k *Keeper) GetPool(ctx sdk.Context, poolID string) *types.Pool {
	store := k.GetStore(ctx)
	key := append(PoolKeyPrefix, []byte(poolID)...)
	bz := store.Get(key)
	if bz == nil {
		return nil
	}
	var pool types.Pool
	if err := json.Unmarshal(bz, &pool); err != nil {
		return nil
	}
	return &pool
}

// GetAllPools returns all pools
func (k *Keeper) GetAllPools(ctx sdk.Context) []*types.Pool {
	store := k.GetStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, PoolKeyPrefix)
	defer iterator.Close()

	var pools []*types.Pool
	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := json.Unmarshal(iterator.Value(), &pool); err != nil {
			continue
		}
		pools = append(pools, &pool)
	}
	return pools
}

// CreatePool creates a stableswap pool for one tranche against the quote
// asset.
func (k *Keeper) CreatePool(
	ctx sdk.Context,
	owner string,
	poolID string,
	baseTranche string,
	ampl math.Int,
	feeRate, adminFeeRate, surchargeRate math.LegacyDec,
	coolingOffPeriod int64,
) (*types.Pool, error) {
	if k.GetPool(ctx, poolID) != nil {
		return nil, types.ErrPoolAlreadyExists
	}
	switch baseTranche {
	case fundtypes.DenomQueen, fundtypes.DenomBishop, fundtypes.DenomRook:
	default:
		return nil, types.ErrUnknownTranche
	}
	if !ampl.IsPositive() || ampl.GTE(types.AmplMax) {
		return nil, types.ErrInvalidAmpl
	}
	if feeRate.IsNegative() || feeRate.GTE(types.MaxFeeRate) {
		return nil, types.ErrInvalidFeeRate
	}
	if adminFeeRate.IsNegative() || adminFeeRate.GT(types.MaxAdminFeeRate) {
		return nil, types.ErrInvalidFeeRate
	}
	if surchargeRate.IsNegative() || surchargeRate.GTE(types.MaxFeeRate) {
		return nil, types.ErrInvalidFeeRate
	}

	now := ctx.BlockTime().Unix()
	pool := &types.Pool{
		PoolID:         poolID,
		BaseTranche:    baseTranche,
		QuoteDenom:     types.DenomQuote,
		Owner:          owner,
		BaseBalance:    math.ZeroInt(),
		QuoteBalance:   math.ZeroInt(),
		CurrentVersion: k.fundKeeper.GetRebalanceSize(ctx),
		Ampl: types.AmplRamp{
			Start:          ampl,
			End:            ampl,
			StartTimestamp: now,
			EndTimestamp:   now,
		},
		FeeRate:          feeRate,
		AdminFeeRate:     adminFeeRate,
		SurchargeRate:    surchargeRate,
		CoolingOffPeriod: coolingOffPeriod,
		TotalAdminFee:    math.ZeroInt(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	k.SetPool(ctx, pool)

	k.logger.Info("Pool created",
		"pool_id", poolID,
		"base_tranche", baseTranche,
		"ampl", ampl.String(),
		"fee_rate", feeRate.String(),
	)
	return pool, nil
}

// lock acquires the per-pool reentrancy guard.
func (k *Keeper) lock(poolID string) error {
	if k.inProgress[poolID] {
		return types.ErrReentrancy
	}
	k.inProgress[poolID] = true
	return nil
}

func (k *Keeper) unlock(poolID string) {
	delete(k.inProgress, poolID)
}

// checkVersion rejects operations based on stale tranche ratios.
func (k *Keeper) checkVersion(ctx sdk.Context, version uint64) error {
	if version != k.fundKeeper.GetRebalanceSize(ctx) {
		return types.ErrObsoleteVersion
	}
	return nil
}

// escrowBalance reports the actual token balance held by the pool escrow.
func (k *Keeper) escrowBalance(ctx sdk.Context, poolID, denom string) math.Int {
	return k.bankKeeper.GetBalance(ctx, types.PoolAddress(poolID), denom).Amount
}

func (k *Keeper) touch(pool *types.Pool, now time.Time) {
	pool.UpdatedAt = now.Unix()
}
