package keeper

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strconv"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	"github.com/cosmos/cosmos-sdk/codec"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/fund/types"
)

// Store key prefixes
var (
	RebalanceKeyPrefix = []byte{0x01}
	RebalanceCountKey  = []byte{0x02}
	OraclePriceKey     = []byte{0x03}
)

// BankKeeper defines the expected interface for the bank module
type BankKeeper interface {
	MintCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	BurnCoins(ctx context.Context, moduleName string, amt sdk.Coins) error
	SendCoinsFromAccountToModule(ctx context.Context, senderAddr sdk.AccAddress, recipientModule string, amt sdk.Coins) error
	SendCoinsFromModuleToAccount(ctx context.Context, senderModule string, recipientAddr sdk.AccAddress, amt sdk.Coins) error
	GetBalance(ctx context.Context, addr sdk.AccAddress, denom string) sdk.Coin
}

// Keeper manages the fund module state: the rebalance ledger, the oracle
// price and the tranche token lifecycle.
type Keeper struct {
	cdc        codec.BinaryCodec
	storeKey   storetypes.StoreKey
	bankKeeper BankKeeper
	logger     log.Logger
	authority  string
}

// NewKeeper creates a new fund keeper
func NewKeeper(
	cdc codec.BinaryCodec,
	storeKey storetypes.StoreKey,
	bankKeeper BankKeeper,
	authority string,
	logger log.Logger,
) *Keeper {
	return &Keeper{
		cdc:        cdc,
		storeKey:   storeKey,
		bankKeeper: bankKeeper,
		authority:  authority,
		logger:     logger.With("module", "x/fund"),
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

func rebalanceKey(version uint64) []byte {
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, version)
	return append(RebalanceKeyPrefix, bz...)
}

// GetRebalanceSize returns the number of rebalances so far. Holdings tagged
// with this version are current.
func (k *Keeper) GetRebalanceSize(ctx sdk.Context) uint64 {
	bz := k.GetStore(ctx).Get(RebalanceCountKey)
	if bz == nil {
		return 0
	}
	return binary.BigEndian.Uint64(bz)
}

// GetRebalance returns the record that transforms version into version+1.
func (k *Keeper) GetRebalance(ctx sdk.Context, version uint64) (*types.RebalanceRecord, error) {
	bz := k.GetStore(ctx).Get(rebalanceKey(version))
	if bz == nil {
		return nil, types.ErrVersionOutOfRange
	}
	var record types.RebalanceRecord
	if err := json.Unmarshal(bz, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetRebalanceTimestamp returns the block time at which the given rebalance
// was recorded, or zero when the version is out of range.
func (k *Keeper) GetRebalanceTimestamp(ctx sdk.Context, version uint64) int64 {
	record, err := k.GetRebalance(ctx, version)
	if err != nil {
		return 0
	}
	return record.Timestamp
}

// AddRebalance appends a rebalance record at the next version.
func (k *Keeper) AddRebalance(ctx sdk.Context, record types.RebalanceRecord) (uint64, error) {
	if err := record.Validate(); err != nil {
		return 0, err
	}
	version := k.GetRebalanceSize(ctx)
	record.Version = version
	record.Timestamp = ctx.BlockTime().Unix()

	bz, err := json.Marshal(&record)
	if err != nil {
		return 0, err
	}
	store := k.GetStore(ctx)
	store.Set(rebalanceKey(version), bz)

	count := make([]byte, 8)
	binary.BigEndian.PutUint64(count, version+1)
	store.Set(RebalanceCountKey, count)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"fund_rebalance",
			sdk.NewAttribute("version", strconv.FormatUint(version, 10)),
			sdk.NewAttribute("ratio_queen", record.RatioQueen.String()),
			sdk.NewAttribute("ratio_tranche", record.RatioTranche.String()),
		),
	)
	k.logger.Info("Rebalance recorded",
		"version", version,
		"ratio_queen", record.RatioQueen.String(),
		"ratio_tranche", record.RatioTranche.String(),
	)
	return version, nil
}

// GetOraclePrice returns the current TWAP price of the underlying in quote
// units, 18-decimal.
func (k *Keeper) GetOraclePrice(ctx sdk.Context) (math.Int, error) {
	bz := k.GetStore(ctx).Get(OraclePriceKey)
	if bz == nil {
		return math.ZeroInt(), types.ErrOraclePriceNotSet
	}
	var price math.Int
	if err := price.Unmarshal(bz); err != nil {
		return math.ZeroInt(), err
	}
	return price, nil
}

// SetOraclePrice stores the TWAP price.
func (k *Keeper) SetOraclePrice(ctx sdk.Context, price math.Int) error {
	if !price.IsPositive() {
		return types.ErrInvalidOraclePrice
	}
	bz, err := price.Marshal()
	if err != nil {
		return err
	}
	k.GetStore(ctx).Set(OraclePriceKey, bz)
	return nil
}
