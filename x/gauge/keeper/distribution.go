package keeper

import (
	"encoding/binary"
	"encoding/json"
	"strconv"

	"cosmossdk.io/math"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/google/btree"

	"github.com/castleswap/tranche-dex/x/gauge/types"
)

const btreeDegree = 32

// distItem wraps a distribution for use in btree
// Implements btree.Item interface
type distItem struct {
	dist *types.Distribution
}

// Less implements btree.Item interface - ascending order by version
func (a *distItem) Less(b btree.Item) bool {
	return a.dist.Version < b.(*distItem).dist.Version
}

// distributionIndex is an in-memory ordered view over one pool's
// distributions, keyed by rebalance version.
type distributionIndex struct {
	tree *btree.BTree
}

func newDistributionIndex() *distributionIndex {
	return &distributionIndex{tree: btree.New(btreeDegree)}
}

func (idx *distributionIndex) Add(dist *types.Distribution) {
	idx.tree.ReplaceOrInsert(&distItem{dist: dist})
}

// Get returns the distribution at a version, or nil
func (idx *distributionIndex) Get(version uint64) *types.Distribution {
	item := idx.tree.Get(&distItem{dist: &types.Distribution{Version: version}})
	if item == nil {
		return nil
	}
	return item.(*distItem).dist
}

// AscendRange iterates distributions with version in [from, to)
func (idx *distributionIndex) AscendRange(from, to uint64, fn func(*types.Distribution) bool) {
	idx.tree.AscendRange(
		&distItem{dist: &types.Distribution{Version: from}},
		&distItem{dist: &types.Distribution{Version: to}},
		func(item btree.Item) bool {
			return fn(item.(*distItem).dist)
		},
	)
}

func distributionKey(poolID string, version uint64) []byte {
	key := append(DistributionKeyPrefix, []byte(poolID)...)
	key = append(key, '/')
	return binary.BigEndian.AppendUint64(key, version)
}

// index builds the pool's distribution index from the store. The index is
// always derived from store state so it follows the transaction's cached
// multistore: a distribution written in an aborted tx is never served.
func (k *Keeper) index(ctx sdk.Context, poolID string) *distributionIndex {
	idx := newDistributionIndex()
	prefix := append(DistributionKeyPrefix, []byte(poolID)...)
	prefix = append(prefix, '/')
	iterator := storetypes.KVStorePrefixIterator(k.GetStore(ctx), prefix)
	defer iterator.Close()
	for ; iterator.Valid(); iterator.Next() {
		var dist types.Distribution
		if err := json.Unmarshal(iterator.Value(), &dist); err != nil {
			continue
		}
		idx.Add(&dist)
	}
	return idx
}

// Distribute records assets handed to a pool's LPs at a rebalance version.
// The swap keeper transfers the assets to the gauge module account and then
// reports them here; holders collect their pro-rata share on claim.
func (k *Keeper) Distribute(ctx sdk.Context, poolID string, queen, bishop, rook, quote math.Int, version uint64) error {
	if queen.IsNegative() || bishop.IsNegative() || rook.IsNegative() || quote.IsNegative() {
		return types.ErrInvalidDistribution
	}
	g := k.GetGlobalState(ctx, poolID)
	k.checkpoint(ctx, g)
	k.SetGlobalState(ctx, poolID, g)

	dist := &types.Distribution{
		Version:     version,
		Queen:       queen,
		Bishop:      bishop,
		Rook:        rook,
		Quote:       quote,
		TotalSupply: g.TotalSupply,
	}
	bz, _ := json.Marshal(dist)
	k.GetStore(ctx).Set(distributionKey(poolID, version), bz)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			"gauge_distribute",
			sdk.NewAttribute("pool_id", poolID),
			sdk.NewAttribute("version", strconv.FormatUint(version, 10)),
			sdk.NewAttribute("queen", queen.String()),
			sdk.NewAttribute("bishop", bishop.String()),
			sdk.NewAttribute("rook", rook.String()),
			sdk.NewAttribute("quote", quote.String()),
		),
	)
	k.logger.Info("Distribution recorded",
		"pool_id", poolID,
		"version", version,
	)
	return nil
}

// GetDistribution returns the distribution recorded at a version, or nil
func (k *Keeper) GetDistribution(ctx sdk.Context, poolID string, version uint64) *types.Distribution {
	bz := k.GetStore(ctx).Get(distributionKey(poolID, version))
	if bz == nil {
		return nil
	}
	var dist types.Distribution
	if err := json.Unmarshal(bz, &dist); err != nil {
		return nil
	}
	return &dist
}

// syncVersion replays rebalances and distributions over an account's
// pending holdings, advancing it to the current rebalance version. Pending
// tranche amounts are re-denominated one version at a time so each
// distribution share is picked up in the version it was paid in.
func (k *Keeper) syncVersion(ctx sdk.Context, poolID string, user *types.UserState) error {
	current := k.fundKeeper.GetRebalanceSize(ctx)
	if user.Version >= current {
		return nil
	}
	idx := k.index(ctx, poolID)
	for v := user.Version; v < current; v++ {
		q, b, r, err := k.fundKeeper.BatchRebalance(ctx, user.PendingQueen, user.PendingBishop, user.PendingRook, v, v+1)
		if err != nil {
			return err
		}
		user.PendingQueen, user.PendingBishop, user.PendingRook = q, b, r

		if dist := idx.Get(v + 1); dist != nil && dist.TotalSupply.IsPositive() {
			user.PendingQueen = user.PendingQueen.Add(dist.Queen.Mul(user.Balance).Quo(dist.TotalSupply))
			user.PendingBishop = user.PendingBishop.Add(dist.Bishop.Mul(user.Balance).Quo(dist.TotalSupply))
			user.PendingRook = user.PendingRook.Add(dist.Rook.Mul(user.Balance).Quo(dist.TotalSupply))
			user.PendingQuote = user.PendingQuote.Add(dist.Quote.Mul(user.Balance).Quo(dist.TotalSupply))
		}
	}
	user.Version = current
	return nil
}
