package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/fund/types"
)

// ApplyRebalance transforms a (queen, bishop, rook) holding across a single
// rebalance record. All products floor.
func ApplyRebalance(record *types.RebalanceRecord, q, b, r math.Int) (math.Int, math.Int, math.Int) {
	newQ := record.RatioQueen.MulInt(q).TruncateInt().
		Add(record.RatioBishopToQueen.MulInt(b).TruncateInt()).
		Add(record.RatioRookToQueen.MulInt(r).TruncateInt())
	newB := record.RatioTranche.MulInt(b).TruncateInt()
	newR := record.RatioTranche.MulInt(r).TruncateInt()
	return newQ, newB, newR
}

// BatchRebalance folds the per-version transform over the half-open version
// range [fromVersion, toVersion), returning the holding as of toVersion.
func (k *Keeper) BatchRebalance(ctx sdk.Context, q, b, r math.Int, fromVersion, toVersion uint64) (math.Int, math.Int, math.Int, error) {
	if toVersion > k.GetRebalanceSize(ctx) || fromVersion > toVersion {
		return math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), types.ErrVersionOutOfRange
	}
	for v := fromVersion; v < toVersion; v++ {
		record, err := k.GetRebalance(ctx, v)
		if err != nil {
			return math.ZeroInt(), math.ZeroInt(), math.ZeroInt(), err
		}
		q, b, r = ApplyRebalance(record, q, b, r)
	}
	return q, b, r, nil
}
