package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/swap/types"
)

// QueryServer defines the swap QueryServer
type QueryServer struct {
	keeper *Keeper
}

// NewQueryServerImpl creates a new QueryServer instance
func NewQueryServerImpl(keeper *Keeper) *QueryServer {
	return &QueryServer{keeper: keeper}
}

// Pool returns a pool by ID
func (q *QueryServer) Pool(ctx context.Context, poolID string) (*types.Pool, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return nil, types.ErrPoolNotFound
	}
	return pool, nil
}

// Pools returns all pools
func (q *QueryServer) Pools(ctx context.Context, offset, limit uint64) ([]*types.Pool, uint64, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	allPools := q.keeper.GetAllPools(sdkCtx)

	total := uint64(len(allPools))

	// Apply pagination
	if offset >= total {
		return []*types.Pool{}, total, nil
	}

	end := offset + limit
	if end > total || limit == 0 {
		end = total
	}

	return allPools[offset:end], total, nil
}

// Balances returns a pool's rebalance-normalized balances without mutating
// state, reflecting any pending rebalance.
func (q *QueryServer) Balances(ctx context.Context, poolID string) (base, quote math.Int, version uint64, err error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return math.ZeroInt(), math.ZeroInt(), 0, types.ErrPoolNotFound
	}
	result, err := q.keeper.ResolveRebalance(sdkCtx, pool)
	if err != nil {
		return math.ZeroInt(), math.ZeroInt(), 0, err
	}
	return result.Base, result.Quote, q.keeper.fundKeeper.GetRebalanceSize(sdkCtx), nil
}

// QuoteOut estimates the quote received for selling baseIn.
func (q *QueryServer) QuoteOut(ctx context.Context, poolID string, baseIn math.Int) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetQuoteOut(sdkCtx, poolID, baseIn)
}

// QuoteIn estimates the quote owed for buying baseOut.
func (q *QueryServer) QuoteIn(ctx context.Context, poolID string, baseOut math.Int) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetQuoteIn(sdkCtx, poolID, baseOut)
}

// BaseOut estimates the base received for paying quoteIn.
func (q *QueryServer) BaseOut(ctx context.Context, poolID string, quoteIn math.Int) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetBaseOut(sdkCtx, poolID, quoteIn)
}

// BaseIn estimates the base owed for receiving quoteOut.
func (q *QueryServer) BaseIn(ctx context.Context, poolID string, quoteOut math.Int) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return q.keeper.GetBaseIn(sdkCtx, poolID, quoteOut)
}

// CurrentAmpl returns the interpolated amplification of a pool.
func (q *QueryServer) CurrentAmpl(ctx context.Context, poolID string) (math.Int, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	pool := q.keeper.GetPool(sdkCtx, poolID)
	if pool == nil {
		return math.ZeroInt(), types.ErrPoolNotFound
	}
	return pool.CurrentAmpl(sdkCtx.BlockTime().Unix()), nil
}
