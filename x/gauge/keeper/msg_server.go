package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/gauge/types"
)

// MsgServer defines the gauge MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// Claim handles MsgClaim
func (m *MsgServer) Claim(ctx context.Context, msg *types.MsgClaim) (*types.MsgClaimResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	claimer, err := sdk.AccAddressFromBech32(msg.Claimer)
	if err != nil {
		return nil, err
	}
	result, err := m.keeper.Claim(sdkCtx, msg.PoolID, claimer)
	if err != nil {
		return nil, err
	}
	return &types.MsgClaimResponse{
		Reward: result.Reward.String(),
		Bonus:  result.Bonus.String(),
		Queen:  result.Queen.String(),
		Bishop: result.Bishop.String(),
		Rook:   result.Rook.String(),
		Quote:  result.Quote.String(),
	}, nil
}

// NotifyBonus handles MsgNotifyBonus
func (m *MsgServer) NotifyBonus(ctx context.Context, msg *types.MsgNotifyBonus) (*types.MsgNotifyBonusResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	amount, ok := math.NewIntFromString(msg.Amount)
	if !ok {
		return nil, types.ErrZeroAmount
	}
	if err := m.keeper.NotifyBonus(sdkCtx, msg.PoolID, amount, msg.Duration); err != nil {
		return nil, err
	}
	return &types.MsgNotifyBonusResponse{}, nil
}
