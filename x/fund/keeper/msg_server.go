package keeper

import (
	"context"
	"strconv"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/fund/types"
)

// MsgServer defines the fund MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// Create handles MsgCreate
func (m *MsgServer) Create(ctx context.Context, msg *types.MsgCreate) (*types.MsgCreateResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	owner, err := sdk.AccAddressFromBech32(msg.Owner)
	if err != nil {
		return nil, err
	}
	underlying, ok := math.NewIntFromString(msg.Underlying)
	if !ok {
		return nil, types.ErrZeroAmount
	}
	if err := m.keeper.Create(sdkCtx, owner, underlying); err != nil {
		return nil, err
	}
	return &types.MsgCreateResponse{Minted: underlying.String()}, nil
}

// Redeem handles MsgRedeem
func (m *MsgServer) Redeem(ctx context.Context, msg *types.MsgRedeem) (*types.MsgRedeemResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	owner, err := sdk.AccAddressFromBech32(msg.Owner)
	if err != nil {
		return nil, err
	}
	amount, ok := math.NewIntFromString(msg.Amount)
	if !ok {
		return nil, types.ErrZeroAmount
	}
	if err := m.keeper.Redeem(sdkCtx, owner, amount); err != nil {
		return nil, err
	}
	return &types.MsgRedeemResponse{Underlying: amount.String()}, nil
}

// Split handles MsgSplit
func (m *MsgServer) Split(ctx context.Context, msg *types.MsgSplit) (*types.MsgSplitResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	owner, err := sdk.AccAddressFromBech32(msg.Owner)
	if err != nil {
		return nil, err
	}
	amount, ok := math.NewIntFromString(msg.Amount)
	if !ok {
		return nil, types.ErrZeroAmount
	}
	if err := m.keeper.Split(sdkCtx, owner, amount); err != nil {
		return nil, err
	}
	return &types.MsgSplitResponse{Amount: amount.String()}, nil
}

// Merge handles MsgMerge
func (m *MsgServer) Merge(ctx context.Context, msg *types.MsgMerge) (*types.MsgMergeResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	owner, err := sdk.AccAddressFromBech32(msg.Owner)
	if err != nil {
		return nil, err
	}
	amount, ok := math.NewIntFromString(msg.Amount)
	if !ok {
		return nil, types.ErrZeroAmount
	}
	if err := m.keeper.Merge(sdkCtx, owner, amount); err != nil {
		return nil, err
	}
	return &types.MsgMergeResponse{Amount: amount.String()}, nil
}

// AddRebalance handles MsgAddRebalance
func (m *MsgServer) AddRebalance(ctx context.Context, msg *types.MsgAddRebalance) (*types.MsgAddRebalanceResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if msg.Authority != m.keeper.GetAuthority() {
		return nil, types.ErrUnauthorized
	}
	record := types.RebalanceRecord{}
	var err error
	if record.RatioQueen, err = math.LegacyNewDecFromStr(msg.RatioQueen); err != nil {
		return nil, err
	}
	if record.RatioTranche, err = math.LegacyNewDecFromStr(msg.RatioTranche); err != nil {
		return nil, err
	}
	if record.RatioBishopToQueen, err = math.LegacyNewDecFromStr(msg.RatioBishopToQueen); err != nil {
		return nil, err
	}
	if record.RatioRookToQueen, err = math.LegacyNewDecFromStr(msg.RatioRookToQueen); err != nil {
		return nil, err
	}
	version, err := m.keeper.AddRebalance(sdkCtx, record)
	if err != nil {
		return nil, err
	}
	return &types.MsgAddRebalanceResponse{Version: strconv.FormatUint(version, 10)}, nil
}

// SetOraclePrice handles MsgSetOraclePrice
func (m *MsgServer) SetOraclePrice(ctx context.Context, msg *types.MsgSetOraclePrice) (*types.MsgSetOraclePriceResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if msg.Authority != m.keeper.GetAuthority() {
		return nil, types.ErrUnauthorized
	}
	price, ok := math.NewIntFromString(msg.Price)
	if !ok {
		return nil, types.ErrInvalidOraclePrice
	}
	if err := m.keeper.SetOraclePrice(sdkCtx, price); err != nil {
		return nil, err
	}
	return &types.MsgSetOraclePriceResponse{Price: price.String()}, nil
}
