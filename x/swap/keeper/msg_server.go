package keeper

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/swap/types"
)

// MsgServer defines the swap MsgServer
type MsgServer struct {
	keeper *Keeper
}

// NewMsgServerImpl creates a new MsgServer instance
func NewMsgServerImpl(keeper *Keeper) *MsgServer {
	return &MsgServer{keeper: keeper}
}

// CreatePool handles MsgCreatePool
func (m *MsgServer) CreatePool(ctx context.Context, msg *types.MsgCreatePool) (*types.MsgCreatePoolResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	ampl, ok := math.NewIntFromString(msg.Ampl)
	if !ok {
		return nil, types.ErrInvalidAmpl
	}
	feeRate, err := math.LegacyNewDecFromStr(msg.FeeRate)
	if err != nil {
		return nil, err
	}
	adminFeeRate, err := math.LegacyNewDecFromStr(msg.AdminFeeRate)
	if err != nil {
		return nil, err
	}
	surchargeRate, err := math.LegacyNewDecFromStr(msg.SurchargeRate)
	if err != nil {
		return nil, err
	}
	pool, err := m.keeper.CreatePool(sdkCtx, msg.Owner, msg.PoolID, msg.BaseTranche,
		ampl, feeRate, adminFeeRate, surchargeRate, msg.CoolingOffPeriod)
	if err != nil {
		return nil, err
	}
	return &types.MsgCreatePoolResponse{PoolID: pool.PoolID}, nil
}

// Buy handles MsgBuy
func (m *MsgServer) Buy(ctx context.Context, msg *types.MsgBuy) (*types.MsgBuyResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	quoteIn, err := m.keeper.Buy(sdkCtx, msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgBuyResponse{BaseOut: msg.BaseOut, QuoteIn: quoteIn.String()}, nil
}

// Sell handles MsgSell
func (m *MsgServer) Sell(ctx context.Context, msg *types.MsgSell) (*types.MsgSellResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	baseIn, err := m.keeper.Sell(sdkCtx, msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgSellResponse{QuoteOut: msg.QuoteOut, BaseIn: baseIn.String()}, nil
}

// AddLiquidity handles MsgAddLiquidity
func (m *MsgServer) AddLiquidity(ctx context.Context, msg *types.MsgAddLiquidity) (*types.MsgAddLiquidityResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	minted, err := m.keeper.AddLiquidity(sdkCtx, msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgAddLiquidityResponse{LPMinted: minted.String()}, nil
}

// RemoveLiquidity handles MsgRemoveLiquidity
func (m *MsgServer) RemoveLiquidity(ctx context.Context, msg *types.MsgRemoveLiquidity) (*types.MsgRemoveLiquidityResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	baseOut, quoteOut, err := m.keeper.RemoveLiquidity(sdkCtx, msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgRemoveLiquidityResponse{
		BaseOut:  baseOut.String(),
		QuoteOut: quoteOut.String(),
	}, nil
}

// RemoveBaseLiquidity handles MsgRemoveBaseLiquidity
func (m *MsgServer) RemoveBaseLiquidity(ctx context.Context, msg *types.MsgRemoveBaseLiquidity) (*types.MsgRemoveBaseLiquidityResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	baseOut, err := m.keeper.RemoveBaseLiquidity(sdkCtx, msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgRemoveBaseLiquidityResponse{BaseOut: baseOut.String()}, nil
}

// RemoveQuoteLiquidity handles MsgRemoveQuoteLiquidity
func (m *MsgServer) RemoveQuoteLiquidity(ctx context.Context, msg *types.MsgRemoveQuoteLiquidity) (*types.MsgRemoveQuoteLiquidityResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	quoteOut, err := m.keeper.RemoveQuoteLiquidity(sdkCtx, msg)
	if err != nil {
		return nil, err
	}
	return &types.MsgRemoveQuoteLiquidityResponse{QuoteOut: quoteOut.String()}, nil
}

// Sync handles MsgSync
func (m *MsgServer) Sync(ctx context.Context, msg *types.MsgSync) (*types.MsgSyncResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := m.keeper.Sync(sdkCtx, msg.PoolID); err != nil {
		return nil, err
	}
	pool := m.keeper.GetPool(sdkCtx, msg.PoolID)
	return &types.MsgSyncResponse{
		BaseBalance:  pool.BaseBalance.String(),
		QuoteBalance: pool.QuoteBalance.String(),
	}, nil
}

// Skim handles MsgSkim
func (m *MsgServer) Skim(ctx context.Context, msg *types.MsgSkim) (*types.MsgSkimResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	skimmed, err := m.keeper.Skim(sdkCtx, msg.Owner, msg.PoolID)
	if err != nil {
		return nil, err
	}
	return &types.MsgSkimResponse{Skimmed: skimmed.String()}, nil
}

// CollectFee handles MsgCollectFee
func (m *MsgServer) CollectFee(ctx context.Context, msg *types.MsgCollectFee) (*types.MsgCollectFeeResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	collected, err := m.keeper.CollectFee(sdkCtx, msg.Owner, msg.PoolID)
	if err != nil {
		return nil, err
	}
	return &types.MsgCollectFeeResponse{Collected: collected.String()}, nil
}

// SetFeeRate handles MsgSetFeeRate
func (m *MsgServer) SetFeeRate(ctx context.Context, msg *types.MsgSetFeeRate) (*types.MsgSetFeeRateResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	feeRate, err := math.LegacyNewDecFromStr(msg.FeeRate)
	if err != nil {
		return nil, err
	}
	adminFeeRate, err := math.LegacyNewDecFromStr(msg.AdminFeeRate)
	if err != nil {
		return nil, err
	}
	if err := m.keeper.SetFeeRate(sdkCtx, msg.Owner, msg.PoolID, feeRate, adminFeeRate); err != nil {
		return nil, err
	}
	return &types.MsgSetFeeRateResponse{}, nil
}

// RampAmpl handles MsgRampAmpl
func (m *MsgServer) RampAmpl(ctx context.Context, msg *types.MsgRampAmpl) (*types.MsgRampAmplResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	target, ok := math.NewIntFromString(msg.TargetAmpl)
	if !ok {
		return nil, types.ErrInvalidAmpl
	}
	if err := m.keeper.RampAmpl(sdkCtx, msg.Owner, msg.PoolID, target, msg.EndTimestamp); err != nil {
		return nil, err
	}
	return &types.MsgRampAmplResponse{}, nil
}

// StopRampAmpl handles MsgStopRampAmpl
func (m *MsgServer) StopRampAmpl(ctx context.Context, msg *types.MsgStopRampAmpl) (*types.MsgStopRampAmplResponse, error) {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	if err := m.keeper.StopRampAmpl(sdkCtx, msg.Owner, msg.PoolID); err != nil {
		return nil, err
	}
	return &types.MsgStopRampAmplResponse{}, nil
}
