package swap

import (
	"encoding/json"

	"cosmossdk.io/core/appmodule"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	cdctypes "github.com/cosmos/cosmos-sdk/codec/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/grpc-ecosystem/grpc-gateway/runtime"

	"github.com/castleswap/tranche-dex/x/swap/keeper"
	"github.com/castleswap/tranche-dex/x/swap/types"
)

const (
	ModuleName = types.ModuleName
)

var (
	_ module.AppModuleBasic = AppModuleBasic{}
	_ appmodule.AppModule   = AppModule{}
)

// AppModuleBasic defines the basic application module for the swap
type AppModuleBasic struct{}

// Name returns the module's name
func (AppModuleBasic) Name() string {
	return ModuleName
}

// RegisterLegacyAminoCodec registers the module's types on the given LegacyAmino codec
func (AppModuleBasic) RegisterLegacyAminoCodec(cdc *codec.LegacyAmino) {
	cdc.RegisterConcrete(&types.MsgCreatePool{}, "swap/MsgCreatePool", nil)
	cdc.RegisterConcrete(&types.MsgBuy{}, "swap/MsgBuy", nil)
	cdc.RegisterConcrete(&types.MsgSell{}, "swap/MsgSell", nil)
	cdc.RegisterConcrete(&types.MsgAddLiquidity{}, "swap/MsgAddLiquidity", nil)
	cdc.RegisterConcrete(&types.MsgRemoveLiquidity{}, "swap/MsgRemoveLiquidity", nil)
	cdc.RegisterConcrete(&types.MsgRemoveBaseLiquidity{}, "swap/MsgRemoveBaseLiquidity", nil)
	cdc.RegisterConcrete(&types.MsgRemoveQuoteLiquidity{}, "swap/MsgRemoveQuoteLiquidity", nil)
	cdc.RegisterConcrete(&types.MsgSync{}, "swap/MsgSync", nil)
	cdc.RegisterConcrete(&types.MsgSkim{}, "swap/MsgSkim", nil)
	cdc.RegisterConcrete(&types.MsgCollectFee{}, "swap/MsgCollectFee", nil)
	cdc.RegisterConcrete(&types.MsgSetFeeRate{}, "swap/MsgSetFeeRate", nil)
	cdc.RegisterConcrete(&types.MsgRampAmpl{}, "swap/MsgRampAmpl", nil)
	cdc.RegisterConcrete(&types.MsgStopRampAmpl{}, "swap/MsgStopRampAmpl", nil)
}

// RegisterInterfaces registers the module's interface types
func (AppModuleBasic) RegisterInterfaces(registry cdctypes.InterfaceRegistry) {
	registry.RegisterImplementations((*sdk.Msg)(nil),
		&types.MsgCreatePool{},
		&types.MsgBuy{},
		&types.MsgSell{},
		&types.MsgAddLiquidity{},
		&types.MsgRemoveLiquidity{},
		&types.MsgRemoveBaseLiquidity{},
		&types.MsgRemoveQuoteLiquidity{},
		&types.MsgSync{},
		&types.MsgSkim{},
		&types.MsgCollectFee{},
		&types.MsgSetFeeRate{},
		&types.MsgRampAmpl{},
		&types.MsgStopRampAmpl{},
	)
}

// DefaultGenesis returns default genesis state as raw bytes
func (AppModuleBasic) DefaultGenesis(cdc codec.JSONCodec) json.RawMessage {
	return nil
}

// ValidateGenesis performs genesis state validation
func (AppModuleBasic) ValidateGenesis(cdc codec.JSONCodec, config client.TxEncodingConfig, bz json.RawMessage) error {
	return nil
}

// RegisterGRPCGatewayRoutes registers the gRPC Gateway routes for the module
func (AppModuleBasic) RegisterGRPCGatewayRoutes(clientCtx client.Context, mux *runtime.ServeMux) {
}

// AppModule implements an application module for the swap module
type AppModule struct {
	AppModuleBasic
	keeper *keeper.Keeper
}

// NewAppModule creates a new AppModule object
func NewAppModule(k *keeper.Keeper) AppModule {
	return AppModule{
		AppModuleBasic: AppModuleBasic{},
		keeper:         k,
	}
}

// Name returns the module's name
func (am AppModule) Name() string {
	return ModuleName
}

// RegisterServices registers module services
func (am AppModule) RegisterServices(cfg module.Configurator) {
	_ = keeper.NewMsgServerImpl(am.keeper)
	_ = keeper.NewQueryServerImpl(am.keeper)
}

// IsOnePerModuleType implements the depinject.OnePerModuleType interface
func (am AppModule) IsOnePerModuleType() {}

// IsAppModule implements the appmodule.AppModule interface
func (am AppModule) IsAppModule() {}
