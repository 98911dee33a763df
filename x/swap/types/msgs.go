package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgCreatePool           = "create_pool"
	TypeMsgBuy                  = "buy"
	TypeMsgSell                 = "sell"
	TypeMsgAddLiquidity         = "add_liquidity"
	TypeMsgRemoveLiquidity      = "remove_liquidity"
	TypeMsgRemoveBaseLiquidity  = "remove_base_liquidity"
	TypeMsgRemoveQuoteLiquidity = "remove_quote_liquidity"
	TypeMsgSync                 = "sync"
	TypeMsgSkim                 = "skim"
	TypeMsgCollectFee           = "collect_fee"
	TypeMsgSetFeeRate           = "set_fee_rate"
	TypeMsgRampAmpl             = "ramp_ampl"
	TypeMsgStopRampAmpl         = "stop_ramp_ampl"
)

func validateAddress(addr string) error {
	_, err := sdk.AccAddressFromBech32(addr)
	return err
}

// MsgCreatePool creates a stableswap pool for one tranche.
type MsgCreatePool struct {
	Owner            string `json:"owner"`
	PoolID           string `json:"pool_id"`
	BaseTranche      string `json:"base_tranche"`
	Ampl             string `json:"ampl"`
	FeeRate          string `json:"fee_rate"`
	AdminFeeRate     string `json:"admin_fee_rate"`
	SurchargeRate    string `json:"surcharge_rate"`
	CoolingOffPeriod int64  `json:"cooling_off_period"`
}

func (msg MsgCreatePool) Route() string { return ModuleName }
func (msg MsgCreatePool) Type() string  { return TypeMsgCreatePool }
func (msg MsgCreatePool) ValidateBasic() error {
	if err := validateAddress(msg.Owner); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}
func (msg MsgCreatePool) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}
func (*MsgCreatePool) ProtoMessage()  {}
func (msg *MsgCreatePool) Reset()     { *msg = MsgCreatePool{} }
func (msg MsgCreatePool) String() string {
	return fmt.Sprintf("MsgCreatePool{PoolID: %s, BaseTranche: %s}", msg.PoolID, msg.BaseTranche)
}

// MsgBuy buys an exact amount of the base tranche with quote.
type MsgBuy struct {
	Buyer      string `json:"buyer"`
	PoolID     string `json:"pool_id"`
	Version    uint64 `json:"version"`
	BaseOut    string `json:"base_out"`
	MaxQuoteIn string `json:"max_quote_in"`
	Recipient  string `json:"recipient"`
	Data       []byte `json:"data,omitempty"`
}

func (msg MsgBuy) Route() string { return ModuleName }
func (msg MsgBuy) Type() string  { return TypeMsgBuy }
func (msg MsgBuy) ValidateBasic() error {
	if err := validateAddress(msg.Buyer); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.BaseOut == "" {
		return ErrZeroAmount
	}
	return nil
}
func (msg MsgBuy) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Buyer)
	return []sdk.AccAddress{addr}
}
func (*MsgBuy) ProtoMessage()  {}
func (msg *MsgBuy) Reset()     { *msg = MsgBuy{} }
func (msg MsgBuy) String() string {
	return fmt.Sprintf("MsgBuy{PoolID: %s, BaseOut: %s}", msg.PoolID, msg.BaseOut)
}

// MsgSell sells the base tranche for an exact amount of quote.
type MsgSell struct {
	Seller    string `json:"seller"`
	PoolID    string `json:"pool_id"`
	Version   uint64 `json:"version"`
	QuoteOut  string `json:"quote_out"`
	MaxBaseIn string `json:"max_base_in"`
	Recipient string `json:"recipient"`
	Data      []byte `json:"data,omitempty"`
}

func (msg MsgSell) Route() string { return ModuleName }
func (msg MsgSell) Type() string  { return TypeMsgSell }
func (msg MsgSell) ValidateBasic() error {
	if err := validateAddress(msg.Seller); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.QuoteOut == "" {
		return ErrZeroAmount
	}
	return nil
}
func (msg MsgSell) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Seller)
	return []sdk.AccAddress{addr}
}
func (*MsgSell) ProtoMessage()  {}
func (msg *MsgSell) Reset()     { *msg = MsgSell{} }
func (msg MsgSell) String() string {
	return fmt.Sprintf("MsgSell{PoolID: %s, QuoteOut: %s}", msg.PoolID, msg.QuoteOut)
}

// MsgAddLiquidity deposits base and/or quote for LP tokens.
type MsgAddLiquidity struct {
	Provider  string `json:"provider"`
	PoolID    string `json:"pool_id"`
	Version   uint64 `json:"version"`
	BaseIn    string `json:"base_in"`
	QuoteIn   string `json:"quote_in"`
	MinLPOut  string `json:"min_lp_out"`
	Recipient string `json:"recipient"`
}

func (msg MsgAddLiquidity) Route() string { return ModuleName }
func (msg MsgAddLiquidity) Type() string  { return TypeMsgAddLiquidity }
func (msg MsgAddLiquidity) ValidateBasic() error {
	if err := validateAddress(msg.Provider); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}
func (msg MsgAddLiquidity) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Provider)
	return []sdk.AccAddress{addr}
}
func (*MsgAddLiquidity) ProtoMessage()  {}
func (msg *MsgAddLiquidity) Reset()     { *msg = MsgAddLiquidity{} }
func (msg MsgAddLiquidity) String() string {
	return fmt.Sprintf("MsgAddLiquidity{PoolID: %s, BaseIn: %s, QuoteIn: %s}", msg.PoolID, msg.BaseIn, msg.QuoteIn)
}

// MsgRemoveLiquidity burns LP tokens for a proportional share of both
// reserves.
type MsgRemoveLiquidity struct {
	Provider    string `json:"provider"`
	PoolID      string `json:"pool_id"`
	Version     uint64 `json:"version"`
	LPAmount    string `json:"lp_amount"`
	MinBaseOut  string `json:"min_base_out"`
	MinQuoteOut string `json:"min_quote_out"`
}

func (msg MsgRemoveLiquidity) Route() string { return ModuleName }
func (msg MsgRemoveLiquidity) Type() string  { return TypeMsgRemoveLiquidity }
func (msg MsgRemoveLiquidity) ValidateBasic() error {
	if err := validateAddress(msg.Provider); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.LPAmount == "" {
		return ErrZeroAmount
	}
	return nil
}
func (msg MsgRemoveLiquidity) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Provider)
	return []sdk.AccAddress{addr}
}
func (*MsgRemoveLiquidity) ProtoMessage()  {}
func (msg *MsgRemoveLiquidity) Reset()     { *msg = MsgRemoveLiquidity{} }
func (msg MsgRemoveLiquidity) String() string {
	return fmt.Sprintf("MsgRemoveLiquidity{PoolID: %s, LPAmount: %s}", msg.PoolID, msg.LPAmount)
}

// MsgRemoveBaseLiquidity burns LP tokens for base only.
type MsgRemoveBaseLiquidity struct {
	Provider   string `json:"provider"`
	PoolID     string `json:"pool_id"`
	Version    uint64 `json:"version"`
	LPAmount   string `json:"lp_amount"`
	MinBaseOut string `json:"min_base_out"`
}

func (msg MsgRemoveBaseLiquidity) Route() string { return ModuleName }
func (msg MsgRemoveBaseLiquidity) Type() string  { return TypeMsgRemoveBaseLiquidity }
func (msg MsgRemoveBaseLiquidity) ValidateBasic() error {
	if err := validateAddress(msg.Provider); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.LPAmount == "" {
		return ErrZeroAmount
	}
	return nil
}
func (msg MsgRemoveBaseLiquidity) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Provider)
	return []sdk.AccAddress{addr}
}
func (*MsgRemoveBaseLiquidity) ProtoMessage()  {}
func (msg *MsgRemoveBaseLiquidity) Reset()     { *msg = MsgRemoveBaseLiquidity{} }
func (msg MsgRemoveBaseLiquidity) String() string {
	return fmt.Sprintf("MsgRemoveBaseLiquidity{PoolID: %s, LPAmount: %s}", msg.PoolID, msg.LPAmount)
}

// MsgRemoveQuoteLiquidity burns LP tokens for quote only.
type MsgRemoveQuoteLiquidity struct {
	Provider    string `json:"provider"`
	PoolID      string `json:"pool_id"`
	Version     uint64 `json:"version"`
	LPAmount    string `json:"lp_amount"`
	MinQuoteOut string `json:"min_quote_out"`
}

func (msg MsgRemoveQuoteLiquidity) Route() string { return ModuleName }
func (msg MsgRemoveQuoteLiquidity) Type() string  { return TypeMsgRemoveQuoteLiquidity }
func (msg MsgRemoveQuoteLiquidity) ValidateBasic() error {
	if err := validateAddress(msg.Provider); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.LPAmount == "" {
		return ErrZeroAmount
	}
	return nil
}
func (msg MsgRemoveQuoteLiquidity) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Provider)
	return []sdk.AccAddress{addr}
}
func (*MsgRemoveQuoteLiquidity) ProtoMessage()  {}
func (msg *MsgRemoveQuoteLiquidity) Reset()     { *msg = MsgRemoveQuoteLiquidity{} }
func (msg MsgRemoveQuoteLiquidity) String() string {
	return fmt.Sprintf("MsgRemoveQuoteLiquidity{PoolID: %s, LPAmount: %s}", msg.PoolID, msg.LPAmount)
}

// MsgSync reconciles stored reserves with actual escrow balances.
type MsgSync struct {
	Caller string `json:"caller"`
	PoolID string `json:"pool_id"`
}

func (msg MsgSync) Route() string { return ModuleName }
func (msg MsgSync) Type() string  { return TypeMsgSync }
func (msg MsgSync) ValidateBasic() error {
	if err := validateAddress(msg.Caller); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}
func (msg MsgSync) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Caller)
	return []sdk.AccAddress{addr}
}
func (*MsgSync) ProtoMessage()  {}
func (msg *MsgSync) Reset()     { *msg = MsgSync{} }
func (msg MsgSync) String() string {
	return fmt.Sprintf("MsgSync{PoolID: %s}", msg.PoolID)
}

// MsgSkim pays any escrow surplus above the recorded reserves to the pool owner.
type MsgSkim struct {
	Owner  string `json:"owner"`
	PoolID string `json:"pool_id"`
}

func (msg MsgSkim) Route() string { return ModuleName }
func (msg MsgSkim) Type() string  { return TypeMsgSkim }
func (msg MsgSkim) ValidateBasic() error {
	if err := validateAddress(msg.Owner); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}
func (msg MsgSkim) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}
func (*MsgSkim) ProtoMessage()  {}
func (msg *MsgSkim) Reset()     { *msg = MsgSkim{} }
func (msg MsgSkim) String() string {
	return fmt.Sprintf("MsgSkim{PoolID: %s}", msg.PoolID)
}

// MsgCollectFee pays the accrued admin fee out to the pool owner.
type MsgCollectFee struct {
	Owner  string `json:"owner"`
	PoolID string `json:"pool_id"`
}

func (msg MsgCollectFee) Route() string { return ModuleName }
func (msg MsgCollectFee) Type() string  { return TypeMsgCollectFee }
func (msg MsgCollectFee) ValidateBasic() error {
	if err := validateAddress(msg.Owner); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}
func (msg MsgCollectFee) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}
func (*MsgCollectFee) ProtoMessage()  {}
func (msg *MsgCollectFee) Reset()     { *msg = MsgCollectFee{} }
func (msg MsgCollectFee) String() string {
	return fmt.Sprintf("MsgCollectFee{PoolID: %s}", msg.PoolID)
}

// MsgSetFeeRate updates the pool's fee configuration.
type MsgSetFeeRate struct {
	Owner        string `json:"owner"`
	PoolID       string `json:"pool_id"`
	FeeRate      string `json:"fee_rate"`
	AdminFeeRate string `json:"admin_fee_rate"`
}

func (msg MsgSetFeeRate) Route() string { return ModuleName }
func (msg MsgSetFeeRate) Type() string  { return TypeMsgSetFeeRate }
func (msg MsgSetFeeRate) ValidateBasic() error {
	if err := validateAddress(msg.Owner); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}
func (msg MsgSetFeeRate) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}
func (*MsgSetFeeRate) ProtoMessage()  {}
func (msg *MsgSetFeeRate) Reset()     { *msg = MsgSetFeeRate{} }
func (msg MsgSetFeeRate) String() string {
	return fmt.Sprintf("MsgSetFeeRate{PoolID: %s, FeeRate: %s}", msg.PoolID, msg.FeeRate)
}

// MsgRampAmpl starts an amplification ramp.
type MsgRampAmpl struct {
	Owner        string `json:"owner"`
	PoolID       string `json:"pool_id"`
	TargetAmpl   string `json:"target_ampl"`
	EndTimestamp int64  `json:"end_timestamp"`
}

func (msg MsgRampAmpl) Route() string { return ModuleName }
func (msg MsgRampAmpl) Type() string  { return TypeMsgRampAmpl }
func (msg MsgRampAmpl) ValidateBasic() error {
	if err := validateAddress(msg.Owner); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	if msg.TargetAmpl == "" {
		return ErrInvalidAmpl
	}
	return nil
}
func (msg MsgRampAmpl) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}
func (*MsgRampAmpl) ProtoMessage()  {}
func (msg *MsgRampAmpl) Reset()     { *msg = MsgRampAmpl{} }
func (msg MsgRampAmpl) String() string {
	return fmt.Sprintf("MsgRampAmpl{PoolID: %s, TargetAmpl: %s}", msg.PoolID, msg.TargetAmpl)
}

// MsgStopRampAmpl freezes the amplification at its current value.
type MsgStopRampAmpl struct {
	Owner  string `json:"owner"`
	PoolID string `json:"pool_id"`
}

func (msg MsgStopRampAmpl) Route() string { return ModuleName }
func (msg MsgStopRampAmpl) Type() string  { return TypeMsgStopRampAmpl }
func (msg MsgStopRampAmpl) ValidateBasic() error {
	if err := validateAddress(msg.Owner); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrPoolNotFound
	}
	return nil
}
func (msg MsgStopRampAmpl) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}
func (*MsgStopRampAmpl) ProtoMessage()  {}
func (msg *MsgStopRampAmpl) Reset()     { *msg = MsgStopRampAmpl{} }
func (msg MsgStopRampAmpl) String() string {
	return fmt.Sprintf("MsgStopRampAmpl{PoolID: %s}", msg.PoolID)
}

// Responses

type MsgCreatePoolResponse struct {
	PoolID string `json:"pool_id"`
}

type MsgBuyResponse struct {
	BaseOut string `json:"base_out"`
	QuoteIn string `json:"quote_in"`
}

type MsgSellResponse struct {
	QuoteOut string `json:"quote_out"`
	BaseIn   string `json:"base_in"`
}

type MsgAddLiquidityResponse struct {
	LPMinted string `json:"lp_minted"`
}

type MsgRemoveLiquidityResponse struct {
	BaseOut  string `json:"base_out"`
	QuoteOut string `json:"quote_out"`
}

type MsgSyncResponse struct {
	BaseBalance  string `json:"base_balance"`
	QuoteBalance string `json:"quote_balance"`
}

type MsgSkimResponse struct {
	Skimmed string `json:"skimmed"`
}

type MsgCollectFeeResponse struct {
	Collected string `json:"collected"`
}

type MsgRemoveBaseLiquidityResponse struct {
	BaseOut string `json:"base_out"`
}

type MsgRemoveQuoteLiquidityResponse struct {
	QuoteOut string `json:"quote_out"`
}

type MsgSetFeeRateResponse struct{}

type MsgRampAmplResponse struct{}

type MsgStopRampAmplResponse struct{}
