package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgCreate         = "create"
	TypeMsgRedeem         = "redeem"
	TypeMsgSplit          = "split"
	TypeMsgMerge          = "merge"
	TypeMsgAddRebalance   = "add_rebalance"
	TypeMsgSetOraclePrice = "set_oracle_price"
)

// MsgCreate mints QUEEN against a deposit of the underlying.
type MsgCreate struct {
	Owner      string `json:"owner"`
	Underlying string `json:"underlying"`
}

func (msg MsgCreate) Route() string { return ModuleName }
func (msg MsgCreate) Type() string  { return TypeMsgCreate }

func (msg MsgCreate) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	if msg.Underlying == "" {
		return ErrZeroAmount
	}
	return nil
}

func (msg MsgCreate) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

func (*MsgCreate) ProtoMessage()  {}
func (msg *MsgCreate) Reset()     { *msg = MsgCreate{} }
func (msg MsgCreate) String() string {
	return fmt.Sprintf("MsgCreate{Owner: %s, Underlying: %s}", msg.Owner, msg.Underlying)
}

// MsgRedeem burns QUEEN and pays the underlying back out.
type MsgRedeem struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

func (msg MsgRedeem) Route() string { return ModuleName }
func (msg MsgRedeem) Type() string  { return TypeMsgRedeem }

func (msg MsgRedeem) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	if msg.Amount == "" {
		return ErrZeroAmount
	}
	return nil
}

func (msg MsgRedeem) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

func (*MsgRedeem) ProtoMessage()  {}
func (msg *MsgRedeem) Reset()     { *msg = MsgRedeem{} }
func (msg MsgRedeem) String() string {
	return fmt.Sprintf("MsgRedeem{Owner: %s, Amount: %s}", msg.Owner, msg.Amount)
}

// MsgSplit splits QUEEN into equal amounts of BISHOP and ROOK.
type MsgSplit struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

func (msg MsgSplit) Route() string { return ModuleName }
func (msg MsgSplit) Type() string  { return TypeMsgSplit }

func (msg MsgSplit) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	if msg.Amount == "" {
		return ErrZeroAmount
	}
	return nil
}

func (msg MsgSplit) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

func (*MsgSplit) ProtoMessage()  {}
func (msg *MsgSplit) Reset()     { *msg = MsgSplit{} }
func (msg MsgSplit) String() string {
	return fmt.Sprintf("MsgSplit{Owner: %s, Amount: %s}", msg.Owner, msg.Amount)
}

// MsgMerge merges equal amounts of BISHOP and ROOK back into QUEEN.
type MsgMerge struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

func (msg MsgMerge) Route() string { return ModuleName }
func (msg MsgMerge) Type() string  { return TypeMsgMerge }

func (msg MsgMerge) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Owner); err != nil {
		return err
	}
	if msg.Amount == "" {
		return ErrZeroAmount
	}
	return nil
}

func (msg MsgMerge) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Owner)
	return []sdk.AccAddress{addr}
}

func (*MsgMerge) ProtoMessage()  {}
func (msg *MsgMerge) Reset()     { *msg = MsgMerge{} }
func (msg MsgMerge) String() string {
	return fmt.Sprintf("MsgMerge{Owner: %s, Amount: %s}", msg.Owner, msg.Amount)
}

// MsgAddRebalance appends a rebalance record (governance only).
type MsgAddRebalance struct {
	Authority          string `json:"authority"`
	RatioQueen         string `json:"ratio_queen"`
	RatioTranche       string `json:"ratio_tranche"`
	RatioBishopToQueen string `json:"ratio_bishop_to_queen"`
	RatioRookToQueen   string `json:"ratio_rook_to_queen"`
}

func (msg MsgAddRebalance) Route() string { return ModuleName }
func (msg MsgAddRebalance) Type() string  { return TypeMsgAddRebalance }

func (msg MsgAddRebalance) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	return nil
}

func (msg MsgAddRebalance) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgAddRebalance) ProtoMessage()  {}
func (msg *MsgAddRebalance) Reset()     { *msg = MsgAddRebalance{} }
func (msg MsgAddRebalance) String() string {
	return fmt.Sprintf("MsgAddRebalance{RatioQueen: %s, RatioTranche: %s}", msg.RatioQueen, msg.RatioTranche)
}

// MsgSetOraclePrice sets the TWAP oracle price (governance only).
type MsgSetOraclePrice struct {
	Authority string `json:"authority"`
	Price     string `json:"price"`
}

func (msg MsgSetOraclePrice) Route() string { return ModuleName }
func (msg MsgSetOraclePrice) Type() string  { return TypeMsgSetOraclePrice }

func (msg MsgSetOraclePrice) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Authority); err != nil {
		return err
	}
	if msg.Price == "" {
		return ErrInvalidOraclePrice
	}
	return nil
}

func (msg MsgSetOraclePrice) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Authority)
	return []sdk.AccAddress{addr}
}

func (*MsgSetOraclePrice) ProtoMessage()  {}
func (msg *MsgSetOraclePrice) Reset()     { *msg = MsgSetOraclePrice{} }
func (msg MsgSetOraclePrice) String() string {
	return fmt.Sprintf("MsgSetOraclePrice{Price: %s}", msg.Price)
}

// Responses

type MsgCreateResponse struct {
	Minted string `json:"minted"`
}

type MsgRedeemResponse struct {
	Underlying string `json:"underlying"`
}

type MsgSplitResponse struct {
	Amount string `json:"amount"`
}

type MsgMergeResponse struct {
	Amount string `json:"amount"`
}

type MsgAddRebalanceResponse struct {
	Version string `json:"version"`
}

type MsgSetOraclePriceResponse struct {
	Price string `json:"price"`
}
