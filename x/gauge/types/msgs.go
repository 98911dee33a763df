package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Message types
const (
	TypeMsgClaim       = "claim"
	TypeMsgNotifyBonus = "notify_bonus"
)

// MsgClaim claims accrued rewards, bonus and rebalance distributions.
type MsgClaim struct {
	Claimer string `json:"claimer"`
	PoolID  string `json:"pool_id"`
}

func (msg MsgClaim) Route() string { return ModuleName }
func (msg MsgClaim) Type() string  { return TypeMsgClaim }
func (msg MsgClaim) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Claimer); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidDistribution
	}
	return nil
}
func (msg MsgClaim) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Claimer)
	return []sdk.AccAddress{addr}
}
func (*MsgClaim) ProtoMessage()  {}
func (msg *MsgClaim) Reset()     { *msg = MsgClaim{} }
func (msg MsgClaim) String() string {
	return fmt.Sprintf("MsgClaim{Claimer: %s, PoolID: %s}", msg.Claimer, msg.PoolID)
}

// MsgNotifyBonus starts a linear bonus program over a pool's gauge. The
// funder must have escrowed the bonus tokens with the gauge beforehand.
type MsgNotifyBonus struct {
	Funder   string `json:"funder"`
	PoolID   string `json:"pool_id"`
	Amount   string `json:"amount"`
	Duration int64  `json:"duration"`
}

func (msg MsgNotifyBonus) Route() string { return ModuleName }
func (msg MsgNotifyBonus) Type() string  { return TypeMsgNotifyBonus }
func (msg MsgNotifyBonus) ValidateBasic() error {
	if _, err := sdk.AccAddressFromBech32(msg.Funder); err != nil {
		return err
	}
	if msg.PoolID == "" {
		return ErrInvalidDistribution
	}
	if msg.Duration <= 0 {
		return ErrZeroAmount
	}
	return nil
}
func (msg MsgNotifyBonus) GetSigners() []sdk.AccAddress {
	addr, _ := sdk.AccAddressFromBech32(msg.Funder)
	return []sdk.AccAddress{addr}
}
func (*MsgNotifyBonus) ProtoMessage()  {}
func (msg *MsgNotifyBonus) Reset()     { *msg = MsgNotifyBonus{} }
func (msg MsgNotifyBonus) String() string {
	return fmt.Sprintf("MsgNotifyBonus{PoolID: %s, Amount: %s}", msg.PoolID, msg.Amount)
}

// Responses

type MsgClaimResponse struct {
	Reward string `json:"reward"`
	Bonus  string `json:"bonus"`
	Queen  string `json:"queen"`
	Bishop string `json:"bishop"`
	Rook   string `json:"rook"`
	Quote  string `json:"quote"`
}

type MsgNotifyBonusResponse struct{}
