package app

import (
	"cosmossdk.io/math"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	sdk "github.com/cosmos/cosmos-sdk/types"

	gaugekeeper "github.com/castleswap/tranche-dex/x/gauge/keeper"
	gaugetypes "github.com/castleswap/tranche-dex/x/gauge/types"
)

// chessVotingEscrow adapts bank balances of the reward token into the
// gauge's voting-escrow view. Until a dedicated lockup module exists, a
// holder's full reward-token balance counts as locked.
type chessVotingEscrow struct {
	bankKeeper bankkeeper.BaseKeeper
}

func newChessVotingEscrow(bankKeeper bankkeeper.BaseKeeper) gaugekeeper.VotingEscrow {
	return chessVotingEscrow{bankKeeper: bankKeeper}
}

func (e chessVotingEscrow) BalanceOf(ctx sdk.Context, addr sdk.AccAddress) math.Int {
	return e.bankKeeper.GetBalance(ctx, addr, gaugetypes.DenomReward).Amount
}

func (e chessVotingEscrow) TotalLocked(ctx sdk.Context) math.Int {
	return e.bankKeeper.GetSupply(ctx, gaugetypes.DenomReward).Amount
}

// defaultEmissionSchedule is the mainnet reward curve: one token per second
// at genesis, halving yearly for eight years.
func defaultEmissionSchedule() gaugetypes.EmissionSchedule {
	return gaugetypes.HalvingSchedule{
		StartTimestamp: 0,
		InitialRate:    math.NewIntWithDecimal(1, 18),
		HalvingWeeks:   52,
		MaxHalvings:    8,
	}
}
