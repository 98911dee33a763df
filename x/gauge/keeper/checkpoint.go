package keeper

import (
	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/castleswap/tranche-dex/x/gauge/types"
)

// checkpoint advances a pool's reward integrals from the last checkpoint to
// the current block time, walking week by week because the emission rate
// only changes on week boundaries. The walk is capped at MaxWeekIterations
// steps; a gauge idle longer than that catches up over multiple calls.
func (k *Keeper) checkpoint(ctx sdk.Context, g *types.GlobalState) {
	now := ctx.BlockTime().Unix()
	t := g.LastTimestamp
	if now <= t {
		return
	}
	for i := 0; i < types.MaxWeekIterations && t < now; i++ {
		end := (t/types.RewardWeek + 1) * types.RewardWeek
		if end > now {
			end = now
		}

		if g.WorkingSupply.IsPositive() && k.schedule != nil {
			rate := k.schedule.Rate(t)
			if rate.IsPositive() {
				reward := rate.MulRaw(end - t)
				g.Integral = g.Integral.Add(math.LegacyNewDecFromInt(reward).QuoInt(g.WorkingSupply))
			}
		}

		// Bonus accrues per LP share, unweighted by boost, only while
		// the program runs.
		if g.TotalSupply.IsPositive() && g.BonusRate.IsPositive() {
			bonusEnd := end
			if bonusEnd > g.BonusPeriodEnd {
				bonusEnd = g.BonusPeriodEnd
			}
			if bonusEnd > t {
				bonus := g.BonusRate.MulRaw(bonusEnd - t)
				g.BonusIntegral = g.BonusIntegral.Add(math.LegacyNewDecFromInt(bonus).QuoInt(g.TotalSupply))
			}
		}

		t = end
	}
	g.LastTimestamp = t
}

// checkpointUser settles an account's accrued rewards against the global
// integrals. Must run after checkpoint and before any balance change.
func checkpointUser(user *types.UserState, g *types.GlobalState) {
	earned := g.Integral.Sub(user.IntegralPaid).MulInt(user.WorkingBalance).TruncateInt()
	user.ClaimableReward = user.ClaimableReward.Add(earned)
	user.IntegralPaid = g.Integral

	bonus := g.BonusIntegral.Sub(user.BonusIntegralPaid).MulInt(user.Balance).TruncateInt()
	user.ClaimableBonus = user.ClaimableBonus.Add(bonus)
	user.BonusIntegralPaid = g.BonusIntegral
}
