package types

import (
	"cosmossdk.io/math"
)

// EmissionSchedule reports the reward emission rate in tokens per second at
// a given unix time. Rates only change on week boundaries.
type EmissionSchedule interface {
	Rate(timestamp int64) math.Int
}

// HalvingSchedule emits InitialRate from StartTimestamp and halves every
// HalvingWeeks weeks, stopping entirely after MaxHalvings halvings.
type HalvingSchedule struct {
	StartTimestamp int64
	InitialRate    math.Int
	HalvingWeeks   int64
	MaxHalvings    int64
}

func (s HalvingSchedule) Rate(timestamp int64) math.Int {
	if timestamp < s.StartTimestamp || s.HalvingWeeks <= 0 {
		return math.ZeroInt()
	}
	weeks := (timestamp - s.StartTimestamp) / RewardWeek
	halvings := weeks / s.HalvingWeeks
	if halvings >= s.MaxHalvings {
		return math.ZeroInt()
	}
	divisor := math.NewInt(1).MulRaw(1 << uint(halvings))
	return s.InitialRate.Quo(divisor)
}
