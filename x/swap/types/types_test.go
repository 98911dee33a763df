package types

import (
	"testing"

	"cosmossdk.io/math"
)

func TestAmplRampAt(t *testing.T) {
	ramp := AmplRamp{
		Start:          math.NewInt(100),
		End:            math.NewInt(200),
		StartTimestamp: 1000,
		EndTimestamp:   2000,
	}

	cases := []struct {
		now  int64
		want int64
	}{
		{500, 100},
		{1000, 100},
		{1250, 125},
		{1500, 150},
		{2000, 200},
		{9999, 200},
	}
	for _, tc := range cases {
		if got := ramp.At(tc.now); !got.Equal(math.NewInt(tc.want)) {
			t.Errorf("At(%d) = %s, want %d", tc.now, got, tc.want)
		}
	}

	// A downward ramp interpolates the same way.
	down := AmplRamp{
		Start:          math.NewInt(200),
		End:            math.NewInt(100),
		StartTimestamp: 1000,
		EndTimestamp:   2000,
	}
	if got := down.At(1500); !got.Equal(math.NewInt(150)) {
		t.Errorf("down At(1500) = %s, want 150", got)
	}

	// A degenerate window holds the start value until the end passes.
	flat := AmplRamp{
		Start:          math.NewInt(85),
		End:            math.NewInt(85),
		StartTimestamp: 1000,
		EndTimestamp:   1000,
	}
	if got := flat.At(999); !got.Equal(math.NewInt(85)) {
		t.Errorf("flat At(999) = %s, want 85", got)
	}
	if got := flat.At(1001); !got.Equal(math.NewInt(85)) {
		t.Errorf("flat At(1001) = %s, want 85", got)
	}
}

func TestEffectiveFeeRate(t *testing.T) {
	pool := &Pool{
		FeeRate:          math.LegacyMustNewDecFromStr("0.0003"),
		SurchargeRate:    math.LegacyMustNewDecFromStr("0.01"),
		CoolingOffPeriod: 1000,
	}

	// No rebalance yet: base rate only.
	if got := pool.EffectiveFeeRate(5000); !got.Equal(pool.FeeRate) {
		t.Errorf("rate before any rebalance = %s, want %s", got, pool.FeeRate)
	}

	pool.LastRebalanceTimestamp = 10_000

	// Immediately after the rebalance the full surcharge applies.
	if got := pool.EffectiveFeeRate(10_000); !got.Equal(math.LegacyMustNewDecFromStr("0.0103")) {
		t.Errorf("rate at rebalance = %s, want 0.0103", got)
	}
	// Halfway through the cooling-off the surcharge is halved.
	if got := pool.EffectiveFeeRate(10_500); !got.Equal(math.LegacyMustNewDecFromStr("0.0053")) {
		t.Errorf("rate at half decay = %s, want 0.0053", got)
	}
	// Past the window only the base rate remains.
	if got := pool.EffectiveFeeRate(11_000); !got.Equal(pool.FeeRate) {
		t.Errorf("rate after cooling-off = %s, want %s", got, pool.FeeRate)
	}

	// Without a surcharge the schedule is flat.
	flat := &Pool{FeeRate: math.LegacyMustNewDecFromStr("0.0003"), SurchargeRate: math.LegacyZeroDec()}
	flat.LastRebalanceTimestamp = 10_000
	if got := flat.EffectiveFeeRate(10_000); !got.Equal(flat.FeeRate) {
		t.Errorf("flat rate = %s, want %s", got, flat.FeeRate)
	}
}

func TestRebalanceResultOccurred(t *testing.T) {
	if (RebalanceResult{}).Occurred() {
		t.Error("zero result reported a rebalance")
	}
	if !(RebalanceResult{Timestamp: 1}).Occurred() {
		t.Error("stamped result reported no rebalance")
	}
}

func TestPoolAddress(t *testing.T) {
	a := PoolAddress("bishop-usd")
	b := PoolAddress("rook-usd")
	if a.Equals(b) {
		t.Error("different pools share an escrow address")
	}
	if !a.Equals(PoolAddress("bishop-usd")) {
		t.Error("pool address is not deterministic")
	}
}
