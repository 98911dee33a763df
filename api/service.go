package api

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"

	"github.com/castleswap/tranche-dex/api/types"
)

// Re-export types for convenience
type (
	PoolSummary  = types.PoolSummary
	NavSummary   = types.NavSummary
	TradeRecord  = types.TradeRecord
	GaugeSummary = types.GaugeSummary
	PoolService  = types.PoolService
	NavService   = types.NavService
	TradeService = types.TradeService
	GaugeService = types.GaugeService
)

var unit = sdkmath.NewIntWithDecimal(1, 18)

// MockService generates synthetic pool, NAV and trade data for development.
// The oracle price performs a small random walk around 1.0 and the pool
// read-models are derived from it, so downstream consumers see data with
// realistic shape.
type MockService struct {
	pools  map[string]*PoolSummary
	nav    *NavSummary
	gauges map[string]*GaugeSummary
	trades *TradeWindow

	price sdkmath.Int
	rng   *rand.Rand
	mu    sync.RWMutex
}

// NewMockService creates a mock service with two seeded pools
func NewMockService() *MockService {
	s := &MockService{
		pools:  make(map[string]*PoolSummary),
		gauges: make(map[string]*GaugeSummary),
		trades: NewTradeWindow(1000),
		price:  unit,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for _, poolID := range []string{"bishop-usd", "rook-usd"} {
		s.pools[poolID] = &PoolSummary{
			PoolID:       poolID,
			BaseTranche:  strings.TrimSuffix(poolID, "-usd"),
			BaseBalance:  sdkmath.NewIntWithDecimal(5, 24).String(),
			QuoteBalance: sdkmath.NewIntWithDecimal(5, 24).String(),
			LPSupply:     sdkmath.NewIntWithDecimal(1, 25).String(),
			Ampl:         "85",
			FeeRate:      "0.000300000000000000",
			AdminFeeRate: "0.400000000000000000",
			Version:      0,
			OraclePrice:  unit.String(),
			Timestamp:    time.Now().UnixMilli(),
		}
		s.gauges[poolID] = &GaugeSummary{
			PoolID:         poolID,
			TotalSupply:    sdkmath.NewIntWithDecimal(1, 25).String(),
			WorkingSupply:  sdkmath.NewIntWithDecimal(4, 24).String(),
			EmissionRate:   unit.String(),
			BonusRate:      "0",
			BonusPeriodEnd: 0,
			Timestamp:      time.Now().UnixMilli(),
		}
	}

	s.nav = &NavSummary{
		QueenNav:    unit.String(),
		BishopNav:   unit.String(),
		RookNav:     unit.String(),
		OraclePrice: unit.String(),
		Version:     0,
		Timestamp:   time.Now().UnixMilli(),
	}

	return s
}

// GetPools returns all pool snapshots
func (s *MockService) GetPools() ([]*PoolSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pools := make([]*PoolSummary, 0, len(s.pools))
	for _, pool := range s.pools {
		copied := *pool
		pools = append(pools, &copied)
	}
	return pools, nil
}

// GetPool returns a single pool snapshot
func (s *MockService) GetPool(poolID string) (*PoolSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool, ok := s.pools[poolID]
	if !ok {
		return nil, fmt.Errorf("pool not found: %s", poolID)
	}
	copied := *pool
	return &copied, nil
}

// GetNav returns the current NAV snapshot
func (s *MockService) GetNav() (*NavSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := *s.nav
	return &copied, nil
}

// GetRecentTrades returns recent trades for a pool, newest first
func (s *MockService) GetRecentTrades(poolID string, limit int) ([]*TradeRecord, error) {
	return s.trades.Recent(poolID, limit), nil
}

// GetGauge returns the gauge snapshot for a pool
func (s *MockService) GetGauge(poolID string) (*GaugeSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gauge, ok := s.gauges[poolID]
	if !ok {
		return nil, fmt.Errorf("gauge not found: %s", poolID)
	}
	copied := *gauge
	return &copied, nil
}

// Tick advances the random walk and emits a synthetic trade per pool
func (s *MockService) Tick() []*TradeRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Random walk of up to 10 bps per tick
	drift := s.rng.Int63n(2001) - 1000
	s.price = s.price.Add(s.price.MulRaw(drift).QuoRaw(1_000_000))
	if s.price.LT(unit.QuoRaw(2)) {
		s.price = unit.QuoRaw(2)
	}

	now := time.Now().UnixMilli()
	queen := s.price.MulRaw(2)
	rook := queen.Sub(unit)
	if rook.IsNegative() {
		rook = sdkmath.ZeroInt()
	}
	s.nav = &NavSummary{
		QueenNav:    s.price.String(),
		BishopNav:   unit.String(),
		RookNav:     rook.String(),
		OraclePrice: s.price.String(),
		Version:     s.nav.Version,
		Timestamp:   now,
	}

	trades := make([]*TradeRecord, 0, len(s.pools))
	for poolID, pool := range s.pools {
		pool.OraclePrice = s.price.String()
		pool.Timestamp = now

		side := "buy"
		if s.rng.Intn(2) == 1 {
			side = "sell"
		}
		baseAmt := sdkmath.NewIntWithDecimal(int64(s.rng.Intn(900)+100), 18)
		quoteAmt := baseAmt.Mul(s.price).Quo(unit)

		trade := &TradeRecord{
			TradeID:     uuid.New().String(),
			PoolID:      poolID,
			Side:        side,
			BaseAmount:  baseAmt.String(),
			QuoteAmount: quoteAmt.String(),
			Price:       s.price.String(),
			Timestamp:   now,
		}
		s.trades.Record(trade)
		trades = append(trades, trade)
	}
	return trades
}

// nowMillis returns current timestamp in milliseconds
func nowMillis() int64 {
	return types.NowMillis()
}
