package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// TrancheDEX metrics collector

var (
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all TrancheDEX metrics
type Collector struct {
	// Swap metrics
	SwapsTotal     *prometheus.CounterVec
	SwapBaseVolume *prometheus.CounterVec
	SwapFees       *prometheus.CounterVec
	SwapLatency    *prometheus.HistogramVec

	// Pool metrics
	PoolBaseBalance  *prometheus.GaugeVec
	PoolQuoteBalance *prometheus.GaugeVec
	PoolLPSupply     *prometheus.GaugeVec
	PoolInvariant    *prometheus.GaugeVec
	PoolAmpl         *prometheus.GaugeVec
	PoolVersion      *prometheus.GaugeVec

	// Liquidity metrics
	DepositsTotal    *prometheus.CounterVec
	WithdrawalsTotal *prometheus.CounterVec

	// Fund metrics
	SplitsTotal     *prometheus.CounterVec
	MergesTotal     *prometheus.CounterVec
	RebalancesTotal prometheus.Counter
	QueenNav        prometheus.Gauge
	BishopNav       prometheus.Gauge
	RookNav         prometheus.Gauge

	// Oracle metrics
	OraclePrice    prometheus.Gauge
	PriceDeviation *prometheus.GaugeVec

	// Gauge metrics
	GaugeTotalSupply   *prometheus.GaugeVec
	GaugeWorkingSupply *prometheus.GaugeVec
	RewardsClaimed     *prometheus.CounterVec
	BonusFunded        *prometheus.CounterVec

	// WebSocket metrics
	WSConnectionsActive prometheus.Gauge
	WSMessagesTotal     *prometheus.CounterVec

	// API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec
	RateLimitHits     *prometheus.CounterVec

	// System metrics
	BlockHeight prometheus.Gauge
	BlockTime   prometheus.Histogram
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

func newCollector() *Collector {
	c := &Collector{}

	c.SwapsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "swap",
			Name:      "total",
			Help:      "Total number of swaps settled",
		},
		[]string{"pool_id", "side"},
	)

	c.SwapBaseVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "swap",
			Name:      "base_volume",
			Help:      "Total swapped base tranche volume",
		},
		[]string{"pool_id"},
	)

	c.SwapFees = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "swap",
			Name:      "fees_quote",
			Help:      "Total trading fees collected in quote units",
		},
		[]string{"pool_id"},
	)

	c.SwapLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tranchedex",
			Subsystem: "swap",
			Name:      "latency_ms",
			Help:      "Swap settlement latency in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50},
		},
		[]string{"pool_id"},
	)

	c.PoolBaseBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "pool",
			Name:      "base_balance",
			Help:      "Pool base tranche reserve",
		},
		[]string{"pool_id"},
	)

	c.PoolQuoteBalance = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "pool",
			Name:      "quote_balance",
			Help:      "Pool quote reserve",
		},
		[]string{"pool_id"},
	)

	c.PoolLPSupply = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "pool",
			Name:      "lp_supply",
			Help:      "Outstanding LP shares",
		},
		[]string{"pool_id"},
	)

	c.PoolInvariant = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "pool",
			Name:      "invariant_d",
			Help:      "Stableswap invariant D",
		},
		[]string{"pool_id"},
	)

	c.PoolAmpl = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "pool",
			Name:      "ampl",
			Help:      "Current amplification coefficient",
		},
		[]string{"pool_id"},
	)

	c.PoolVersion = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "pool",
			Name:      "version",
			Help:      "Rebalance version the pool is settled to",
		},
		[]string{"pool_id"},
	)

	c.DepositsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "liquidity",
			Name:      "deposits_total",
			Help:      "Total liquidity deposits",
		},
		[]string{"pool_id"},
	)

	c.WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "liquidity",
			Name:      "withdrawals_total",
			Help:      "Total liquidity withdrawals",
		},
		[]string{"pool_id", "kind"},
	)

	c.SplitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "fund",
			Name:      "splits_total",
			Help:      "Total QUEEN splits into BISHOP/ROOK",
		},
		[]string{},
	)

	c.MergesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "fund",
			Name:      "merges_total",
			Help:      "Total BISHOP/ROOK merges into QUEEN",
		},
		[]string{},
	)

	c.RebalancesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "fund",
			Name:      "rebalances_total",
			Help:      "Total rebalances recorded",
		},
	)

	c.QueenNav = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "fund",
			Name:      "queen_nav",
			Help:      "QUEEN net asset value",
		},
	)

	c.BishopNav = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "fund",
			Name:      "bishop_nav",
			Help:      "BISHOP net asset value",
		},
	)

	c.RookNav = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "fund",
			Name:      "rook_nav",
			Help:      "ROOK net asset value",
		},
	)

	c.OraclePrice = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "oracle",
			Name:      "price",
			Help:      "Current oracle price",
		},
	)

	c.PriceDeviation = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "oracle",
			Name:      "deviation",
			Help:      "Execution price deviation from oracle",
		},
		[]string{"pool_id"},
	)

	c.GaugeTotalSupply = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "gauge",
			Name:      "total_supply",
			Help:      "Gauge staked LP supply",
		},
		[]string{"pool_id"},
	)

	c.GaugeWorkingSupply = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "gauge",
			Name:      "working_supply",
			Help:      "Gauge boost-weighted supply",
		},
		[]string{"pool_id"},
	)

	c.RewardsClaimed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "gauge",
			Name:      "rewards_claimed",
			Help:      "Total emission rewards claimed",
		},
		[]string{"pool_id"},
	)

	c.BonusFunded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "gauge",
			Name:      "bonus_funded",
			Help:      "Total bonus rewards funded",
		},
		[]string{"pool_id"},
	)

	c.WSConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "websocket",
			Name:      "connections_active",
			Help:      "Number of active WebSocket connections",
		},
	)

	c.WSMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "websocket",
			Name:      "messages_total",
			Help:      "Total WebSocket messages sent",
		},
		[]string{"channel"},
	)

	c.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tranchedex",
			Subsystem: "api",
			Name:      "request_latency_ms",
			Help:      "API request latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"method", "path"},
	)

	c.RateLimitHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tranchedex",
			Subsystem: "api",
			Name:      "rate_limit_hits",
			Help:      "Total rate limit hits",
		},
		[]string{"limit_type"},
	)

	c.BlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tranchedex",
			Subsystem: "system",
			Name:      "block_height",
			Help:      "Current block height",
		},
	)

	c.BlockTime = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "tranchedex",
			Subsystem: "system",
			Name:      "block_time_ms",
			Help:      "Block time in milliseconds",
			Buckets:   []float64{100, 250, 500, 1000, 2000, 5000},
		},
	)

	c.registerAll()

	return c
}

func (c *Collector) registerAll() {
	prometheus.MustRegister(c.SwapsTotal)
	prometheus.MustRegister(c.SwapBaseVolume)
	prometheus.MustRegister(c.SwapFees)
	prometheus.MustRegister(c.SwapLatency)

	prometheus.MustRegister(c.PoolBaseBalance)
	prometheus.MustRegister(c.PoolQuoteBalance)
	prometheus.MustRegister(c.PoolLPSupply)
	prometheus.MustRegister(c.PoolInvariant)
	prometheus.MustRegister(c.PoolAmpl)
	prometheus.MustRegister(c.PoolVersion)

	prometheus.MustRegister(c.DepositsTotal)
	prometheus.MustRegister(c.WithdrawalsTotal)

	prometheus.MustRegister(c.SplitsTotal)
	prometheus.MustRegister(c.MergesTotal)
	prometheus.MustRegister(c.RebalancesTotal)
	prometheus.MustRegister(c.QueenNav)
	prometheus.MustRegister(c.BishopNav)
	prometheus.MustRegister(c.RookNav)

	prometheus.MustRegister(c.OraclePrice)
	prometheus.MustRegister(c.PriceDeviation)

	prometheus.MustRegister(c.GaugeTotalSupply)
	prometheus.MustRegister(c.GaugeWorkingSupply)
	prometheus.MustRegister(c.RewardsClaimed)
	prometheus.MustRegister(c.BonusFunded)

	prometheus.MustRegister(c.WSConnectionsActive)
	prometheus.MustRegister(c.WSMessagesTotal)

	prometheus.MustRegister(c.APIRequestsTotal)
	prometheus.MustRegister(c.APIRequestLatency)
	prometheus.MustRegister(c.RateLimitHits)

	prometheus.MustRegister(c.BlockHeight)
	prometheus.MustRegister(c.BlockTime)
}

// ============ Recording Helpers ============

// RecordSwap records a settled swap
func (c *Collector) RecordSwap(poolID, side string) {
	c.SwapsTotal.WithLabelValues(poolID, side).Inc()
}

// RecordSwapVolume records swap volume and fee
func (c *Collector) RecordSwapVolume(poolID string, baseVolume, fee float64) {
	c.SwapBaseVolume.WithLabelValues(poolID).Add(baseVolume)
	c.SwapFees.WithLabelValues(poolID).Add(fee)
}

// RecordSwapLatency records swap settlement latency
func (c *Collector) RecordSwapLatency(poolID string, latencyMs float64) {
	c.SwapLatency.WithLabelValues(poolID).Observe(latencyMs)
}

// RecordPool records a pool snapshot
func (c *Collector) RecordPool(poolID string, base, quote, lpSupply, invariant float64, version uint64) {
	c.PoolBaseBalance.WithLabelValues(poolID).Set(base)
	c.PoolQuoteBalance.WithLabelValues(poolID).Set(quote)
	c.PoolLPSupply.WithLabelValues(poolID).Set(lpSupply)
	c.PoolInvariant.WithLabelValues(poolID).Set(invariant)
	c.PoolVersion.WithLabelValues(poolID).Set(float64(version))
}

// RecordNav records the fund's NAVs
func (c *Collector) RecordNav(queen, bishop, rook float64) {
	c.QueenNav.Set(queen)
	c.BishopNav.Set(bishop)
	c.RookNav.Set(rook)
}

// RecordRebalance records a rebalance
func (c *Collector) RecordRebalance() {
	c.RebalancesTotal.Inc()
}

// RecordClaim records a gauge reward claim
func (c *Collector) RecordClaim(poolID string, reward float64) {
	c.RewardsClaimed.WithLabelValues(poolID).Add(reward)
}

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(method, path, status string, latencyMs float64) {
	c.APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.APIRequestLatency.WithLabelValues(method, path).Observe(latencyMs)
}

// RecordWSMessage records a WebSocket message
func (c *Collector) RecordWSMessage(channel string) {
	c.WSMessagesTotal.WithLabelValues(channel).Inc()
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
