package types

import "time"

// PoolSummary is the read-model for a stableswap pool
type PoolSummary struct {
	PoolID       string `json:"pool_id"`
	BaseTranche  string `json:"base_tranche"`
	BaseBalance  string `json:"base_balance"`
	QuoteBalance string `json:"quote_balance"`
	LPSupply     string `json:"lp_supply"`
	Ampl         string `json:"ampl"`
	FeeRate      string `json:"fee_rate"`
	AdminFeeRate string `json:"admin_fee_rate"`
	Version      uint64 `json:"version"`
	OraclePrice  string `json:"oracle_price"`
	Timestamp    int64  `json:"timestamp"`
}

// NavSummary is the read-model for the fund's tranche NAVs
type NavSummary struct {
	QueenNav    string `json:"queen_nav"`
	BishopNav   string `json:"bishop_nav"`
	RookNav     string `json:"rook_nav"`
	OraclePrice string `json:"oracle_price"`
	Version     uint64 `json:"version"`
	Timestamp   int64  `json:"timestamp"`
}

// TradeRecord is a settled swap
type TradeRecord struct {
	TradeID     string `json:"trade_id"`
	PoolID      string `json:"pool_id"`
	Side        string `json:"side"` // "buy" or "sell"
	BaseAmount  string `json:"base_amount"`
	QuoteAmount string `json:"quote_amount"`
	Price       string `json:"price"`
	Sequence    uint64 `json:"sequence"`
	Timestamp   int64  `json:"timestamp"`
}

// GaugeSummary is the read-model for a pool's liquidity gauge
type GaugeSummary struct {
	PoolID         string `json:"pool_id"`
	TotalSupply    string `json:"total_supply"`
	WorkingSupply  string `json:"working_supply"`
	EmissionRate   string `json:"emission_rate"`
	BonusRate      string `json:"bonus_rate"`
	BonusPeriodEnd int64  `json:"bonus_period_end"`
	Timestamp      int64  `json:"timestamp"`
}

// PoolService serves pool read-models
type PoolService interface {
	GetPools() ([]*PoolSummary, error)
	GetPool(poolID string) (*PoolSummary, error)
}

// NavService serves fund NAV read-models
type NavService interface {
	GetNav() (*NavSummary, error)
}

// TradeService serves recent trades per pool
type TradeService interface {
	GetRecentTrades(poolID string, limit int) ([]*TradeRecord, error)
}

// GaugeService serves gauge read-models
type GaugeService interface {
	GetGauge(poolID string) (*GaugeSummary, error)
}

// NowMillis returns current timestamp in milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
