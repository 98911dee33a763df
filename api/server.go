package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/castleswap/tranche-dex/api/middleware"
	"github.com/castleswap/tranche-dex/api/websocket"
	"github.com/castleswap/tranche-dex/metrics"
)

// Server represents the API server
type Server struct {
	httpServer *http.Server
	wsServer   *websocket.Server
	config     *Config

	// Services
	poolService  PoolService
	navService   NavService
	tradeService TradeService
	gaugeService GaugeService

	// Mock broadcaster, nil unless mock mode
	mock *MockService

	rateLimiter *middleware.RateLimiter
}

// Config contains server configuration
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	MockMode         bool
	DisableRateLimit bool // For testing purposes
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		MockMode:     false,
	}
}

// NewServer creates a new API server backed by the mock service
func NewServer(config *Config) *Server {
	mockService := NewMockService()
	s := NewServerWithServices(config, mockService, mockService, mockService, mockService)
	if s.config.MockMode {
		s.mock = mockService
	}
	return s
}

// NewServerWithServices creates a new API server with custom services
func NewServerWithServices(config *Config, poolSvc PoolService, navSvc NavService, tradeSvc TradeService, gaugeSvc GaugeService) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	wsConfig := websocket.DefaultServerConfig()
	wsConfig.Port = config.Port

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimitConfig())

	return &Server{
		config:       config,
		wsServer:     websocket.NewServer(wsConfig),
		poolService:  poolSvc,
		navService:   navSvc,
		tradeService: tradeSvc,
		gaugeService: gaugeSvc,
		rateLimiter:  rateLimiter,
	}
}

// Handler returns the route tree without the middleware chain.
// Tests and embedded deployments mount this directly.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/health", s.handleHealth)

	// Pool endpoints (read-only)
	mux.HandleFunc("/v1/pools", s.handlePools)
	mux.HandleFunc("/v1/pools/", s.handlePool)

	// Fund NAV
	mux.HandleFunc("/v1/nav", s.handleNav)

	// WebSocket
	mux.HandleFunc("/ws", s.wsServer.GetHub().ServeWS)

	// Prometheus metrics
	mux.Handle("/metrics", metrics.Handler())

	return mux
}

// Start starts the API server
func (s *Server) Start() error {
	mux := s.Handler()

	// Middleware chain: CORS -> RateLimit -> Handler
	var handler http.Handler
	if s.config.DisableRateLimit {
		handler = corsMiddleware(mux)
	} else {
		handler = corsMiddleware(
			middleware.RateLimitMiddleware(s.rateLimiter)(mux),
		)
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.wsServer.GetHub().Run()

	if s.mock != nil {
		go s.runMockBroadcaster()
	}

	log.Printf("API server starting on %s (mock mode: %v)", addr, s.config.MockMode)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// runMockBroadcaster pushes synthetic updates through the hub
func (s *Server) runMockBroadcaster() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	collector := metrics.GetCollector()

	for range ticker.C {
		trades := s.mock.Tick()

		if nav, err := s.navService.GetNav(); err == nil {
			s.wsServer.BroadcastNav(&websocket.NavMessage{
				QueenNav:    nav.QueenNav,
				BishopNav:   nav.BishopNav,
				RookNav:     nav.RookNav,
				OraclePrice: nav.OraclePrice,
				Version:     nav.Version,
				Timestamp:   nav.Timestamp,
			})
		}

		pools, err := s.poolService.GetPools()
		if err == nil {
			for _, pool := range pools {
				s.wsServer.BroadcastPool(&websocket.PoolMessage{
					PoolID:       pool.PoolID,
					BaseBalance:  pool.BaseBalance,
					QuoteBalance: pool.QuoteBalance,
					LPSupply:     pool.LPSupply,
					Ampl:         pool.Ampl,
					OraclePrice:  pool.OraclePrice,
					Version:      pool.Version,
					Timestamp:    pool.Timestamp,
				})
			}
		}

		for _, trade := range trades {
			s.wsServer.BroadcastTrade(&websocket.TradeMessage{
				TradeID:     trade.TradeID,
				PoolID:      trade.PoolID,
				Side:        trade.Side,
				BaseAmount:  trade.BaseAmount,
				QuoteAmount: trade.QuoteAmount,
				Price:       trade.Price,
				Timestamp:   trade.Timestamp,
			})
			collector.RecordSwap(trade.PoolID, trade.Side)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	mode := "real"
	if s.config.MockMode {
		mode = "mock"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"mode":      mode,
	})
}

func (s *Server) handlePools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	pools, err := s.poolService.GetPools()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"pools": pools,
	})
}

// handlePool handles /v1/pools/{id} and /v1/pools/{id}/{endpoint}
func (s *Server) handlePool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	path := r.URL.Path[len("/v1/pools/"):]

	poolID := path
	endpoint := ""
	for i, c := range path {
		if c == '/' {
			poolID = path[:i]
			endpoint = path[i+1:]
			break
		}
	}

	if poolID == "" {
		writeError(w, http.StatusBadRequest, "Pool ID required")
		return
	}

	switch endpoint {
	case "":
		pool, err := s.poolService.GetPool(poolID)
		if err != nil {
			writeError(w, http.StatusNotFound, "Pool not found")
			return
		}
		writeJSON(w, http.StatusOK, pool)

	case "trades":
		limit := 100
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil {
				limit = parsed
			}
		}
		trades, err := s.tradeService.GetRecentTrades(poolID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"trades": trades,
		})

	case "gauge":
		gauge, err := s.gaugeService.GetGauge(poolID)
		if err != nil {
			writeError(w, http.StatusNotFound, "Gauge not found")
			return
		}
		writeJSON(w, http.StatusOK, gauge)

	default:
		writeError(w, http.StatusNotFound, "Endpoint not found")
	}
}

func (s *Server) handleNav(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	nav, err := s.navService.GetNav()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, nav)
}

// Helper functions

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": message,
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
