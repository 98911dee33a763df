package e2e_api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/castleswap/tranche-dex/api"
	"github.com/castleswap/tranche-dex/api/types"
)

// ============================================================================
// E2E Tests - HTTP API -> Mock Service
// ============================================================================
// These tests make actual HTTP requests against the full route tree,
// backed by the in-memory mock service.
// ============================================================================

// TestServer wraps the API server for testing
type TestServer struct {
	server  *httptest.Server
	service *api.MockService
}

// NewTestServer creates a test server backed by the mock service
func NewTestServer() *TestServer {
	service := api.NewMockService()

	config := api.DefaultConfig()
	config.MockMode = true
	config.DisableRateLimit = true
	apiServer := api.NewServerWithServices(config, service, service, service, service)

	return &TestServer{
		server:  httptest.NewServer(apiServer.Handler()),
		service: service,
	}
}

func (ts *TestServer) Close() {
	ts.server.Close()
}

func (ts *TestServer) URL() string {
	return ts.server.URL
}

func (ts *TestServer) getJSON(t *testing.T, path string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(ts.URL() + path)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode %s response: %v", path, err)
		}
	}
	return resp
}

// ============================================================================
// Test: Health Check
// ============================================================================

func TestHealthCheck(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	var result map[string]interface{}
	resp := ts.getJSON(t, "/health", &result)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if result["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", result["status"])
	}
	if result["mode"] != "mock" {
		t.Errorf("Expected mock mode, got %v", result["mode"])
	}
}

// ============================================================================
// Test: Pool Endpoints
// ============================================================================

func TestListPoolsHTTP(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	var result struct {
		Pools []*types.PoolSummary `json:"pools"`
	}
	resp := ts.getJSON(t, "/v1/pools", &result)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if len(result.Pools) != 2 {
		t.Fatalf("Expected 2 pools, got %d", len(result.Pools))
	}

	seen := make(map[string]bool)
	for _, pool := range result.Pools {
		seen[pool.PoolID] = true
		if pool.Ampl != "85" {
			t.Errorf("Pool %s: expected ampl 85, got %s", pool.PoolID, pool.Ampl)
		}
		if pool.BaseBalance == "" || pool.QuoteBalance == "" {
			t.Errorf("Pool %s: missing balances", pool.PoolID)
		}
	}
	if !seen["bishop-usd"] || !seen["rook-usd"] {
		t.Errorf("Expected bishop-usd and rook-usd pools, got %v", seen)
	}
}

func TestGetPoolHTTP(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	var pool types.PoolSummary
	resp := ts.getJSON(t, "/v1/pools/bishop-usd", &pool)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if pool.PoolID != "bishop-usd" {
		t.Errorf("Expected pool_id bishop-usd, got %s", pool.PoolID)
	}
	if pool.BaseTranche != "bishop" {
		t.Errorf("Expected base_tranche bishop, got %s", pool.BaseTranche)
	}
	if pool.FeeRate != "0.000300000000000000" {
		t.Errorf("Unexpected fee rate %s", pool.FeeRate)
	}
}

func TestGetPoolNotFound(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	var result map[string]interface{}
	resp := ts.getJSON(t, "/v1/pools/knight-usd", &result)

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}
	if result["error"] == nil {
		t.Error("Expected error message in response body")
	}
}

func TestPoolMethodNotAllowed(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	resp, err := http.Post(ts.URL()+"/v1/pools", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", resp.StatusCode)
	}
}

func TestUnknownPoolEndpoint(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	resp := ts.getJSON(t, "/v1/pools/bishop-usd/depth", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown endpoint, got %d", resp.StatusCode)
	}
}

// ============================================================================
// Test: NAV Endpoint
// ============================================================================

func TestGetNavHTTP(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	var nav types.NavSummary
	resp := ts.getJSON(t, "/v1/nav", &nav)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if nav.BishopNav != "1000000000000000000" {
		t.Errorf("Expected bishop NAV at par, got %s", nav.BishopNav)
	}
	if nav.QueenNav == "" || nav.RookNav == "" || nav.OraclePrice == "" {
		t.Error("NAV response has empty fields")
	}
}

// ============================================================================
// Test: Trade History
// ============================================================================

func TestRecentTradesHTTP(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	var result struct {
		Trades []*types.TradeRecord `json:"trades"`
	}
	ts.getJSON(t, "/v1/pools/bishop-usd/trades", &result)
	if len(result.Trades) != 0 {
		t.Fatalf("Expected no trades before ticks, got %d", len(result.Trades))
	}

	// Each tick emits one synthetic trade per pool
	for i := 0; i < 3; i++ {
		ts.service.Tick()
	}

	result.Trades = nil
	resp := ts.getJSON(t, "/v1/pools/bishop-usd/trades", &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if len(result.Trades) != 3 {
		t.Fatalf("Expected 3 trades, got %d", len(result.Trades))
	}
	for i, trade := range result.Trades {
		if trade.PoolID != "bishop-usd" {
			t.Errorf("Trade %d: expected pool bishop-usd, got %s", i, trade.PoolID)
		}
		if trade.Side != "buy" && trade.Side != "sell" {
			t.Errorf("Trade %d: invalid side %s", i, trade.Side)
		}
	}
	// Newest first
	if result.Trades[0].Sequence < result.Trades[2].Sequence {
		t.Errorf("Expected newest trade first, got sequences %d..%d",
			result.Trades[0].Sequence, result.Trades[2].Sequence)
	}

	result.Trades = nil
	ts.getJSON(t, "/v1/pools/bishop-usd/trades?limit=1", &result)
	if len(result.Trades) != 1 {
		t.Errorf("Expected limit=1 to return 1 trade, got %d", len(result.Trades))
	}
}

// ============================================================================
// Test: Gauge Endpoint
// ============================================================================

func TestGetGaugeHTTP(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	var gauge types.GaugeSummary
	resp := ts.getJSON(t, "/v1/pools/rook-usd/gauge", &gauge)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if gauge.PoolID != "rook-usd" {
		t.Errorf("Expected pool_id rook-usd, got %s", gauge.PoolID)
	}
	if gauge.TotalSupply == "" || gauge.WorkingSupply == "" {
		t.Error("Gauge response has empty supplies")
	}

	resp = ts.getJSON(t, "/v1/pools/knight-usd/gauge", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 for unknown gauge, got %d", resp.StatusCode)
	}
}

// ============================================================================
// Test: Concurrent Reads Under Writes
// ============================================================================

func TestConcurrentReads(t *testing.T) {
	ts := NewTestServer()
	defer ts.Close()

	const (
		readers           = 8
		requestsPerReader = 20
	)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				ts.service.Tick()
			}
		}
	}()

	var failures int64
	var wg sync.WaitGroup
	paths := []string{"/v1/pools", "/v1/pools/bishop-usd", "/v1/nav", "/v1/pools/rook-usd/trades"}

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < requestsPerReader; j++ {
				path := paths[(id+j)%len(paths)]
				resp, err := http.Get(ts.URL() + path)
				if err != nil {
					atomic.AddInt64(&failures, 1)
					continue
				}
				if resp.StatusCode != http.StatusOK {
					atomic.AddInt64(&failures, 1)
				}
				resp.Body.Close()
			}
		}(i)
	}

	wg.Wait()
	close(done)

	if failures > 0 {
		t.Errorf("%d of %d concurrent requests failed", failures, readers*requestsPerReader)
	}
	fmt.Printf("Served %d concurrent requests during live ticks\n", readers*requestsPerReader)
}
