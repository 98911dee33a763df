package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/castleswap/tranche-dex/pkg/curve"
)

// SolveRecord records one solver invocation
type SolveRecord struct {
	Latency    time.Duration
	Iterations string
}

// BenchmarkResults holds all test results
type BenchmarkResults struct {
	NewtonSolves     int64
	ClosedFormSolves int64
	QuoteSolves      int64
	Failed           int64
	Mismatches       int64
	NewtonLatencies  []time.Duration
	ClosedLatencies  []time.Duration
	QuoteLatencies   []time.Duration
	mu               sync.Mutex
}

func (r *BenchmarkResults) AddNewton(latency time.Duration, ok bool) {
	atomic.AddInt64(&r.NewtonSolves, 1)
	if !ok {
		atomic.AddInt64(&r.Failed, 1)
	}
	r.mu.Lock()
	r.NewtonLatencies = append(r.NewtonLatencies, latency)
	r.mu.Unlock()
}

func (r *BenchmarkResults) AddClosed(latency time.Duration, ok bool) {
	atomic.AddInt64(&r.ClosedFormSolves, 1)
	if !ok {
		atomic.AddInt64(&r.Failed, 1)
	}
	r.mu.Lock()
	r.ClosedLatencies = append(r.ClosedLatencies, latency)
	r.mu.Unlock()
}

func (r *BenchmarkResults) AddQuote(latency time.Duration, ok bool) {
	atomic.AddInt64(&r.QuoteSolves, 1)
	if !ok {
		atomic.AddInt64(&r.Failed, 1)
	}
	r.mu.Lock()
	r.QuoteLatencies = append(r.QuoteLatencies, latency)
	r.mu.Unlock()
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(latencies))
	copy(sorted, latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)) * p)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func avg(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	return total / time.Duration(len(latencies))
}

func minOf(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	m := latencies[0]
	for _, l := range latencies {
		if l < m {
			m = l
		}
	}
	return m
}

func maxOf(latencies []time.Duration) time.Duration {
	if len(latencies) == 0 {
		return 0
	}
	m := latencies[0]
	for _, l := range latencies {
		if l > m {
			m = l
		}
	}
	return m
}

// testCase is one randomized pool state
type testCase struct {
	base  sdkmath.Int
	quote sdkmath.Int
	ampl  sdkmath.Int
	price sdkmath.Int
}

func randomCase(rng *rand.Rand) testCase {
	unit := sdkmath.NewIntWithDecimal(1, 18)
	// Reserves between 1e6 and 1e18, imbalanced up to 10:1.
	base := sdkmath.NewInt(1_000_000).MulRaw(1 + rng.Int63n(1_000_000)).MulRaw(1 + rng.Int63n(1_000_000))
	quote := base.MulRaw(1 + rng.Int63n(10)).QuoRaw(1 + rng.Int63n(10))
	ampl := sdkmath.NewInt(1 + rng.Int63n(1000))
	// Oracle between 0.5 and 2.0.
	price := unit.MulRaw(50 + rng.Int63n(150)).QuoRaw(100)
	return testCase{base: base, quote: quote, ampl: ampl, price: price}
}

func main() {
	solveCount := flag.Int("n", 100000, "Number of solves per solver")
	concurrency := flag.Int("c", 8, "Concurrency level")
	seed := flag.Int64("seed", 42, "Random seed for pool states")
	outputFile := flag.String("o", "", "Output JSON report file")
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║        TrancheDEX Invariant Solver Benchmark - D and Quote       ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Solves/Solver: %d (total: %d)\n", *solveCount, *solveCount*3)
	fmt.Printf("  Concurrency:   %d\n", *concurrency)
	fmt.Printf("  Seed:          %d\n", *seed)
	fmt.Println()

	// Pre-generate cases so the solvers see identical inputs.
	rng := rand.New(rand.NewSource(*seed))
	cases := make([]testCase, *solveCount)
	for i := range cases {
		cases[i] = randomCase(rng)
	}

	results := &BenchmarkResults{
		NewtonLatencies: make([]time.Duration, 0, *solveCount),
		ClosedLatencies: make([]time.Duration, 0, *solveCount),
		QuoteLatencies:  make([]time.Duration, 0, *solveCount),
	}

	sem := make(chan struct{}, *concurrency)
	var wg sync.WaitGroup

	var processed int64
	total := int64(*solveCount)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := atomic.LoadInt64(&processed)
				pct := float64(p) / float64(total) * 100
				fmt.Printf("\r  Progress: %d/%d (%.1f%%) | Mismatches: %d    ",
					p, total, pct, atomic.LoadInt64(&results.Mismatches))
			}
		}
	}()

	fmt.Println("Starting benchmark...")
	startTime := time.Now()

	for i := range cases {
		wg.Add(1)
		go func(tc testCase) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			start := time.Now()
			dNewton, errN := curve.SolveD(tc.base, tc.quote, tc.ampl, tc.price)
			results.AddNewton(time.Since(start), errN == nil)

			start = time.Now()
			dClosed, errC := curve.SolveDClosedForm(tc.base, tc.quote, tc.ampl, tc.price)
			results.AddClosed(time.Since(start), errC == nil)

			// The two solvers must agree to within a unit in the last
			// place or the on-chain path is unstable.
			if errN == nil && errC == nil {
				if dNewton.Sub(dClosed).Abs().GT(sdkmath.NewInt(2)) {
					atomic.AddInt64(&results.Mismatches, 1)
				}
			}

			// Round trip: solve the quote side back out of D.
			if errN == nil && dNewton.IsPositive() {
				start = time.Now()
				_, errQ := curve.SolveQuote(tc.base, dNewton, tc.ampl, tc.price)
				results.AddQuote(time.Since(start), errQ == nil)
			}

			atomic.AddInt64(&processed, 1)
		}(cases[i])
	}

	wg.Wait()
	close(done)
	elapsed := time.Since(startTime)

	fmt.Printf("\r                                                                              \r")
	fmt.Println()

	totalSolves := results.NewtonSolves + results.ClosedFormSolves + results.QuoteSolves
	throughput := float64(totalSolves) / elapsed.Seconds()

	fmt.Println("╔══════════════════════════════════════════════════════════════════╗")
	fmt.Println("║                       BENCHMARK RESULTS                          ║")
	fmt.Println("╚══════════════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("Test Duration:        %v\n", elapsed.Round(time.Millisecond))
	fmt.Printf("Throughput:           %.2f solves/sec\n", throughput)
	fmt.Println()

	fmt.Println("── Solver Statistics ──────────────────────────────────────────────")
	fmt.Printf("  Total Solves:       %d\n", totalSolves)
	fmt.Printf("  Newton D:           %d\n", results.NewtonSolves)
	fmt.Printf("  Closed-Form D:      %d\n", results.ClosedFormSolves)
	fmt.Printf("  Quote Solves:       %d\n", results.QuoteSolves)
	fmt.Printf("  Failures:           %d\n", results.Failed)
	fmt.Printf("  Solver Mismatches:  %d\n", results.Mismatches)
	fmt.Println()

	fmt.Println("── Newton D Latency ───────────────────────────────────────────────")
	fmt.Printf("  Min:                %v\n", minOf(results.NewtonLatencies))
	fmt.Printf("  Max:                %v\n", maxOf(results.NewtonLatencies))
	fmt.Printf("  Average:            %v\n", avg(results.NewtonLatencies))
	fmt.Printf("  P50 (Median):       %v\n", percentile(results.NewtonLatencies, 0.50))
	fmt.Printf("  P99:                %v\n", percentile(results.NewtonLatencies, 0.99))
	fmt.Println()

	fmt.Println("── Closed-Form D Latency ──────────────────────────────────────────")
	fmt.Printf("  Min:                %v\n", minOf(results.ClosedLatencies))
	fmt.Printf("  Max:                %v\n", maxOf(results.ClosedLatencies))
	fmt.Printf("  Average:            %v\n", avg(results.ClosedLatencies))
	fmt.Printf("  P99:                %v\n", percentile(results.ClosedLatencies, 0.99))
	fmt.Println()

	fmt.Println("── Quote Solve Latency ────────────────────────────────────────────")
	fmt.Printf("  Min:                %v\n", minOf(results.QuoteLatencies))
	fmt.Printf("  Max:                %v\n", maxOf(results.QuoteLatencies))
	fmt.Printf("  Average:            %v\n", avg(results.QuoteLatencies))
	fmt.Printf("  P99:                %v\n", percentile(results.QuoteLatencies, 0.99))
	fmt.Println()

	fmt.Println("── Assessment ─────────────────────────────────────────────────────")
	if results.Mismatches == 0 {
		fmt.Println("  ✅ Consistency:     Newton and closed form agree")
	} else {
		fmt.Println("  ❌ Consistency:     Solvers disagree, investigate before release")
	}
	avgLat := avg(results.NewtonLatencies)
	if avgLat < 10*time.Microsecond {
		fmt.Println("  ✅ Latency:         Excellent (<10µs avg)")
	} else if avgLat < 100*time.Microsecond {
		fmt.Println("  ✅ Latency:         Good (<100µs avg)")
	} else if avgLat < time.Millisecond {
		fmt.Println("  ⚠️  Latency:         Acceptable (<1ms avg)")
	} else {
		fmt.Println("  ❌ Latency:         High (>1ms avg)")
	}
	if throughput > 1_000_000 {
		fmt.Println("  ✅ Throughput:      Excellent (>1M/s)")
	} else if throughput > 100_000 {
		fmt.Println("  ✅ Throughput:      Good (>100K/s)")
	} else {
		fmt.Println("  ⚠️  Throughput:      Low (<100K/s)")
	}
	fmt.Println()
	fmt.Println("══════════════════════════════════════════════════════════════════")

	if *outputFile != "" {
		report := map[string]interface{}{
			"config": map[string]interface{}{
				"solves_per_solver": *solveCount,
				"concurrency":       *concurrency,
				"seed":              *seed,
			},
			"summary": map[string]interface{}{
				"duration_ms":        elapsed.Milliseconds(),
				"throughput_per_sec": throughput,
				"total_solves":       totalSolves,
				"failures":           results.Failed,
				"mismatches":         results.Mismatches,
			},
			"latency_newton": map[string]interface{}{
				"min_us": minOf(results.NewtonLatencies).Microseconds(),
				"max_us": maxOf(results.NewtonLatencies).Microseconds(),
				"avg_us": avg(results.NewtonLatencies).Microseconds(),
				"p50_us": percentile(results.NewtonLatencies, 0.50).Microseconds(),
				"p99_us": percentile(results.NewtonLatencies, 0.99).Microseconds(),
			},
			"latency_closed_form": map[string]interface{}{
				"min_us": minOf(results.ClosedLatencies).Microseconds(),
				"max_us": maxOf(results.ClosedLatencies).Microseconds(),
				"avg_us": avg(results.ClosedLatencies).Microseconds(),
				"p99_us": percentile(results.ClosedLatencies, 0.99).Microseconds(),
			},
			"latency_quote": map[string]interface{}{
				"min_us": minOf(results.QuoteLatencies).Microseconds(),
				"max_us": maxOf(results.QuoteLatencies).Microseconds(),
				"avg_us": avg(results.QuoteLatencies).Microseconds(),
				"p99_us": percentile(results.QuoteLatencies, 0.99).Microseconds(),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		}

		file, err := os.Create(*outputFile)
		if err != nil {
			fmt.Printf("Failed to create report file: %v\n", err)
		} else {
			defer file.Close()
			encoder := json.NewEncoder(file)
			encoder.SetIndent("", "  ")
			encoder.Encode(report)
			fmt.Printf("\nReport saved to: %s\n", *outputFile)
		}
	}
}
