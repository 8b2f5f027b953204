package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/nvr-ai/go-blazeface/benchmark"
)

func main() {
	var (
		scenarioFile = flag.String("scenarios", "", "Path to a YAML or JSON scenario set")
		outputDir    = flag.String("output", "./benchmark_results", "Output directory for results")
		iterations   = flag.Int("iterations", 0, "Override the iteration count of every scenario")
		timeout      = flag.Duration("timeout", 10*time.Minute, "Benchmark timeout duration")
	)
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	set := benchmark.QuickScenarios()
	if *scenarioFile != "" {
		if set, err = benchmark.LoadScenarioSet(*scenarioFile); err != nil {
			logger.Fatal("loading scenarios", zap.Error(err))
		}
	}

	suite := benchmark.NewSuite(*outputDir, logger)
	for _, scenario := range set.Scenarios {
		if *iterations > 0 {
			scenario.Iterations = *iterations
		}
		suite.AddScenario(scenario)
	}
	logger.Info("scenarios loaded", zap.String("set", set.Name), zap.Int("count", len(set.Scenarios)))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	if err := suite.RunAllScenarios(ctx); err != nil {
		logger.Fatal("benchmark execution failed", zap.Error(err))
	}
	if _, _, err := suite.SaveResults(); err != nil {
		logger.Fatal("saving results", zap.Error(err))
	}

	results := suite.GetResults()
	fmt.Printf("\n=== BENCHMARK RESULTS SUMMARY (%v) ===\n", time.Since(start).Round(time.Millisecond))
	for _, r := range results {
		fmt.Printf("  %-40s %10.0f calls/s  p95 %v\n", r.Scenario.Name, r.FramesPerSecond, r.Latency.P95)
	}
}

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(os.Stderr, "Measures detector post-processing throughput on synthetic outputs.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
}
