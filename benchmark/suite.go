package benchmark

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nvr-ai/go-blazeface/models"
	"github.com/nvr-ai/go-blazeface/models/model"
)

// Suite manages and executes benchmark scenarios.
type Suite struct {
	scenarios []Scenario
	outputDir string
	logger    *zap.Logger
	mu        sync.RWMutex
	results   []PerformanceMetrics
}

// NewSuite creates a new benchmark suite.
//
// Arguments:
//   - outputDir: Where SaveResults writes its files.
//   - logger: Progress logger. Nil disables logging.
//
// Returns:
//   - *Suite: The benchmark suite.
func NewSuite(outputDir string, logger *zap.Logger) *Suite {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suite{
		outputDir: outputDir,
		logger:    logger,
		scenarios: make([]Scenario, 0),
		results:   make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a scenario to the suite.
func (bs *Suite) AddScenario(scenario Scenario) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.scenarios = append(bs.scenarios, scenario)
}

// RunScenario executes a single scenario. The context is checked between
// iterations.
func (bs *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if scenario.Iterations <= 0 {
		return nil, errors.Errorf("scenario %s: iterations must be positive", scenario.Name)
	}
	if scenario.Candidates < 0 {
		return nil, errors.Errorf("scenario %s: candidates must not be negative", scenario.Name)
	}

	detector, err := models.NewDetector(model.NewModelArgs{
		Name: scenario.Model,
		NMS:  &model.NMSOverride{Weighted: &scenario.Weighted},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}
	output := SyntheticOutput(detector.Config(), scenario.Candidates, scenario.Seed)

	for i := 0; i < scenario.WarmupRuns; i++ {
		if _, err := detector.Detect(output); err != nil {
			return nil, errors.Wrapf(err, "scenario %s warmup", scenario.Name)
		}
	}

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	samples := make([]time.Duration, 0, scenario.Iterations)
	failures := 0
	start := time.Now()

	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		t := time.Now()
		dets, err := detector.Detect(output)
		samples = append(samples, time.Since(t))
		if err != nil {
			failures++
			continue
		}
		metrics.DetectionCount += len(dets)
	}

	metrics.TotalDuration = time.Since(start)

	var endMem runtime.MemStats
	runtime.ReadMemStats(&endMem)

	metrics.Latency = summarizeLatency(samples)
	metrics.FramesPerSecond = float64(scenario.Iterations) / metrics.TotalDuration.Seconds()
	metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		SysBytes:        endMem.Sys,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
		HeapSysBytes:    endMem.HeapSys,
	}

	return metrics, nil
}

// RunAllScenarios executes every scenario and records the results. A failed
// scenario is logged and skipped; a done context stops the run.
func (bs *Suite) RunAllScenarios(ctx context.Context) error {
	bs.mu.RLock()
	scenarios := make([]Scenario, len(bs.scenarios))
	copy(scenarios, bs.scenarios)
	bs.mu.RUnlock()

	for _, scenario := range scenarios {
		metrics, err := bs.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			bs.logger.Warn("scenario failed", zap.String("scenario", scenario.Name), zap.Error(err))
			continue
		}

		bs.mu.Lock()
		bs.results = append(bs.results, *metrics)
		bs.mu.Unlock()

		bs.logger.Info("scenario completed",
			zap.String("scenario", scenario.Name),
			zap.Float64("fps", metrics.FramesPerSecond),
			zap.Duration("p95", metrics.Latency.P95),
		)
	}
	return nil
}

// SaveResults writes the results as JSON and a CSV summary to the output
// directory and returns both paths.
func (bs *Suite) SaveResults() (resultsFile, summaryFile string, err error) {
	results := bs.GetResults()

	if err := os.MkdirAll(bs.outputDir, 0o755); err != nil {
		return "", "", errors.Wrap(err, "creating output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile = filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))
	summaryFile = filepath.Join(bs.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", "", errors.Wrap(err, "marshaling results")
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return "", "", errors.Wrap(err, "writing results file")
	}
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return "", "", errors.Wrap(err, "writing summary")
	}

	bs.logger.Info("results saved", zap.String("results", resultsFile), zap.String("summary", summaryFile))
	return resultsFile, summaryFile, nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	_ = w.Write([]string{
		"scenario", "model", "candidates", "weighted", "fps",
		"mean_us", "p95_us", "p99_us", "detections", "error_rate",
	})
	us := func(d time.Duration) string {
		return strconv.FormatFloat(float64(d)/float64(time.Microsecond), 'f', 2, 64)
	}
	for _, r := range results {
		_ = w.Write([]string{
			r.Scenario.Name,
			string(r.Scenario.Model),
			strconv.Itoa(r.Scenario.Candidates),
			strconv.FormatBool(r.Scenario.Weighted),
			strconv.FormatFloat(r.FramesPerSecond, 'f', 2, 64),
			us(r.Latency.Mean),
			us(r.Latency.P95),
			us(r.Latency.P99),
			strconv.Itoa(r.DetectionCount),
			strconv.FormatFloat(r.ErrorRate, 'f', 4, 64),
		})
	}
	w.Flush()
	return w.Error()
}

// GetResults returns a copy of all recorded results.
func (bs *Suite) GetResults() []PerformanceMetrics {
	bs.mu.RLock()
	defer bs.mu.RUnlock()

	results := make([]PerformanceMetrics, len(bs.results))
	copy(results, bs.results)
	return results
}
