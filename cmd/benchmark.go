package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zpam/sentimento/pkg/corpus"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/learning"
	"github.com/zpam/sentimento/pkg/predictor"
	"github.com/zpam/sentimento/pkg/profiler"
)

// stageComment is the end-to-end time of one Predict call
const stageComment = "comment"

var (
	benchmarkConfig     string
	benchmarkInput      string
	benchmarkColumn     string
	benchmarkLabel      string
	benchmarkDelimiter  string
	benchmarkEncoding   string
	benchmarkRuns       int
	benchmarkConcurrent int
)

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Measure prediction latency over a CSV file",
	Long: `Classify every comment of a CSV file one or more times and report
per-stage latency percentiles. When the file has a score column the
predictions are also scored against it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if benchmarkInput == "" {
			return fmt.Errorf("input file is required")
		}
		if benchmarkRuns < 1 {
			return fmt.Errorf("runs must be at least 1")
		}
		if benchmarkConcurrent < 1 {
			return fmt.Errorf("concurrent must be at least 1")
		}

		cfg, closeLog, err := loadConfig(benchmarkConfig)
		if err != nil {
			return err
		}
		defer closeLog()

		table, err := dataset.ReadFile(benchmarkInput, dataset.Options{
			Delimiter: dataset.ParseDelimiter(benchmarkDelimiter),
			Encoding:  benchmarkEncoding,
		})
		if err != nil {
			return err
		}

		column := benchmarkColumn
		if column == "" {
			column = predictor.SuggestTextColumn(table)
		}
		texts, err := table.Column(column)
		if err != nil {
			return err
		}
		if len(texts) == 0 {
			return fmt.Errorf("no comments found in %s", benchmarkInput)
		}

		var expected []string
		if table.HasColumn(benchmarkLabel) {
			expected, _ = table.Column(benchmarkLabel)
		}

		prof := profiler.NewProfiler()
		svc, err := openService(cfg, predictor.WithProfiler(prof))
		if err != nil {
			return err
		}
		defer svc.Close()

		fmt.Printf("🚀 Sentimento Prediction Benchmark\n")
		fmt.Printf("📁 Input file: %s\n", benchmarkInput)
		fmt.Printf("💬 Comments found: %d (column %q)\n", len(texts), column)
		fmt.Printf("🔄 Benchmark runs: %d\n", benchmarkRuns)
		fmt.Printf("⚡ Concurrent workers: %d\n", benchmarkConcurrent)
		if benchmarkConfig != "" {
			fmt.Printf("⚙️ Configuration: %s\n", benchmarkConfig)
		}
		fmt.Printf("\n🏃 Running benchmark...\n\n")

		start := time.Now()
		var labels []string
		for run := 0; run < benchmarkRuns; run++ {
			labels, err = runBenchmark(cmd.Context(), svc, prof, texts, benchmarkConcurrent)
			if err != nil {
				return err
			}
		}
		total := time.Since(start)

		displayBenchmarkResults(prof, total, len(texts)*benchmarkRuns)

		if expected != nil {
			fmt.Printf("🎯 Agreement with column %q:\n", benchmarkLabel)
			scoreAgainst(expected, labels, svc.Classes())
		}

		stats := svc.Stats()
		if cfg.Cache.Enabled {
			fmt.Printf("🗄️  Cache hits: %d, misses: %d\n", stats.CacheHits, stats.CacheMisses)
		}

		return nil
	},
}

// runBenchmark predicts every text once and records per-comment latency.
// A concurrency below one runs GOMAXPROCS predictions at a time.
func runBenchmark(ctx context.Context, svc *predictor.Service, prof *profiler.Profiler, texts []string, concurrent int) ([]string, error) {
	labels := make([]string, len(texts))
	if concurrent < 1 {
		concurrent = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrent)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			timer := prof.Start(stageComment)
			p, err := svc.Predict(ctx, text)
			timer.Stop()
			if err != nil {
				return err
			}
			labels[i] = p.Label
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return labels, nil
}

func scoreAgainst(expected, predicted, classes []string) {
	var truth, got []string
	for i, label := range expected {
		if dataset.IsBlank(label) {
			continue
		}
		truth = append(truth, corpus.CanonicalLabel(label))
		got = append(got, predicted[i])
	}
	if len(truth) == 0 {
		fmt.Printf("  no labelled rows\n\n")
		return
	}
	learning.Evaluate(truth, got, classes).PrintReport(os.Stdout)
	fmt.Println()
}

func displayBenchmarkResults(prof *profiler.Profiler, total time.Duration, count int) {
	s := prof.GetStats(stageComment)

	fmt.Printf("📊 Benchmark Results\n")
	fmt.Printf("═══════════════════════════════════════\n\n")

	fmt.Printf("⚡ Performance Metrics:\n")
	fmt.Printf("  Total comments processed: %d\n", count)
	fmt.Printf("  Total time: %v\n", total)
	fmt.Printf("  Average time per comment: %s\n", profiler.FormatDuration(s.Average))
	fmt.Printf("  Comments per second: %.0f\n", float64(count)/total.Seconds())
	fmt.Printf("\n")

	fmt.Printf("📈 Time Distribution:\n")
	fmt.Printf("  Min time: %s\n", profiler.FormatDuration(s.Min))
	fmt.Printf("  Max time: %s\n", profiler.FormatDuration(s.Max))
	fmt.Printf("  Median time: %s\n", profiler.FormatDuration(s.Median))
	fmt.Printf("  95th percentile: %s\n", profiler.FormatDuration(s.P95))
	fmt.Printf("  99th percentile: %s\n", profiler.FormatDuration(s.P99))
	fmt.Printf("\n")

	prof.PrintReport(os.Stdout)
	fmt.Printf("\n")

	fmt.Printf("🏆 Performance Assessment:\n")
	switch {
	case s.Average < time.Millisecond:
		fmt.Printf("  ✅ EXCELLENT: Average time %s < 1 ms\n", profiler.FormatDuration(s.Average))
	case s.Average < 5*time.Millisecond:
		fmt.Printf("  ✅ GOOD: Average time %s < 5 ms\n", profiler.FormatDuration(s.Average))
	default:
		fmt.Printf("  ❌ SLOW: Average time %s > 5 ms\n", profiler.FormatDuration(s.Average))
	}
	fmt.Printf("\n")
}

func init() {
	benchmarkCmd.Flags().StringVarP(&benchmarkConfig, "config", "c", "", "Configuration file path")
	benchmarkCmd.Flags().StringVarP(&benchmarkInput, "input", "i", "", "CSV file with comments")
	benchmarkCmd.Flags().StringVar(&benchmarkColumn, "column", "", "Comment column (default: suggested)")
	benchmarkCmd.Flags().StringVar(&benchmarkLabel, "label", "classificacao", "Score column to compare against, if present")
	benchmarkCmd.Flags().StringVar(&benchmarkDelimiter, "delimiter", ";", "Input delimiter")
	benchmarkCmd.Flags().StringVar(&benchmarkEncoding, "encoding", "auto", "Input encoding: utf-8, latin-1 or auto")
	benchmarkCmd.Flags().IntVarP(&benchmarkRuns, "runs", "r", 1, "Number of passes over the file")
	benchmarkCmd.Flags().IntVar(&benchmarkConcurrent, "concurrent", runtime.GOMAXPROCS(0), "Concurrent workers")
}
