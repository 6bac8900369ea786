package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpam/sentimento/pkg/cache"
	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/learning"
	"github.com/zpam/sentimento/pkg/profiler"
	"github.com/zpam/sentimento/pkg/textnorm"
)

var (
	trainConfig      string
	trainInput       string
	trainModel       string
	trainVectorizer  string
	trainMaxFeatures int
	trainSeed        int64
	trainTestSize    float64
	trainMaxIter     int
	trainProfile     bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the sentiment model on the prepared corpus",
	Long: `Split the prepared corpus into train and test partitions, fit the
TF-IDF vectorizer on the training partition, fit the logistic regression
classifier, report held-out accuracy and save both artifacts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(trainConfig)
		if err != nil {
			return err
		}
		defer closeLog()

		flags := cmd.Flags()
		if flags.Changed("input") {
			cfg.Data.ProcessedPath = trainInput
		}
		if flags.Changed("model") {
			cfg.Model.ClassifierPath = trainModel
		}
		if flags.Changed("vectorizer") {
			cfg.Model.VectorizerPath = trainVectorizer
		}
		if flags.Changed("max-features") {
			cfg.Training.MaxFeatures = trainMaxFeatures
		}
		if flags.Changed("seed") {
			cfg.Training.Seed = trainSeed
		}
		if flags.Changed("test-size") {
			cfg.Training.TestSize = trainTestSize
		}
		if flags.Changed("max-iter") {
			cfg.Training.MaxIter = trainMaxIter
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid training parameters: %w", err)
		}

		normalizer, err := textnorm.Load(cfg.Text.StopwordsFile)
		if err != nil {
			return err
		}

		var prof *profiler.Profiler
		if trainProfile {
			prof = profiler.NewProfiler()
		}

		fmt.Printf("🧠 Training sentiment model...\n")
		fmt.Printf("📄 Corpus: %s\n", cfg.Data.ProcessedPath)
		fmt.Printf("🎲 Seed: %d, test size: %.2f, max features: %d\n\n",
			cfg.Training.Seed, cfg.Training.TestSize, cfg.Training.MaxFeatures)

		var previousID string
		if _, info, err := learning.LoadClassifier(cfg.Model.ClassifierPath); err == nil {
			previousID = info.ModelID
		}

		trainer := learning.NewTrainer(learning.TrainOptionsFromConfig(cfg, normalizer.Fingerprint()), prof)
		result, err := trainer.TrainFile(cmd.Context(), cfg.Data.ProcessedPath, dataset.Options{
			Delimiter: dataset.ParseDelimiter(cfg.Data.ProcessedDelimiter),
			Encoding:  "utf-8",
		})
		if err != nil {
			return fmt.Errorf("training failed: %w", err)
		}

		err = prof.Measure(profiler.StageSave, func() error {
			return result.Save(cfg.Model.ClassifierPath, cfg.Model.VectorizerPath)
		})
		if err != nil {
			return err
		}

		result.PrintSummary(os.Stdout)

		fmt.Printf("\n✅ Training completed in %v\n", result.Duration)
		fmt.Printf("🎯 Accuracy: %.2f%%\n", result.Accuracy()*100)
		fmt.Printf("💾 Classifier saved to %s\n", cfg.Model.ClassifierPath)
		fmt.Printf("💾 Vectorizer saved to %s\n", cfg.Model.VectorizerPath)

		if cfg.Cache.Enabled && previousID != "" && previousID != result.Info.ModelID {
			purgeCache(cmd.Context(), cfg.Cache, previousID)
		}

		if trainProfile {
			fmt.Println()
			prof.PrintReport(os.Stdout)
		}
		return nil
	},
}

// purgeCache drops the cached predictions of a replaced model. Failures
// only leave stale keys behind until their TTL expires.
func purgeCache(ctx context.Context, cfg config.CacheConfig, modelID string) {
	c, err := cache.NewRedisCache(cfg)
	if err != nil {
		slog.Warn("cannot purge prediction cache", "error", err)
		return
	}
	defer c.Close()

	deleted, err := c.Purge(ctx, modelID)
	if err != nil {
		slog.Warn("prediction cache purge failed", "model_id", modelID, "error", err)
		return
	}
	fmt.Printf("🗑️  Purged %d cached predictions of model %s\n", deleted, modelID)
}

func init() {
	trainCmd.Flags().StringVarP(&trainConfig, "config", "c", "", "Configuration file path")
	trainCmd.Flags().StringVarP(&trainInput, "input", "i", "", "Prepared corpus (overrides data.processed_path)")
	trainCmd.Flags().StringVarP(&trainModel, "model", "m", "", "Classifier output path (overrides model.classifier_path)")
	trainCmd.Flags().StringVar(&trainVectorizer, "vectorizer", "", "Vectorizer output path (overrides model.vectorizer_path)")
	trainCmd.Flags().IntVar(&trainMaxFeatures, "max-features", 5000, "Maximum vocabulary size")
	trainCmd.Flags().Int64Var(&trainSeed, "seed", 42, "Random seed for the train/test split")
	trainCmd.Flags().Float64Var(&trainTestSize, "test-size", 0.2, "Fraction of rows held out for evaluation")
	trainCmd.Flags().IntVar(&trainMaxIter, "max-iter", 1000, "Maximum optimizer iterations")
	trainCmd.Flags().BoolVar(&trainProfile, "profile", false, "Print per-stage timings")
}
