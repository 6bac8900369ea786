package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpam/sentimento/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
	Long:  `Generate and manage Sentimento configuration files`,
}

var configGenCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Long:  `Generate a default configuration file with every option set to its default`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := "config.yaml"
		if len(args) > 0 {
			configPath = args[0]
		}

		if _, err := os.Stat(configPath); err == nil {
			overwrite, _ := cmd.Flags().GetBool("force")
			if !overwrite {
				return fmt.Errorf("config file already exists: %s (use --force to overwrite)", configPath)
			}
		}

		if err := config.DefaultConfig().SaveConfig(configPath); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("✅ Configuration file generated: %s\n", configPath)
		fmt.Printf("📝 Edit the file to change data paths, training parameters or the server\n")
		fmt.Printf("🚀 Use 'sentimento train --config %s' to use the configuration\n", configPath)

		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Long:  `Validate a configuration file for syntax and logical errors`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := args[0]

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("❌ Configuration validation failed: %w", err)
		}

		warnings := validateConfigLogic(cfg)

		fmt.Printf("✅ Configuration is valid: %s\n", configPath)

		if len(warnings) > 0 {
			fmt.Printf("\n⚠️  Warnings:\n")
			for _, warning := range warnings {
				fmt.Printf("  - %s\n", warning)
			}
		}

		fmt.Printf("\n📊 Configuration Summary:\n")
		fmt.Printf("  Raw corpus: %s\n", cfg.Data.RawPath)
		fmt.Printf("  Prepared corpus: %s\n", cfg.Data.ProcessedPath)
		fmt.Printf("  Classifier: %s\n", cfg.Model.ClassifierPath)
		fmt.Printf("  Vectorizer: %s\n", cfg.Model.VectorizerPath)
		fmt.Printf("  Server: %s\n", cfg.Server.Address)

		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show [config-file]",
	Short: "Show current configuration",
	Long:  `Display the current configuration with all values`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg *config.Config
		var err error

		if len(args) > 0 {
			cfg, err = config.LoadConfig(args[0])
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Printf("Configuration: %s\n\n", args[0])
		} else {
			cfg = config.DefaultConfig()
			fmt.Printf("Default Configuration:\n\n")
		}

		fmt.Printf("📄 Data:\n")
		fmt.Printf("  Raw corpus: %s (delimiter %q, %s)\n", cfg.Data.RawPath, cfg.Data.RawDelimiter, cfg.Data.RawEncoding)
		fmt.Printf("  Prepared corpus: %s (delimiter %q)\n", cfg.Data.ProcessedPath, cfg.Data.ProcessedDelimiter)
		fmt.Printf("  Columns: text=%s label=%s processed=%s\n", cfg.Data.TextColumn, cfg.Data.LabelColumn, cfg.Data.ProcessedColumn)
		fmt.Printf("  Batch uploads: delimiter %q, %s\n", cfg.Data.BatchDelimiter, cfg.Data.BatchEncoding)

		fmt.Printf("\n🔤 Text:\n")
		if cfg.Text.StopwordsFile == "" {
			fmt.Printf("  Stopwords: built-in Portuguese list\n")
		} else {
			fmt.Printf("  Stopwords: %s\n", cfg.Text.StopwordsFile)
		}

		fmt.Printf("\n🧠 Training:\n")
		t := cfg.Training
		fmt.Printf("  Test size: %.2f\n", t.TestSize)
		fmt.Printf("  Seed: %d\n", t.Seed)
		fmt.Printf("  Max features: %d\n", t.MaxFeatures)
		fmt.Printf("  Max iterations: %d\n", t.MaxIter)
		fmt.Printf("  C: %g, tolerance: %g\n", t.C, t.Tolerance)

		fmt.Printf("\n📦 Model:\n")
		fmt.Printf("  Classifier: %s\n", cfg.Model.ClassifierPath)
		fmt.Printf("  Vectorizer: %s\n", cfg.Model.VectorizerPath)

		fmt.Printf("\n🌐 Server:\n")
		s := cfg.Server
		fmt.Printf("  Address: %s\n", s.Address)
		fmt.Printf("  Timeouts: read %dms, write %dms, shutdown %dms\n", s.ReadTimeoutMs, s.WriteTimeoutMs, s.GracefulShutdownTimeout)
		fmt.Printf("  Max upload: %d MB\n", s.MaxUploadMB)
		fmt.Printf("  Web interface: %t\n", s.UIEnabled)

		fmt.Printf("\n🗄️  Cache:\n")
		if cfg.Cache.Enabled {
			fmt.Printf("  Redis: %s (db %d, prefix %s, ttl %s)\n", cfg.Cache.RedisURL, cfg.Cache.DatabaseNum, cfg.Cache.KeyPrefix, cfg.Cache.TTL)
		} else {
			fmt.Printf("  Disabled\n")
		}

		fmt.Printf("\n📋 Logging:\n")
		fmt.Printf("  Level: %s, format: %s\n", cfg.Logging.Level, cfg.Logging.Format)
		if cfg.Logging.File != "" {
			fmt.Printf("  File: %s\n", cfg.Logging.File)
		}

		return nil
	},
}

// validateConfigLogic flags settings that are valid but probably unintended
func validateConfigLogic(cfg *config.Config) []string {
	var warnings []string

	if cfg.Training.TestSize > 0.5 {
		warnings = append(warnings, "More than half of the corpus is held out for evaluation")
	}

	if cfg.Training.MaxFeatures < 100 {
		warnings = append(warnings, "Very small vocabulary (max_features < 100)")
	}

	if cfg.Training.MaxIter < 100 {
		warnings = append(warnings, "Low max_iter might stop the optimizer before convergence")
	}

	if cfg.Data.RawPath == cfg.Data.ProcessedPath {
		warnings = append(warnings, "Prepared corpus would overwrite the raw corpus")
	}

	if cfg.Model.ClassifierPath == cfg.Model.VectorizerPath {
		warnings = append(warnings, "Classifier and vectorizer share the same path")
	}

	if cfg.Cache.Enabled && cfg.Cache.TimeoutMs > 1000 {
		warnings = append(warnings, "High cache timeout adds latency when Redis is slow")
	}

	if cfg.Server.GinMode == "debug" {
		warnings = append(warnings, "gin_mode debug logs every route at startup")
	}

	return warnings
}

func init() {
	configCmd.AddCommand(configGenCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configGenCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
