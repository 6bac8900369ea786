package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/zpam/sentimento/pkg/cache"
	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/logging"
	"github.com/zpam/sentimento/pkg/predictor"
)

var rootCmd = &cobra.Command{
	Use:   "sentimento",
	Short: "Sentimento - Portuguese review sentiment classifier",
	Long: `Sentimento cleans Portuguese customer reviews, trains a TF-IDF
logistic regression model on 1-5 star scores and serves predictions through
the command line, a JSON API and a web interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Sentimento - Portuguese review sentiment classifier")
		fmt.Println("Use 'sentimento --help' for usage information")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the configuration file (defaults when path is empty),
// validates it and installs the process logger. The returned function
// closes the log file.
func loadConfig(path string) (*config.Config, func(), error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid config: %w", err)
	}

	closeLog, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, func() { _ = closeLog() }, nil
}

// openService loads the trained artifacts and attaches the prediction cache.
// An unreachable cache is logged and replaced by a no-op one.
func openService(cfg *config.Config, opts ...predictor.Option) (*predictor.Service, error) {
	c, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Warn("prediction cache unavailable, continuing without it", "error", err)
		c = cache.Noop{}
	}

	svc, err := predictor.New(cfg, append([]predictor.Option{predictor.WithCache(c)}, opts...)...)
	if err != nil {
		c.Close()
		return nil, err
	}
	return svc, nil
}

func init() {
	rootCmd.AddCommand(prepareCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(benchmarkCmd)
}
