package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zpam/sentimento/pkg/api"
)

var (
	serveConfigFile string
	serveAddress    string
	serveNoUI       bool
	serveDebug      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the prediction API and web interface",
	Long: `Start the HTTP server. It loads the trained artifacts once and serves:

  POST /predict        {"comentario": "..."} -> {"comentario_original", "sentimento_previsto"}
  GET  /healthz        model metadata and cache status
  GET  /               web interface (single comment and CSV batch)

Example usage:
  # Start with the default config on 0.0.0.0:5000
  sentimento serve

  # API only, custom address
  sentimento serve --address 127.0.0.1:8080 --no-ui

  curl -X POST http://127.0.0.1:5000/predict \
    -H 'Content-Type: application/json' \
    -d '{"comentario": "O produto chegou rápido e bem embalado"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(serveConfigFile)
		if err != nil {
			return err
		}
		defer closeLog()

		if cmd.Flags().Changed("address") {
			cfg.Server.Address = serveAddress
		}
		if serveNoUI {
			cfg.Server.UIEnabled = false
		}
		if serveDebug {
			cfg.Server.GinMode = "debug"
		}

		svc, err := openService(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		server, err := api.NewServer(cfg, svc)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		listener, err := net.Listen("tcp", cfg.Server.Address)
		if err != nil {
			return fmt.Errorf("failed to create listener: %w", err)
		}
		defer listener.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		info := svc.Info()
		fmt.Printf("🚀 Sentimento server starting on http://%s\n", listener.Addr())
		fmt.Printf("🧠 Model %s (%d classes, %d features, accuracy %.2f%%)\n",
			info.ModelID, len(svc.Classes()), svc.VocabularySize(), info.Accuracy*100)
		if cfg.Server.UIEnabled {
			fmt.Printf("🖥️  Web interface: http://%s/\n", listener.Addr())
		}
		if cfg.Cache.Enabled {
			fmt.Printf("🗄️  Prediction cache: %s\n", cfg.Cache.RedisURL)
		}
		if serveConfigFile != "" {
			fmt.Printf("⚙️  Configuration: %s\n", serveConfigFile)
		}
		fmt.Printf("🛑 Press Ctrl+C to stop\n\n")

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			defer stop()
			return server.Serve(gctx, listener)
		})
		g.Go(func() error {
			<-ctx.Done()
			fmt.Printf("\n🛑 Stopping server...\n")
			return nil
		})

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server stopped with error: %w", err)
		}

		stats := svc.Stats()
		fmt.Printf("✅ Server stopped gracefully (cache hits: %d, misses: %d)\n", stats.CacheHits, stats.CacheMisses)
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Configuration file path")
	serveCmd.Flags().StringVarP(&serveAddress, "address", "a", "0.0.0.0:5000", "Listen address")
	serveCmd.Flags().BoolVar(&serveNoUI, "no-ui", false, "Serve the JSON API only")
	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Run gin in debug mode")
}
