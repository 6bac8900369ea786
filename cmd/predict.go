package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	predictConfig string
	predictJSON   bool
)

var predictCmd = &cobra.Command{
	Use:   "predict [texto]",
	Short: "Classify a single comment",
	Long: `Normalize one comment, run it through the trained model and print
the predicted score. Several arguments are joined with spaces.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(predictConfig)
		if err != nil {
			return err
		}
		defer closeLog()

		svc, err := openService(cfg)
		if err != nil {
			return err
		}
		defer svc.Close()

		text := strings.Join(args, " ")

		start := time.Now()
		p, err := svc.Predict(cmd.Context(), text)
		if err != nil {
			return fmt.Errorf("prediction failed: %w", err)
		}
		duration := time.Since(start)

		if predictJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"comentario_original": p.Original,
				"texto_processado":    p.Cleaned,
				"sentimento_previsto": p.Label,
				"categoria":           p.Category.String(),
				"cache":               p.Cached,
			})
		}

		fmt.Printf("Sentimento Prediction:\n")
		fmt.Printf("Comment: %s\n", p.Original)
		fmt.Printf("Processed: %q\n", p.Cleaned)
		fmt.Printf("Score: %s\n", p.Label)
		fmt.Printf("Result: %s (%s)\n", p.Display(), p.Category)
		fmt.Printf("Processing time: %.2fms\n", float64(duration.Nanoseconds())/1e6)
		if p.Cached {
			fmt.Printf("Served from cache\n")
		}
		if predictConfig != "" {
			fmt.Printf("Configuration: %s\n", predictConfig)
		}

		return nil
	},
}

func init() {
	predictCmd.Flags().StringVarP(&predictConfig, "config", "c", "", "Configuration file path")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "Print the prediction as JSON")
}
