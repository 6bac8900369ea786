package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/corpus"
	"github.com/zpam/sentimento/pkg/dataset"
)

var (
	generateCount    int
	generateOutput   string
	generateSeed     int64
	generateMissing  float64
	generateEncoding string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a synthetic review dataset",
	Long: `Generate a raw review file in the layout 'prepare' expects
(comentario;classificacao), with scores drawn uniformly from 1 to 5.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if generateCount <= 0 {
			return fmt.Errorf("count must be greater than 0")
		}
		if generateMissing < 0 || generateMissing >= 1 {
			return fmt.Errorf("missing ratio must be in [0, 1)")
		}

		data := config.DefaultConfig().Data

		fmt.Printf("🧪 Generating synthetic reviews...\n")
		fmt.Printf("📝 Total reviews: %d\n", generateCount)
		fmt.Printf("🎲 Seed: %d\n", generateSeed)
		if generateMissing > 0 {
			fmt.Printf("🕳️  Rows with a missing field: ~%.0f%%\n", generateMissing*100)
		}
		fmt.Printf("📂 Output: %s (%s)\n\n", generateOutput, generateEncoding)

		start := time.Now()

		gen := corpus.NewGenerator(generateSeed)
		gen.MissingRatio = generateMissing
		table := gen.Table(generateCount, data.TextColumn, data.LabelColumn)

		if err := writeGenerated(generateOutput, table, dataset.ParseDelimiter(data.RawDelimiter), generateEncoding); err != nil {
			return err
		}

		duration := time.Since(start)

		fmt.Printf("✅ Generation complete!\n")
		fmt.Printf("⏱️ Time taken: %v\n", duration)
		fmt.Printf("📈 Rate: %.0f reviews/second\n", float64(generateCount)/duration.Seconds())

		return nil
	},
}

func writeGenerated(path string, table *dataset.Table, delimiter rune, encoding string) error {
	switch encoding {
	case "utf-8":
		return dataset.WriteFile(path, table, delimiter)
	case "latin-1":
		var buf bytes.Buffer
		if err := dataset.Write(&buf, table, delimiter); err != nil {
			return err
		}
		encoded, err := dataset.EncodeLatin1(buf.String())
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(path, encoded, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported encoding: %s", encoding)
	}
}

func init() {
	generateCmd.Flags().IntVarP(&generateCount, "count", "n", 1000, "Number of reviews to generate")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", config.DefaultConfig().Data.RawPath, "Output file")
	generateCmd.Flags().Int64Var(&generateSeed, "seed", 42, "Random seed")
	generateCmd.Flags().Float64Var(&generateMissing, "missing", 0, "Fraction of rows with an empty comment or score")
	generateCmd.Flags().StringVar(&generateEncoding, "encoding", "utf-8", "Output encoding: utf-8 or latin-1")
}
