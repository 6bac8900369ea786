package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zpam/sentimento/pkg/corpus"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/textnorm"
)

var (
	prepareConfig    string
	prepareInput     string
	prepareOutput    string
	prepareDelimiter string
	prepareEncoding  string
	prepareSample    int
)

var prepareCmd = &cobra.Command{
	Use:   "prepare",
	Short: "Clean the raw review corpus",
	Long: `Read the raw review file, drop rows without comment or score,
normalize every comment and write the prepared corpus with the label and
processed text columns.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closeLog, err := loadConfig(prepareConfig)
		if err != nil {
			return err
		}
		defer closeLog()

		opts := corpus.OptionsFromConfig(cfg)
		if cmd.Flags().Changed("input") {
			opts.InputPath = prepareInput
		}
		if cmd.Flags().Changed("output") {
			opts.OutputPath = prepareOutput
		}
		if cmd.Flags().Changed("delimiter") {
			opts.InputDelimiter = dataset.ParseDelimiter(prepareDelimiter)
		}
		if cmd.Flags().Changed("encoding") {
			opts.Encoding = prepareEncoding
		}
		opts.SampleSize = prepareSample

		normalizer, err := textnorm.Load(cfg.Text.StopwordsFile)
		if err != nil {
			return err
		}

		fmt.Printf("🧹 Preparing corpus...\n")
		fmt.Printf("📥 Input:  %s\n", opts.InputPath)
		fmt.Printf("📤 Output: %s\n\n", opts.OutputPath)

		report, err := corpus.Prepare(cmd.Context(), opts, normalizer)
		if err != nil {
			return fmt.Errorf("failed to prepare corpus: %w", err)
		}

		report.Print(os.Stdout)
		fmt.Printf("\n✅ Prepared corpus saved to %s\n", report.OutputPath)
		return nil
	},
}

func init() {
	prepareCmd.Flags().StringVarP(&prepareConfig, "config", "c", "", "Configuration file path")
	prepareCmd.Flags().StringVarP(&prepareInput, "input", "i", "", "Raw review file (overrides data.raw_path)")
	prepareCmd.Flags().StringVarP(&prepareOutput, "output", "o", "", "Prepared corpus file (overrides data.processed_path)")
	prepareCmd.Flags().StringVar(&prepareDelimiter, "delimiter", ";", "Raw file delimiter")
	prepareCmd.Flags().StringVar(&prepareEncoding, "encoding", "utf-8", "Raw file encoding (utf-8, latin-1, auto)")
	prepareCmd.Flags().IntVar(&prepareSample, "sample", corpus.DefaultSampleSize, "Number of sample rows to print")
}
