package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/predictor"
)

var (
	classifyConfig    string
	classifyInput     string
	classifyOutput    string
	classifyColumn    string
	classifyDelimiter string
	classifyEncoding  string
	classifyWorkers   int
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify every comment of a CSV file",
	Long: `Read a delimited file, classify the comments in the chosen column and
write a copy with the processed text, predicted score and result columns added.
When --column is omitted the first free-text column is used.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if classifyInput == "" {
			return fmt.Errorf("input path is required")
		}

		cfg, closeLog, err := loadConfig(classifyConfig)
		if err != nil {
			return err
		}
		defer closeLog()

		delimiter := cfg.Data.BatchDelimiter
		if cmd.Flags().Changed("delimiter") {
			delimiter = classifyDelimiter
		}
		encoding := cfg.Data.BatchEncoding
		if cmd.Flags().Changed("encoding") {
			encoding = classifyEncoding
		}

		table, err := dataset.ReadFile(classifyInput, dataset.Options{
			Delimiter: dataset.ParseDelimiter(delimiter),
			Encoding:  encoding,
		})
		if err != nil {
			return err
		}

		column := classifyColumn
		if column == "" {
			column = predictor.SuggestTextColumn(table)
			if column == "" {
				return fmt.Errorf("%s has no columns", classifyInput)
			}
			fmt.Printf("🔎 Using column %q\n", column)
		}

		svc, err := openService(cfg, predictor.WithWorkers(classifyWorkers))
		if err != nil {
			return err
		}
		defer svc.Close()

		start := time.Now()
		out, err := svc.PredictBatch(cmd.Context(), table, column)
		if err != nil {
			return fmt.Errorf("failed to classify %s: %w", classifyInput, err)
		}
		duration := time.Since(start)

		if err := dataset.WriteFile(classifyOutput, out, ','); err != nil {
			return err
		}

		counts := make(map[predictor.Category]int)
		labels, _ := out.Column(predictor.ColumnPrediction)
		for _, label := range labels {
			counts[predictor.Categorize(label)]++
		}

		fmt.Printf("Sentimento Classification Complete!\n")
		fmt.Printf("Comments classified: %d\n", out.Len())
		fmt.Printf("⭐ Positive: %d\n", counts[predictor.CategoryPositive])
		fmt.Printf("🟡 Neutral:  %d\n", counts[predictor.CategoryNeutral])
		fmt.Printf("🔴 Negative: %d\n", counts[predictor.CategoryNegative])
		if n := counts[predictor.CategoryError]; n > 0 {
			fmt.Printf("❓ Unparseable: %d\n", n)
		}
		if out.Len() > 0 {
			fmt.Printf("Average processing time: %.2fms per comment\n",
				float64(duration.Nanoseconds())/float64(out.Len())/1e6)
		}
		fmt.Printf("Total time: %v\n", duration)
		fmt.Printf("💾 Results saved to %s\n", classifyOutput)

		return nil
	},
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyConfig, "config", "c", "", "Configuration file path")
	classifyCmd.Flags().StringVarP(&classifyInput, "input", "i", "", "CSV file with comments")
	classifyCmd.Flags().StringVarP(&classifyOutput, "output", "o", "comentarios_classificados.csv", "Output CSV path")
	classifyCmd.Flags().StringVar(&classifyColumn, "column", "", "Column holding the comments (default: suggested)")
	classifyCmd.Flags().StringVar(&classifyDelimiter, "delimiter", ";", "Input delimiter (overrides data.batch_delimiter)")
	classifyCmd.Flags().StringVar(&classifyEncoding, "encoding", "auto", "Input encoding: utf-8, latin-1 or auto")
	classifyCmd.Flags().IntVarP(&classifyWorkers, "workers", "w", 0, "Parallel workers (default: number of CPUs)")

	classifyCmd.MarkFlagRequired("input")
}
