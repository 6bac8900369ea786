// Package corpus turns the raw review export into the prepared training
// corpus: two columns, label and normalized text.
package corpus

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/textnorm"
)

// DefaultSampleSize is the number of rows kept in a Report sample
const DefaultSampleSize = 5

// Options describes one preparation run
type Options struct {
	InputPath  string
	OutputPath string

	InputDelimiter  rune
	OutputDelimiter rune
	Encoding        string

	TextColumn      string
	LabelColumn     string
	ProcessedColumn string

	SampleSize int
}

// OptionsFromConfig builds preparation options from the data section
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		InputPath:       cfg.Data.RawPath,
		OutputPath:      cfg.Data.ProcessedPath,
		InputDelimiter:  dataset.ParseDelimiter(cfg.Data.RawDelimiter),
		OutputDelimiter: dataset.ParseDelimiter(cfg.Data.ProcessedDelimiter),
		Encoding:        cfg.Data.RawEncoding,
		TextColumn:      cfg.Data.TextColumn,
		LabelColumn:     cfg.Data.LabelColumn,
		ProcessedColumn: cfg.Data.ProcessedColumn,
		SampleSize:      DefaultSampleSize,
	}
}

// SampleRow pairs an original comment with its processed form
type SampleRow struct {
	Label     string
	Original  string
	Processed string
}

// Report summarizes a preparation run
type Report struct {
	OutputPath  string
	RowsRead    int
	RowsDropped int
	RowsWritten int
	EmptyAfter  int // rows whose processed text is empty
	Sample      []SampleRow
}

// Print writes a human readable summary
func (r *Report) Print(w io.Writer) {
	fmt.Fprintf(w, "📄 Rows read:    %d\n", r.RowsRead)
	fmt.Fprintf(w, "🗑️  Rows dropped: %d\n", r.RowsDropped)
	fmt.Fprintf(w, "💾 Rows written: %d\n", r.RowsWritten)
	if r.EmptyAfter > 0 {
		fmt.Fprintf(w, "⚠️  %d rows have no tokens left after normalization\n", r.EmptyAfter)
	}
	if len(r.Sample) == 0 {
		return
	}
	fmt.Fprintf(w, "\n🔎 Sample:\n")
	for _, s := range r.Sample {
		fmt.Fprintf(w, "   [%s] %q\n", s.Label, s.Original)
		fmt.Fprintf(w, "        → %q\n", s.Processed)
	}
}

// Prepare reads the raw table, cleans it and writes the prepared corpus.
// Nothing is written when any step fails.
func Prepare(ctx context.Context, opts Options, normalizer *textnorm.Normalizer) (*Report, error) {
	raw, err := dataset.ReadFile(opts.InputPath, dataset.Options{
		Delimiter: opts.InputDelimiter,
		Encoding:  opts.Encoding,
	})
	if err != nil {
		return nil, err
	}

	prepared, report, err := PrepareTable(ctx, raw, opts, normalizer)
	if err != nil {
		return nil, err
	}

	if err := dataset.WriteFile(opts.OutputPath, prepared, opts.OutputDelimiter); err != nil {
		return nil, err
	}
	report.OutputPath = opts.OutputPath

	slog.Info("corpus prepared",
		"input", opts.InputPath,
		"output", opts.OutputPath,
		"rows_read", report.RowsRead,
		"rows_written", report.RowsWritten)

	return report, nil
}

// PrepareTable applies the cleaning rules to an in-memory table. The result
// has exactly the label and processed columns, in input order.
func PrepareTable(ctx context.Context, raw *dataset.Table, opts Options, normalizer *textnorm.Normalizer) (*dataset.Table, *Report, error) {
	if normalizer == nil {
		normalizer = textnorm.Default()
	}

	textIdx, err := raw.ColumnIndex(opts.TextColumn)
	if err != nil {
		return nil, nil, err
	}
	labelIdx, err := raw.ColumnIndex(opts.LabelColumn)
	if err != nil {
		return nil, nil, err
	}

	out := dataset.NewTable(opts.LabelColumn, opts.ProcessedColumn)
	report := &Report{RowsRead: raw.Len()}

	for i, row := range raw.Rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		text, label := row[textIdx], row[labelIdx]
		if dataset.IsBlank(text) || dataset.IsBlank(label) {
			report.RowsDropped++
			continue
		}

		processed := normalizer.Normalize(textnorm.Clean(text))
		if processed == "" {
			report.EmptyAfter++
		}

		label = CanonicalLabel(label)
		out.Rows = append(out.Rows, []string{label, processed})

		if len(report.Sample) < opts.SampleSize {
			report.Sample = append(report.Sample, SampleRow{
				Label:     label,
				Original:  text,
				Processed: processed,
			})
		}
	}

	report.RowsWritten = out.Len()
	return out, report, nil
}

// CanonicalLabel trims a label and rewrites integer-valued numbers in their
// shortest integer form, so "5.0" and " 5" both become "5".
func CanonicalLabel(label string) string {
	label = strings.TrimSpace(label)
	f, err := strconv.ParseFloat(label, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return label
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return label
	}
	return strconv.FormatInt(int64(f), 10)
}
