package learning

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/corpus"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/profiler"
)

// TrainOptions configures one training run
type TrainOptions struct {
	TestSize    float64
	Seed        int64
	MaxFeatures int
	Classifier  ClassifierOptions

	LabelColumn string
	TextColumn  string

	// Recorded in the vectorizer artifact
	StopwordFingerprint string
}

// TrainOptionsFromConfig builds options from the training and data sections
func TrainOptionsFromConfig(cfg *config.Config, stopwordFingerprint string) TrainOptions {
	return TrainOptions{
		TestSize:    cfg.Training.TestSize,
		Seed:        cfg.Training.Seed,
		MaxFeatures: cfg.Training.MaxFeatures,
		Classifier: ClassifierOptions{
			C:         cfg.Training.C,
			MaxIter:   cfg.Training.MaxIter,
			Tolerance: cfg.Training.Tolerance,
		},
		LabelColumn:         cfg.Data.LabelColumn,
		TextColumn:          cfg.Data.ProcessedColumn,
		StopwordFingerprint: stopwordFingerprint,
	}
}

// Result is the outcome of a training run
type Result struct {
	Vectorizer *TFIDFVectorizer
	Classifier *LogisticRegression
	Evaluation *Evaluation
	Info       TrainingInfo

	// Rows skipped because their label was missing
	Dropped  int
	Duration time.Duration
}

// Accuracy is the share of held-out rows predicted correctly
func (r *Result) Accuracy() float64 {
	return r.Evaluation.Accuracy
}

// Save writes both artifacts
func (r *Result) Save(classifierPath, vectorizerPath string) error {
	if err := r.Vectorizer.SaveModel(vectorizerPath); err != nil {
		return fmt.Errorf("failed to save vectorizer: %w", err)
	}
	if err := r.Classifier.SaveModel(classifierPath, r.Info); err != nil {
		return fmt.Errorf("failed to save classifier: %w", err)
	}
	return nil
}

// PrintSummary writes the training summary and classification report
func (r *Result) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "🧠 Logistic regression over TF-IDF\n")
	fmt.Fprintf(w, "════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Model ID:        %s\n", r.Info.ModelID)
	fmt.Fprintf(w, "  Train rows:      %d\n", r.Info.TrainSize)
	fmt.Fprintf(w, "  Test rows:       %d\n", r.Info.TestSize)
	if r.Dropped > 0 {
		fmt.Fprintf(w, "  Dropped rows:    %d (missing label)\n", r.Dropped)
	}
	fmt.Fprintf(w, "  Vocabulary size: %d\n", r.Vectorizer.NumFeatures())
	fmt.Fprintf(w, "  Classes:         %v\n", r.Classifier.Classes)
	fmt.Fprintf(w, "  Iterations:      %d (converged: %t)\n", r.Classifier.Iterations, r.Classifier.Converged)
	fmt.Fprintf(w, "\n")
	r.Evaluation.PrintReport(w)
}

// Trainer fits a vectorizer and classifier on a prepared corpus
type Trainer struct {
	opts     TrainOptions
	profiler *profiler.Profiler
}

// NewTrainer creates a trainer. prof may be nil.
func NewTrainer(opts TrainOptions, prof *profiler.Profiler) *Trainer {
	return &Trainer{opts: opts, profiler: prof}
}

// TrainFile reads the prepared corpus at path and trains on it
func (t *Trainer) TrainFile(ctx context.Context, path string, readOpts dataset.Options) (*Result, error) {
	var table *dataset.Table
	err := t.profiler.Measure(profiler.StageLoad, func() error {
		var err error
		table, err = dataset.ReadFile(path, readOpts)
		return err
	})
	if err != nil {
		return nil, err
	}
	return t.Train(ctx, table)
}

// Train splits the table, fits the vectorizer on the training partition
// only, fits the classifier and scores it on the held-out partition.
func (t *Trainer) Train(ctx context.Context, table *dataset.Table) (*Result, error) {
	start := time.Now()

	docs, labels, dropped, err := t.extract(table)
	if err != nil {
		return nil, err
	}

	var trainIdx, testIdx []int
	err = t.profiler.Measure(profiler.StageSplit, func() error {
		var err error
		trainIdx, testIdx, err = Split(len(docs), t.opts.TestSize, t.opts.Seed)
		return err
	})
	if err != nil {
		return nil, err
	}

	trainDocs, trainLabels := pick(docs, trainIdx), pick(labels, trainIdx)
	testDocs, testLabels := pick(docs, testIdx), pick(labels, testIdx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectorizer := NewTFIDFVectorizer(t.opts.MaxFeatures)
	vectorizer.StopwordFingerprint = t.opts.StopwordFingerprint

	var trainX, testX []SparseVector
	err = t.profiler.Measure(profiler.StageVectorize, func() error {
		var err error
		if trainX, err = vectorizer.FitTransform(trainDocs); err != nil {
			return err
		}
		testX = vectorizer.TransformAll(testDocs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to vectorize corpus: %w", err)
	}

	slog.Debug("corpus vectorized",
		"train_rows", len(trainDocs),
		"test_rows", len(testDocs),
		"features", vectorizer.NumFeatures())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classifier := NewLogisticRegression(t.opts.Classifier)
	err = t.profiler.Measure(profiler.StageFit, func() error {
		return classifier.Fit(trainX, trainLabels, vectorizer.NumFeatures())
	})
	if err != nil {
		return nil, err
	}

	var eval *Evaluation
	t.profiler.Measure(profiler.StageEvaluate, func() error {
		eval = Evaluate(testLabels, classifier.PredictAll(testX), classifier.Classes)
		return nil
	})

	modelID := uuid.NewString()
	vectorizer.ModelID = modelID

	result := &Result{
		Vectorizer: vectorizer,
		Classifier: classifier,
		Evaluation: eval,
		Info: TrainingInfo{
			ModelID:      modelID,
			TrainedAt:    time.Now().UTC(),
			TrainSize:    len(trainIdx),
			TestSize:     len(testIdx),
			TestFraction: t.opts.TestSize,
			Seed:         t.opts.Seed,
			MaxFeatures:  t.opts.MaxFeatures,
			Accuracy:     eval.Accuracy,
			Evaluation:   eval,
		},
		Dropped:  dropped,
		Duration: time.Since(start),
	}

	slog.Info("training finished",
		"model_id", modelID,
		"accuracy", eval.Accuracy,
		"iterations", classifier.Iterations,
		"duration", result.Duration)

	return result, nil
}

// extract pulls documents and labels from the table. Rows without a label
// are dropped.
func (t *Trainer) extract(table *dataset.Table) (docs, labels []string, dropped int, err error) {
	textIdx, err := table.ColumnIndex(t.opts.TextColumn)
	if err != nil {
		return nil, nil, 0, err
	}
	labelIdx, err := table.ColumnIndex(t.opts.LabelColumn)
	if err != nil {
		return nil, nil, 0, err
	}

	for _, row := range table.Rows {
		label := row[labelIdx]
		if dataset.IsBlank(label) {
			dropped++
			continue
		}

		docs = append(docs, row[textIdx])
		labels = append(labels, corpus.CanonicalLabel(label))
	}

	if dropped > 0 {
		slog.Warn("rows without label skipped", "count", dropped)
	}
	if len(docs) == 0 {
		return nil, nil, dropped, ErrEmptyCorpus
	}
	return docs, labels, dropped, nil
}

func pick(values []string, idx []int) []string {
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
