// Package predictor loads the trained artifacts once and classifies single
// comments and whole tables with them.
package predictor

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/zpam/sentimento/pkg/cache"
	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/learning"
	"github.com/zpam/sentimento/pkg/profiler"
	"github.com/zpam/sentimento/pkg/textnorm"
)

// Columns added by PredictBatch
const (
	ColumnProcessed  = "Texto_Processado"
	ColumnPrediction = "Previsao_Sentimento"
	ColumnResult     = "Resultado"
)

// Prediction is the outcome for one comment
type Prediction struct {
	Original string
	Cleaned  string
	Label    string
	Category Category
	Cached   bool
}

// Display renders the label for people
func (p *Prediction) Display() string {
	return Display(p.Label)
}

// Option configures a Service
type Option func(*Service)

// WithCache consults c before running the classifier
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithProfiler records stage timings into p
func WithProfiler(p *profiler.Profiler) Option {
	return func(s *Service) { s.profiler = p }
}

// WithWorkers bounds batch parallelism
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// Service holds the loaded artifacts. It is safe for concurrent use; the
// artifacts are never mutated after construction.
type Service struct {
	normalizer *textnorm.Normalizer
	vectorizer *learning.TFIDFVectorizer
	classifier *learning.LogisticRegression
	info       *learning.TrainingInfo

	cache    cache.Cache
	profiler *profiler.Profiler
	workers  int

	hits   atomic.Int64
	misses atomic.Int64
}

// Stats counts cache hits and misses
type Stats struct {
	CacheHits   int64
	CacheMisses int64
}

// New loads the stopwords, vectorizer and classifier named by cfg. Any load
// failure is returned as *ArtifactError.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	normalizer, err := textnorm.Load(cfg.Text.StopwordsFile)
	if err != nil {
		return nil, &ArtifactError{Path: cfg.Text.StopwordsFile, Err: err}
	}

	vectorizer, err := learning.LoadVectorizer(cfg.Model.VectorizerPath)
	if err != nil {
		return nil, &ArtifactError{Path: cfg.Model.VectorizerPath, Err: err}
	}

	classifier, info, err := learning.LoadClassifier(cfg.Model.ClassifierPath)
	if err != nil {
		return nil, &ArtifactError{Path: cfg.Model.ClassifierPath, Err: err}
	}

	if classifier.NumFeatures != vectorizer.NumFeatures() {
		return nil, &ArtifactError{
			Path: cfg.Model.ClassifierPath,
			Err: fmt.Errorf("classifier expects %d features, vectorizer has %d",
				classifier.NumFeatures, vectorizer.NumFeatures()),
		}
	}

	s := NewFromModels(normalizer, vectorizer, classifier, info, opts...)

	slog.Info("model loaded",
		"model_id", info.ModelID,
		"classes", classifier.Classes,
		"features", vectorizer.NumFeatures(),
		"trained_at", info.TrainedAt)

	return s, nil
}

// NewFromModels wraps already loaded artifacts
func NewFromModels(normalizer *textnorm.Normalizer, vectorizer *learning.TFIDFVectorizer, classifier *learning.LogisticRegression, info *learning.TrainingInfo, opts ...Option) *Service {
	if normalizer == nil {
		normalizer = textnorm.Default()
	}
	if info == nil {
		info = &learning.TrainingInfo{ModelID: vectorizer.ModelID}
	}

	s := &Service{
		normalizer: normalizer,
		vectorizer: vectorizer,
		classifier: classifier,
		info:       info,
		cache:      cache.Noop{},
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}

	if fp := vectorizer.StopwordFingerprint; fp != "" && fp != normalizer.Fingerprint() {
		slog.Warn("stopword set differs from the one used in training",
			"trained", fp,
			"loaded", normalizer.Fingerprint())
	}
	if vectorizer.ModelID != "" && info.ModelID != "" && vectorizer.ModelID != info.ModelID {
		slog.Warn("vectorizer and classifier come from different training runs",
			"vectorizer", vectorizer.ModelID,
			"classifier", info.ModelID)
	}

	return s
}

// Predict normalizes, vectorizes and classifies one comment. The only
// error is a cancelled context; cache failures are logged and bypassed.
func (s *Service) Predict(ctx context.Context, text string) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timer := s.profiler.Start(profiler.StageNormalize)
	cleaned := s.normalizer.Normalize(text)
	timer.Stop()

	p := &Prediction{Original: text, Cleaned: cleaned}

	timer = s.profiler.Start(profiler.StageCacheRead)
	label, ok, err := s.cache.Get(ctx, s.info.ModelID, cleaned)
	timer.Stop()
	if err != nil {
		slog.Warn("prediction cache read failed", "error", err)
	}

	if ok {
		s.hits.Add(1)
		p.Label = label
		p.Cached = true
	} else {
		s.misses.Add(1)
		p.Label = s.classify(cleaned)

		if err == nil {
			timer = s.profiler.Start(profiler.StageCacheWrite)
			if err := s.cache.Set(ctx, s.info.ModelID, cleaned, p.Label); err != nil {
				slog.Warn("prediction cache write failed", "error", err)
			}
			timer.Stop()
		}
	}

	p.Category = Categorize(p.Label)
	return p, nil
}

func (s *Service) classify(cleaned string) string {
	timer := s.profiler.Start(profiler.StageVectorize)
	x := s.vectorizer.Transform(cleaned)
	timer.Stop()

	timer = s.profiler.Start(profiler.StagePredict)
	defer timer.Stop()
	return s.classifier.Predict(x)
}

// PredictAll classifies texts in parallel, preserving order
func (s *Service) PredictAll(ctx context.Context, texts []string) ([]*Prediction, error) {
	results := make([]*Prediction, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			p, err := s.Predict(ctx, text)
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// PredictBatch classifies every value of column and returns a copy of the
// table with the processed text, predicted label and display columns added.
func (s *Service) PredictBatch(ctx context.Context, table *dataset.Table, column string) (*dataset.Table, error) {
	texts, err := table.Column(column)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, column)
	}

	predictions, err := s.PredictAll(ctx, texts)
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, len(predictions))
	labels := make([]string, len(predictions))
	display := make([]string, len(predictions))
	for i, p := range predictions {
		cleaned[i] = p.Cleaned
		labels[i] = p.Label
		display[i] = p.Display()
	}

	out := table.Clone()
	for _, col := range []struct {
		name   string
		values []string
	}{
		{ColumnProcessed, cleaned},
		{ColumnPrediction, labels},
		{ColumnResult, display},
	} {
		if err := out.SetColumn(col.name, col.values); err != nil {
			return nil, err
		}
	}

	slog.Debug("batch classified", "rows", out.Len(), "column", column)
	return out, nil
}

// SuggestTextColumn picks the column most likely to hold comments
func SuggestTextColumn(table *dataset.Table) string {
	return table.SuggestTextColumn()
}

// Info returns the training metadata of the loaded classifier
func (s *Service) Info() learning.TrainingInfo {
	return *s.info
}

// Classes returns the labels the classifier can produce
func (s *Service) Classes() []string {
	return append([]string(nil), s.classifier.Classes...)
}

// VocabularySize returns the number of vectorizer features
func (s *Service) VocabularySize() int {
	return s.vectorizer.NumFeatures()
}

// Normalizer returns the shared normalizer
func (s *Service) Normalizer() *textnorm.Normalizer {
	return s.normalizer
}

// Ping checks the prediction cache
func (s *Service) Ping(ctx context.Context) error {
	return s.cache.Ping(ctx)
}

// Stats returns cache counters
func (s *Service) Stats() Stats {
	return Stats{CacheHits: s.hits.Load(), CacheMisses: s.misses.Load()}
}

// Close releases the cache connection
func (s *Service) Close() error {
	return s.cache.Close()
}
