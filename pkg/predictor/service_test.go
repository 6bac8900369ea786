package predictor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/learning"
	"github.com/zpam/sentimento/pkg/profiler"
	"github.com/zpam/sentimento/pkg/textnorm"
)

// trainFixture trains a small model and returns a config pointing at it
func trainFixture(t *testing.T) *config.Config {
	t.Helper()

	positive := []string{"excelente", "adorei", "perfeito", "recomendo", "maravilhoso"}
	neutral := []string{"razoavel", "mediano", "aceitavel", "regular", "mediana"}
	negative := []string{"horrivel", "quebrado", "atrasado", "pessimo", "defeito"}

	table := dataset.NewTable("classificacao", "Texto_Processado")
	for i := 0; i < 90; i++ {
		words, label := positive, "5"
		switch i % 3 {
		case 1:
			words, label = neutral, "3"
		case 2:
			words, label = negative, "1"
		}
		doc := fmt.Sprintf("%s %s produto", words[i%5], words[(i+1)%5])
		table.Rows = append(table.Rows, []string{label, doc})
	}

	cfg := config.DefaultConfig()
	dir := t.TempDir()
	cfg.Model.ClassifierPath = filepath.Join(dir, "modelo_sentimento.json")
	cfg.Model.VectorizerPath = filepath.Join(dir, "vetorizador.json")

	opts := learning.TrainOptionsFromConfig(cfg, textnorm.Default().Fingerprint())
	result, err := learning.NewTrainer(opts, nil).Train(context.Background(), table)
	require.NoError(t, err)
	require.NoError(t, result.Save(cfg.Model.ClassifierPath, cfg.Model.VectorizerPath))

	return cfg
}

// memoryCache is an in-process cache.Cache for tests
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]string
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]string)}
}

func (m *memoryCache) Get(_ context.Context, modelID, normalized string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return "", false, errors.New("connection refused")
	}
	label, ok := m.entries[modelID+"|"+normalized]
	return label, ok, nil
}

func (m *memoryCache) Set(_ context.Context, modelID, normalized, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[modelID+"|"+normalized] = label
	return nil
}

func (m *memoryCache) Ping(context.Context) error { return nil }
func (m *memoryCache) Close() error { return nil }

func TestPredict(t *testing.T) {
	cfg := trainFixture(t)
	prof := profiler.NewProfiler()

	svc, err := New(cfg, WithProfiler(prof))
	require.NoError(t, err)
	defer svc.Close()

	p, err := svc.Predict(context.Background(), "O produto é EXCELENTE, adorei!!!")
	require.NoError(t, err)
	assert.Equal(t, "O produto é EXCELENTE, adorei!!!", p.Original)
	assert.Equal(t, "produto excelente adorei", p.Cleaned)
	assert.Equal(t, "5", p.Label)
	assert.Equal(t, CategoryPositive, p.Category)
	assert.Equal(t, "⭐5 (Positivo)", p.Display())

	p, err = svc.Predict(context.Background(), "Chegou quebrado, horrível")
	require.NoError(t, err)
	assert.Equal(t, "1", p.Label)
	assert.Equal(t, CategoryNegative, p.Category)

	assert.Equal(t, 2, prof.GetStats(profiler.StagePredict).Count)
	assert.Equal(t, []string{"1", "3", "5"}, svc.Classes())
	assert.Greater(t, svc.VocabularySize(), 0)
	assert.NotEmpty(t, svc.Info().ModelID)
}

func TestPredictEmptyInput(t *testing.T) {
	svc, err := New(trainFixture(t))
	require.NoError(t, err)

	p, err := svc.Predict(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "", p.Cleaned)
	assert.Contains(t, svc.Classes(), p.Label)
}

func TestPredictDeterministicAcrossEntryPoints(t *testing.T) {
	svc, err := New(trainFixture(t))
	require.NoError(t, err)

	text := "Produto mediano, entrega razoável"
	single, err := svc.Predict(context.Background(), text)
	require.NoError(t, err)

	many, err := svc.PredictAll(context.Background(), []string{text, text, text})
	require.NoError(t, err)
	for _, p := range many {
		assert.Equal(t, single.Cleaned, p.Cleaned)
		assert.Equal(t, single.Label, p.Label)
	}
}

func TestPredictCancelled(t *testing.T) {
	svc, err := New(trainFixture(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Predict(ctx, "excelente")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPredictUsesCache(t *testing.T) {
	mem := newMemoryCache()
	svc, err := New(trainFixture(t), WithCache(mem))
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.Predict(ctx, "Excelente produto")
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Predict(ctx, "EXCELENTE!!! produto")
	require.NoError(t, err)
	assert.True(t, second.Cached, "same normalized text hits the cache")
	assert.Equal(t, first.Label, second.Label)

	stats := svc.Stats()
	assert.Equal(t, int64(1), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.NoError(t, svc.Ping(ctx))
}

func TestPredictBypassesFailingCache(t *testing.T) {
	mem := newMemoryCache()
	mem.failGet = true

	svc, err := New(trainFixture(t), WithCache(mem))
	require.NoError(t, err)

	p, err := svc.Predict(context.Background(), "péssimo defeito")
	require.NoError(t, err)
	assert.Equal(t, "1", p.Label)
	assert.False(t, p.Cached)
	assert.Empty(t, mem.entries, "no write after a failed read")
}

func TestPredictBatch(t *testing.T) {
	svc, err := New(trainFixture(t), WithWorkers(2))
	require.NoError(t, err)

	table := dataset.NewTable("id", "comentario")
	table.Rows = [][]string{
		{"1", "Excelente, recomendo"},
		{"2", "Veio quebrado e atrasado"},
		{"3", ""},
		{"4", "Produto mediano"},
	}

	out, err := svc.PredictBatch(context.Background(), table, "comentario")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "comentario", ColumnProcessed, ColumnPrediction, ColumnResult}, out.Columns)
	require.Equal(t, 4, out.Len())
	assert.Equal(t, []string{"1", "Excelente, recomendo", "excelente recomendo", "5", "⭐5 (Positivo)"}, out.Rows[0])
	assert.Equal(t, "1", out.Rows[1][3])
	assert.Equal(t, "3", out.Rows[3][3])
	assert.Equal(t, "🟡3 (Neutro)", out.Rows[3][4])

	assert.Len(t, table.Columns, 2, "input table is not modified")
}

func TestPredictBatchUnknownColumn(t *testing.T) {
	svc, err := New(trainFixture(t))
	require.NoError(t, err)

	table := dataset.NewTable("texto")
	_, err = svc.PredictBatch(context.Background(), table, "comentario")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestNewMissingArtifacts(t *testing.T) {
	cfg := config.DefaultConfig()
	dir := t.TempDir()
	cfg.Model.ClassifierPath = filepath.Join(dir, "missing_model.json")
	cfg.Model.VectorizerPath = filepath.Join(dir, "missing_vectorizer.json")

	_, err := New(cfg)
	require.Error(t, err)

	var artifactErr *ArtifactError
	require.ErrorAs(t, err, &artifactErr)
	assert.Equal(t, cfg.Model.VectorizerPath, artifactErr.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestNewCorruptArtifact(t *testing.T) {
	cfg := trainFixture(t)
	require.NoError(t, os.WriteFile(cfg.Model.ClassifierPath, []byte("{"), 0644))

	_, err := New(cfg)
	var artifactErr *ArtifactError
	require.ErrorAs(t, err, &artifactErr)
	assert.Equal(t, cfg.Model.ClassifierPath, artifactErr.Path)
}

func TestNewMissingStopwordsFile(t *testing.T) {
	cfg := trainFixture(t)
	cfg.Text.StopwordsFile = filepath.Join(t.TempDir(), "nope.txt")

	_, err := New(cfg)
	var artifactErr *ArtifactError
	require.ErrorAs(t, err, &artifactErr)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestSuggestTextColumn(t *testing.T) {
	table := dataset.NewTable("nota", "comentario")
	table.Rows = [][]string{{"5", "Chegou no prazo, adorei"}}
	assert.Equal(t, "comentario", SuggestTextColumn(table))
}
