package learning

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zpam/sentimento/pkg/config"
	"github.com/zpam/sentimento/pkg/dataset"
	"github.com/zpam/sentimento/pkg/profiler"
)

var (
	positiveWords = []string{"excelente", "adorei", "perfeito", "recomendo", "rapido"}
	neutralWords  = []string{"razoavel", "mediano", "aceitavel", "normal", "regular"}
	negativeWords = []string{"horrivel", "quebrado", "atrasado", "pessimo", "defeito"}
)

// syntheticCorpus builds a prepared corpus where every row also carries a
// term unique to that row.
func syntheticCorpus(n int) *dataset.Table {
	table := dataset.NewTable("classificacao", "Texto_Processado")
	for i := 0; i < n; i++ {
		var words []string
		var label string
		switch i % 3 {
		case 0:
			words, label = positiveWords, "5"
		case 1:
			words, label = neutralWords, "3"
		default:
			words, label = negativeWords, "1"
		}
		doc := fmt.Sprintf("%s %s produto unico%s", words[i%5], words[(i+2)%5], strings.Repeat("x", i+1))
		table.Rows = append(table.Rows, []string{label, doc})
	}
	return table
}

func testTrainOptions() TrainOptions {
	return TrainOptionsFromConfig(config.DefaultConfig(), "fingerprint")
}

func TestTrainerTrain(t *testing.T) {
	prof := profiler.NewProfiler()
	trainer := NewTrainer(testTrainOptions(), prof)

	result, err := trainer.Train(context.Background(), syntheticCorpus(60))
	require.NoError(t, err)

	assert.Equal(t, 48, result.Info.TrainSize)
	assert.Equal(t, 12, result.Info.TestSize)
	assert.Equal(t, int64(42), result.Info.Seed)
	assert.NotEmpty(t, result.Info.ModelID)
	assert.Equal(t, result.Info.ModelID, result.Vectorizer.ModelID)
	assert.Equal(t, "fingerprint", result.Vectorizer.StopwordFingerprint)
	assert.Equal(t, []string{"1", "3", "5"}, result.Classifier.Classes)
	assert.Greater(t, result.Accuracy(), 0.8)
	assert.Equal(t, result.Accuracy(), result.Info.Accuracy)

	for _, stage := range []string{profiler.StageSplit, profiler.StageVectorize, profiler.StageFit, profiler.StageEvaluate} {
		assert.Equal(t, 1, prof.GetStats(stage).Count, stage)
	}
}

func TestTrainVocabularyExcludesTestRows(t *testing.T) {
	table := syntheticCorpus(40)
	opts := testTrainOptions()

	result, err := NewTrainer(opts, nil).Train(context.Background(), table)
	require.NoError(t, err)

	_, testIdx, err := Split(table.Len(), opts.TestSize, opts.Seed)
	require.NoError(t, err)

	for _, i := range testIdx {
		unique := Analyze(table.Rows[i][1])[3]
		_, ok := result.Vectorizer.Index(unique)
		assert.False(t, ok, "test-only term %q leaked into the vocabulary", unique)
	}
	assert.Equal(t, 40-len(testIdx), result.Vectorizer.NumDocuments())
}

func TestTrainDeterministic(t *testing.T) {
	a, err := NewTrainer(testTrainOptions(), nil).Train(context.Background(), syntheticCorpus(45))
	require.NoError(t, err)
	b, err := NewTrainer(testTrainOptions(), nil).Train(context.Background(), syntheticCorpus(45))
	require.NoError(t, err)

	assert.Equal(t, a.Accuracy(), b.Accuracy())
	assert.Equal(t, a.Vectorizer.Terms(), b.Vectorizer.Terms())
	assert.Equal(t, a.Classifier.Weights, b.Classifier.Weights)
	assert.Equal(t, a.Classifier.Intercepts, b.Classifier.Intercepts)
}

func TestTrainDropsMissingLabels(t *testing.T) {
	table := syntheticCorpus(30)
	table.Rows = append(table.Rows, []string{"", "excelente"}, []string{"NaN", "horrivel"})
	table.Rows[0][0] = "5.0"

	result, err := NewTrainer(testTrainOptions(), nil).Train(context.Background(), table)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Dropped)
	assert.Equal(t, 30, result.Info.TrainSize+result.Info.TestSize)
	assert.Equal(t, []string{"1", "3", "5"}, result.Classifier.Classes)
}

func TestTrainKeepsEmptyDocuments(t *testing.T) {
	table := syntheticCorpus(30)
	table.Rows = append(table.Rows, []string{"5", ""}, []string{"1", ""})

	result, err := NewTrainer(testTrainOptions(), nil).Train(context.Background(), table)
	require.NoError(t, err)
	assert.Zero(t, result.Dropped)
	assert.Equal(t, 32, result.Info.TrainSize+result.Info.TestSize)

	_, ok := result.Vectorizer.Index("nan")
	assert.False(t, ok, "empty documents must not become a token")
}

func TestTrainErrors(t *testing.T) {
	trainer := NewTrainer(testTrainOptions(), nil)

	_, err := trainer.Train(context.Background(), dataset.NewTable("classificacao", "Texto_Processado"))
	assert.ErrorIs(t, err, ErrEmptyCorpus)

	_, err = trainer.Train(context.Background(), dataset.NewTable("label", "text"))
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = trainer.Train(ctx, syntheticCorpus(30))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSaveAndLoadArtifacts(t *testing.T) {
	result, err := NewTrainer(testTrainOptions(), nil).Train(context.Background(), syntheticCorpus(30))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "models")
	clfPath := filepath.Join(dir, "modelo_sentimento.json")
	vecPath := filepath.Join(dir, "vetorizador.json")
	require.NoError(t, result.Save(clfPath, vecPath))

	vec, err := LoadVectorizer(vecPath)
	require.NoError(t, err)
	clf, info, err := LoadClassifier(clfPath)
	require.NoError(t, err)

	assert.Equal(t, result.Vectorizer.Terms(), vec.Terms())
	assert.Equal(t, result.Info.ModelID, vec.ModelID)
	assert.Equal(t, result.Info.ModelID, info.ModelID)
	assert.Equal(t, "fingerprint", vec.StopwordFingerprint)
	assert.InDelta(t, result.Accuracy(), info.Accuracy, 1e-12)
	assert.True(t, result.Info.TrainedAt.Equal(info.TrainedAt))

	for _, doc := range []string{"excelente adorei", "quebrado pessimo", "mediano", ""} {
		want := result.Classifier.Predict(result.Vectorizer.Transform(doc))
		assert.Equal(t, want, clf.Predict(vec.Transform(doc)), doc)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	for _, path := range []string{clfPath, vecPath} {
		stat, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), stat.Mode().Perm(), path)
	}
}

func TestLoadArtifactErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadVectorizer(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, _, err = LoadClassifier(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("not json"), 0644))
	_, err = LoadVectorizer(garbage)
	assert.Error(t, err)
	_, _, err = LoadClassifier(garbage)
	assert.Error(t, err)

	wrongKind := filepath.Join(dir, "kind.json")
	require.NoError(t, os.WriteFile(wrongKind, []byte(`{"version":1,"kind":"tfidf","terms":["a"],"idf":[1]}`), 0644))
	_, _, err = LoadClassifier(wrongKind)
	assert.Error(t, err)

	mismatch := filepath.Join(dir, "mismatch.json")
	require.NoError(t, os.WriteFile(mismatch, []byte(`{"version":1,"kind":"tfidf","terms":["aa","bb"],"idf":[1]}`), 0644))
	_, err = LoadVectorizer(mismatch)
	assert.Error(t, err)
}

func TestSaveUnfitted(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, NewTFIDFVectorizer(10).SaveModel(filepath.Join(dir, "v.json")))
	assert.Error(t, NewLogisticRegression(DefaultClassifierOptions()).SaveModel(filepath.Join(dir, "c.json"), TrainingInfo{}))
}
