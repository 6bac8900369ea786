package learning

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ArtifactVersion is the on-disk format version of both artifacts
const ArtifactVersion = 1

// TrainingInfo records how a classifier was produced
type TrainingInfo struct {
	ModelID      string      `json:"model_id"`
	TrainedAt    time.Time   `json:"trained_at"`
	TrainSize    int         `json:"train_size"`
	TestSize     int         `json:"test_size"`
	TestFraction float64     `json:"test_fraction"`
	Seed         int64       `json:"seed"`
	MaxFeatures  int         `json:"max_features"`
	Accuracy     float64     `json:"accuracy"`
	Evaluation   *Evaluation `json:"evaluation,omitempty"`
}

type vectorizerFile struct {
	Version             int       `json:"version"`
	Kind                string    `json:"kind"`
	ModelID             string    `json:"model_id"`
	MaxFeatures         int       `json:"max_features"`
	NumDocuments        int       `json:"num_documents"`
	StopwordFingerprint string    `json:"stopword_fingerprint"`
	Terms               []string  `json:"terms"`
	IDF                 []float64 `json:"idf"`
}

type classifierFile struct {
	Version int                 `json:"version"`
	Kind    string              `json:"kind"`
	Model   *LogisticRegression `json:"model"`
	Info    TrainingInfo        `json:"training"`
}

const (
	vectorizerKind = "tfidf"
	classifierKind = "logistic_regression"
)

// SaveModel writes the fitted vectorizer as indented JSON
func (v *TFIDFVectorizer) SaveModel(path string) error {
	if !v.Fitted() {
		return fmt.Errorf("vectorizer is not fitted")
	}
	return writeJSON(path, vectorizerFile{
		Version:             ArtifactVersion,
		Kind:                vectorizerKind,
		ModelID:             v.ModelID,
		MaxFeatures:         v.MaxFeatures,
		NumDocuments:        v.numDocs,
		StopwordFingerprint: v.StopwordFingerprint,
		Terms:               v.terms,
		IDF:                 v.idf,
	})
}

// LoadVectorizer reads a vectorizer written by SaveModel
func LoadVectorizer(path string) (*TFIDFVectorizer, error) {
	var file vectorizerFile
	if err := readJSON(path, &file); err != nil {
		return nil, err
	}

	if file.Kind != vectorizerKind || file.Version != ArtifactVersion {
		return nil, fmt.Errorf("%s: unsupported artifact %q version %d", path, file.Kind, file.Version)
	}
	if len(file.Terms) == 0 || len(file.Terms) != len(file.IDF) {
		return nil, fmt.Errorf("%s: %d terms but %d idf values", path, len(file.Terms), len(file.IDF))
	}
	for i := 1; i < len(file.Terms); i++ {
		if file.Terms[i-1] >= file.Terms[i] {
			return nil, fmt.Errorf("%s: terms are not sorted and unique", path)
		}
	}

	v := NewTFIDFVectorizer(file.MaxFeatures)
	v.setVocabulary(file.Terms, file.IDF)
	v.numDocs = file.NumDocuments
	v.StopwordFingerprint = file.StopwordFingerprint
	v.ModelID = file.ModelID
	return v, nil
}

// SaveModel writes the fitted classifier and its training info as indented JSON
func (m *LogisticRegression) SaveModel(path string, info TrainingInfo) error {
	if !m.Fitted() {
		return fmt.Errorf("classifier is not fitted")
	}
	return writeJSON(path, classifierFile{
		Version: ArtifactVersion,
		Kind:    classifierKind,
		Model:   m,
		Info:    info,
	})
}

// LoadClassifier reads a classifier written by SaveModel
func LoadClassifier(path string) (*LogisticRegression, *TrainingInfo, error) {
	var file classifierFile
	if err := readJSON(path, &file); err != nil {
		return nil, nil, err
	}

	if file.Kind != classifierKind || file.Version != ArtifactVersion {
		return nil, nil, fmt.Errorf("%s: unsupported artifact %q version %d", path, file.Kind, file.Version)
	}

	m := file.Model
	if m == nil || !m.Fitted() {
		return nil, nil, fmt.Errorf("%s: classifier has no weights", path)
	}

	rows := len(m.Classes)
	if rows == 2 {
		rows = 1
	}
	if len(m.Weights) != rows || len(m.Intercepts) != rows {
		return nil, nil, fmt.Errorf("%s: expected %d weight rows for %d classes", path, rows, len(m.Classes))
	}
	for _, w := range m.Weights {
		if len(w) != m.NumFeatures {
			return nil, nil, fmt.Errorf("%s: weight row has %d values, expected %d", path, len(w), m.NumFeatures)
		}
	}

	return m, &file.Info, nil
}

func readJSON(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// writeJSON encodes v to a temporary file next to path and renames it into
// place. The parent directory is created when missing.
func writeJSON(path string, v any) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set model file permissions: %w", err)
	}

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move model file into place: %w", err)
	}
	return nil
}
