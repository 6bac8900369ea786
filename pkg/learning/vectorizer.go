package learning

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyCorpus is returned when fitting on documents that yield no terms.
var ErrEmptyCorpus = errors.New("empty vocabulary: documents contain no terms")

// SparseVector holds the non-zero entries of a feature row. Indices are
// strictly increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Len returns the number of stored entries
func (v SparseVector) Len() int {
	return len(v.Indices)
}

// Dot returns the inner product with a dense weight row
func (v SparseVector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range v.Indices {
		sum += v.Values[i] * dense[idx]
	}
	return sum
}

// TFIDFVectorizer maps documents to L2-normalized tf-idf rows. Terms are
// runs of two or more word characters. When the vocabulary exceeds
// MaxFeatures, the terms with the highest corpus frequency are kept, ties
// going to the alphabetically smaller term. Feature indices follow the
// alphabetical order of the kept terms.
type TFIDFVectorizer struct {
	MaxFeatures int

	terms      []string
	idf        []float64
	vocabulary map[string]int
	numDocs    int

	// Fingerprint of the stopword set the training corpus was normalized with
	StopwordFingerprint string
	// ModelID ties a vectorizer to the classifier trained alongside it
	ModelID string
}

// NewTFIDFVectorizer creates an unfitted vectorizer. maxFeatures <= 0 means
// no limit.
func NewTFIDFVectorizer(maxFeatures int) *TFIDFVectorizer {
	return &TFIDFVectorizer{MaxFeatures: maxFeatures}
}

// Analyze splits a document into terms
func Analyze(doc string) []string {
	fields := strings.FieldsFunc(strings.ToLower(doc), func(r rune) bool {
		return !isWordRune(r)
	})

	terms := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) < 2 {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// Fit learns the vocabulary and inverse document frequencies
func (v *TFIDFVectorizer) Fit(docs []string) error {
	termFreq := make(map[string]int)
	docFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, term := range Analyze(doc) {
			termFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	if len(termFreq) == 0 {
		return ErrEmptyCorpus
	}

	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.SliceStable(terms, func(i, j int) bool {
			return termFreq[terms[i]] > termFreq[terms[j]]
		})
		terms = terms[:v.MaxFeatures]
		sort.Strings(terms)
	}

	n := float64(len(docs))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		idf[i] = smoothIDF(n, float64(docFreq[term]))
	}

	v.setVocabulary(terms, idf)
	v.numDocs = len(docs)
	return nil
}

// smoothIDF is ln((1+n)/(1+df)) + 1
func smoothIDF(n, df float64) float64 {
	return math.Log((1+n)/(1+df)) + 1
}

func (v *TFIDFVectorizer) setVocabulary(terms []string, idf []float64) {
	v.terms = terms
	v.idf = idf
	v.vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
	}
}

// Transform maps one document to a feature row. Unknown terms are ignored;
// a document with no known terms yields an empty vector.
func (v *TFIDFVectorizer) Transform(doc string) SparseVector {
	counts := make(map[int]float64)
	for _, term := range Analyze(doc) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)
	for _, idx := range vec.Indices {
		vec.Values = append(vec.Values, counts[idx]*v.idf[idx])
	}

	if norm := floats.Norm(vec.Values, 2); norm > 0 {
		floats.Scale(1/norm, vec.Values)
	}
	return vec
}

// TransformAll maps every document, preserving order
func (v *TFIDFVectorizer) TransformAll(docs []string) []SparseVector {
	out := make([]SparseVector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}

// FitTransform fits on docs and returns their feature rows
func (v *TFIDFVectorizer) FitTransform(docs []string) ([]SparseVector, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	return v.TransformAll(docs), nil
}

// Fitted reports whether a vocabulary has been learned
func (v *TFIDFVectorizer) Fitted() bool {
	return len(v.terms) > 0
}

// NumFeatures returns the vocabulary size
func (v *TFIDFVectorizer) NumFeatures() int {
	return len(v.terms)
}

// Terms returns the vocabulary in feature order
func (v *TFIDFVectorizer) Terms() []string {
	return append([]string(nil), v.terms...)
}

// IDF returns the inverse document frequency of term
func (v *TFIDFVectorizer) IDF(term string) (float64, bool) {
	idx, ok := v.vocabulary[term]
	if !ok {
		return 0, false
	}
	return v.idf[idx], true
}

// Index returns the feature index of term
func (v *TFIDFVectorizer) Index(term string) (int, bool) {
	idx, ok := v.vocabulary[term]
	return idx, ok
}

// NumDocuments returns the number of documents seen by Fit
func (v *TFIDFVectorizer) NumDocuments() int {
	return v.numDocs
}
