package learning

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	expected := []string{"5", "5", "1", "1", "3"}
	predicted := []string{"5", "1", "1", "1", "5"}

	eval := Evaluate(expected, predicted, []string{"1", "3", "5"})

	assert.Equal(t, 5, eval.Total)
	assert.Equal(t, 3, eval.Correct)
	assert.InDelta(t, 0.6, eval.Accuracy, 1e-12)
	require.Len(t, eval.Classes, 3)

	one := eval.Classes[0]
	assert.Equal(t, "1", one.Class)
	assert.InDelta(t, 2.0/3.0, one.Precision, 1e-12)
	assert.InDelta(t, 1.0, one.Recall, 1e-12)
	assert.InDelta(t, 0.8, one.F1, 1e-12)
	assert.Equal(t, 2, one.Support)

	three := eval.Classes[1]
	assert.Equal(t, 0.0, three.Precision)
	assert.Equal(t, 0.0, three.Recall)
	assert.Equal(t, 0.0, three.F1)

	var buf bytes.Buffer
	eval.PrintReport(&buf)
	assert.Contains(t, buf.String(), "precision")
	assert.Contains(t, buf.String(), "0.6000")
}

func TestEvaluateEmpty(t *testing.T) {
	eval := Evaluate(nil, nil, nil)
	assert.Equal(t, 0.0, eval.Accuracy)
	assert.Empty(t, eval.Classes)
}
