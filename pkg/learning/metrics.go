package learning

import (
	"fmt"
	"io"
)

// ClassMetrics holds per-class scores on the held-out partition
type ClassMetrics struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation summarizes predictions against true labels
type Evaluation struct {
	Accuracy float64        `json:"accuracy"`
	Total    int            `json:"total"`
	Correct  int            `json:"correct"`
	Classes  []ClassMetrics `json:"classes"`
}

// Evaluate compares predicted with expected labels. classes fixes the
// order of the per-class rows.
func Evaluate(expected, predicted []string, classes []string) *Evaluation {
	eval := &Evaluation{Total: len(expected)}

	truePos := make(map[string]int)
	predCount := make(map[string]int)
	support := make(map[string]int)

	for i, want := range expected {
		got := predicted[i]
		support[want]++
		predCount[got]++
		if got == want {
			eval.Correct++
			truePos[want]++
		}
	}

	if eval.Total > 0 {
		eval.Accuracy = float64(eval.Correct) / float64(eval.Total)
	}

	for _, c := range classes {
		m := ClassMetrics{Class: c, Support: support[c]}
		if predCount[c] > 0 {
			m.Precision = float64(truePos[c]) / float64(predCount[c])
		}
		if support[c] > 0 {
			m.Recall = float64(truePos[c]) / float64(support[c])
		}
		if m.Precision+m.Recall > 0 {
			m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
		}
		eval.Classes = append(eval.Classes, m)
	}

	return eval
}

// PrintReport writes a classification report table
func (e *Evaluation) PrintReport(w io.Writer) {
	fmt.Fprintf(w, "%-10s %10s %10s %10s %10s\n", "class", "precision", "recall", "f1", "support")
	for _, c := range e.Classes {
		fmt.Fprintf(w, "%-10s %10.4f %10.4f %10.4f %10d\n", c.Class, c.Precision, c.Recall, c.F1, c.Support)
	}
	fmt.Fprintf(w, "\n%-10s %32.4f %10d\n", "accuracy", e.Accuracy, e.Total)
}
