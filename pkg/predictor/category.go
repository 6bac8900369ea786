package predictor

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is the presentation bucket of a predicted score
type Category int

const (
	CategoryError Category = iota
	CategoryNegative
	CategoryNeutral
	CategoryPositive
)

// String returns a stable machine name
func (c Category) String() string {
	switch c {
	case CategoryPositive:
		return "positive"
	case CategoryNeutral:
		return "neutral"
	case CategoryNegative:
		return "negative"
	default:
		return "error"
	}
}

// Tone is the UI color class: success, warning or error
func (c Category) Tone() string {
	switch c {
	case CategoryPositive:
		return "success"
	case CategoryNeutral:
		return "warning"
	default:
		return "error"
	}
}

// Categorize maps a label to its category. 5 is positive, 3 and 4 are
// neutral, any other integer is negative and anything else is an error.
func Categorize(label string) Category {
	score, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return CategoryError
	}
	switch {
	case score == 5:
		return CategoryPositive
	case score == 3 || score == 4:
		return CategoryNeutral
	default:
		return CategoryNegative
	}
}

// Display renders a label the way the interface and batch export show it
func Display(label string) string {
	score, err := strconv.Atoi(strings.TrimSpace(label))
	if err != nil {
		return fmt.Sprintf("%s (Erro)", label)
	}
	switch Categorize(label) {
	case CategoryPositive:
		return fmt.Sprintf("⭐%d (Positivo)", score)
	case CategoryNeutral:
		return fmt.Sprintf("🟡%d (Neutro)", score)
	default:
		return fmt.Sprintf("🔴%d (Negativo/Crítico)", score)
	}
}
