package constants

import "strings"

// Component is one axis of the fixed grading rubric.
type Component string

const (
	Understanding Component = "understanding"
	Execution     Component = "execution"
	Accuracy      Component = "accuracy"
)

var allComponents = []Component{
	Understanding,
	Execution,
	Accuracy,
}

// RubricComponents returns the fixed rubric in report order.
func RubricComponents() []string {
	result := make([]string, len(allComponents))
	for i, c := range allComponents {
		result[i] = string(c)
	}
	return result
}

// CanonicalComponent maps loose component labels from service responses onto
// the fixed rubric. Returns false when the label matches nothing.
func CanonicalComponent(input string) (Component, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	// synonyms map
	synonyms := map[string]Component{
		"comprehension":   Understanding,
		"problem setup":   Understanding,
		"setup":           Understanding,
		"method":          Execution,
		"process":         Execution,
		"work":            Execution,
		"working":         Execution,
		"correctness":     Accuracy,
		"final answer":    Accuracy,
		"answer accuracy": Accuracy,
	}

	if c, ok := synonyms[normalized]; ok {
		return c, true
	}

	for _, c := range allComponents {
		if normalized == string(c) {
			return c, true
		}
	}

	return "", false
}

// DifficultyLevels is the open enumeration the service is nudged toward.
// Anything else the service reports is kept verbatim.
var DifficultyLevels = []string{"Easy", "Medium", "Hard"}

const (
	// FlagNoAttempt is carried on results where no student work was found,
	// so callers can report that instead of a misleading zero score.
	FlagNoAttempt = "no attempt to grade"

	// NoHintSentinel is the first_hint value when the service produced no
	// usable hints.
	NoHintSentinel = "No hints available."

	// MaxHints bounds the ranked hint list.
	MaxHints = 3
)
