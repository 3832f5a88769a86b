package normalize

import "strings"

// Alias lists for case-insensitive, alias-tolerant key matching, in priority
// order: when a response carries several spellings of the same field, the
// earliest alias present wins. Keys are matched after folding (lowercased,
// separator runs collapsed to '_'), so "Final Answer" and "final_answer"
// land on the same alias.
var (
	problemTextAliases = []string{"problem_text", "problem", "question", "problem_statement"}
	topicAliases       = []string{"topic", "subject"}
	difficultyAliases  = []string{"difficulty_assessment", "difficulty", "difficulty_level", "level"}
	solutionAliases    = []string{"solution", "worked_solution", "full_solution"}
	stepsAliases       = []string{"steps", "solution_steps"}
	finalAnswerAliases = []string{"final_answer", "answer", "correct_answer"}
	attemptAliases     = []string{"student_attempt", "attempt", "student_work", "student_solution"}
	componentsAliases  = []string{"component_scores", "components", "scores", "rubric", "score_breakdown"}
	hintsAliases       = []string{"hints", "hint", "tips"}
	overallAliases     = []string{"score", "grade", "overall", "overall_score", "total"}

	stepTextAliases = []string{"step", "description", "text", "explanation", "work", "detail"}
)

// foldKey normalizes a raw mapping key for alias comparison.
func foldKey(k string) string {
	k = strings.ToLower(strings.TrimSpace(k))
	var b strings.Builder
	b.Grow(len(k))
	sep := false
	for _, r := range k {
		if r == ' ' || r == '\t' || r == '_' || r == '-' {
			sep = true
			continue
		}
		if sep && b.Len() > 0 {
			b.WriteByte('_')
		}
		sep = false
		b.WriteRune(r)
	}
	return b.String()
}

// foldMap re-keys a decoded mapping by folded key. Duplicate folded keys keep
// the later value, matching encoding/json's behavior for duplicate keys.
func foldMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[foldKey(k)] = v
	}
	return out
}

// lookup returns the value of the first alias present in the folded mapping.
func lookup(folded map[string]any, aliases []string) (any, bool) {
	for _, a := range aliases {
		if v, ok := folded[a]; ok {
			return v, true
		}
	}
	return nil, false
}
