// Package normalize turns the untrusted grading-service response, in any of
// its possible shapes, into the canonical typed result the rest of the
// pipeline consumes. Shape mismatches never raise errors; every field falls
// back to a typed default.
package normalize

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/mathsight/grader/constants"
	"github.com/mathsight/grader/internal/entity"
)

// Defaults returns a NormalizedResult with every field at its typed default.
// Slices and maps are non-nil so the serialized form is stable.
func Defaults() entity.NormalizedResult {
	return entity.NormalizedResult{
		Solution:        entity.Solution{Steps: []string{}},
		ComponentScores: map[string]float64{},
		Hints:           []string{},
	}
}

// Normalize coerces a raw service response body into the canonical result.
// A schema-valid body takes the strict path, a typed decode; anything else
// goes through the lenient shape dispatch. Both end at the same canonical
// type with the same field tidying applied.
func Normalize(raw []byte, logger *slog.Logger) entity.NormalizedResult {
	if logger == nil {
		logger = slog.Default()
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		logger.Debug("normalize.empty_response")
		return Defaults()
	}

	if err := ValidateResponse(trimmed); err == nil {
		if out, ok := fromStrict(trimmed); ok {
			logger.Debug("normalize.strict", "bytes", len(trimmed))
			return out
		}
	} else {
		logger.Info("normalize.lenient", "bytes", len(trimmed), "reason", err)
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		// not JSON at all: the body itself is the plain-string shape
		return fromString(string(raw))
	}
	return NormalizeValue(v)
}

// fromStrict decodes a schema-valid body directly into the canonical type.
// The same trimming and empty-attempt rules as the lenient path apply so a
// body produces one result regardless of the route it took.
func fromStrict(data []byte) (entity.NormalizedResult, bool) {
	out := Defaults()
	if err := json.Unmarshal(data, &out); err != nil {
		return entity.NormalizedResult{}, false
	}
	out.ProblemText = strings.TrimSpace(out.ProblemText)
	out.Topic = strings.TrimSpace(out.Topic)
	out.DifficultyAssessment = strings.TrimSpace(out.DifficultyAssessment)
	out.Solution.FinalAnswer = strings.TrimSpace(out.Solution.FinalAnswer)

	steps := make([]string, 0, len(out.Solution.Steps))
	for _, s := range out.Solution.Steps {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}
	out.Solution.Steps = steps

	if out.StudentAttempt != nil {
		if s := strings.TrimSpace(*out.StudentAttempt); s != "" {
			out.StudentAttempt = &s
		} else {
			out.StudentAttempt = nil
		}
	}
	if out.ComponentScores == nil {
		out.ComponentScores = map[string]float64{}
	}
	for k, v := range out.ComponentScores {
		out.ComponentScores[k] = ClampScore(v)
	}
	if out.Hints == nil {
		out.Hints = []string{}
	}
	for i, h := range out.Hints {
		out.Hints[i] = strings.TrimSpace(h)
	}
	return out, true
}

// NormalizeValue dispatches on the decoded shape of a raw response value:
// mapping, sequence, string, or absent. Scalars carry no usable content and
// normalize to defaults.
func NormalizeValue(v any) entity.NormalizedResult {
	switch t := v.(type) {
	case nil:
		return Defaults()
	case map[string]any:
		return fromMapping(t)
	case []any:
		return fromSequence(t)
	case string:
		return fromString(t)
	default:
		return Defaults()
	}
}

// fromMapping reads each target field by alias-tolerant key matching.
// Precedence is fixed so the result is deterministic regardless of map
// iteration order: an explicit solution block wins over top-level step and
// answer spellings, and explicit component scores win over a bare overall
// score.
func fromMapping(m map[string]any) entity.NormalizedResult {
	out := Defaults()
	folded := foldMap(m)

	if v, ok := lookup(folded, problemTextAliases); ok {
		out.ProblemText = coerceString(v)
	}
	if v, ok := lookup(folded, topicAliases); ok {
		out.Topic = coerceString(v)
	}
	if v, ok := lookup(folded, difficultyAliases); ok {
		out.DifficultyAssessment = coerceString(v)
	}

	if v, ok := lookup(folded, solutionAliases); ok {
		out.Solution = normalizeSolution(v)
	}
	if out.Solution.FinalAnswer == "" {
		if v, ok := lookup(folded, finalAnswerAliases); ok {
			out.Solution.FinalAnswer = coerceString(v)
		}
	}
	if len(out.Solution.Steps) == 0 {
		if v, ok := lookup(folded, stepsAliases); ok {
			steps, inferred := stepsFromValue(v)
			out.Solution.Steps = steps
			if out.Solution.FinalAnswer == "" {
				out.Solution.FinalAnswer = inferred
			}
		}
	}

	if v, ok := lookup(folded, attemptAliases); ok {
		if s := coerceString(v); s != "" {
			out.StudentAttempt = &s
		}
	}

	var overall *float64
	if v, ok := lookup(folded, componentsAliases); ok {
		switch cv := v.(type) {
		case map[string]any:
			mergeComponentScores(out.ComponentScores, cv)
		default:
			if _, isNum := toFloat(cv); isNum {
				c := ClampScore(cv)
				overall = &c
			}
		}
	}
	if v, ok := lookup(folded, overallAliases); ok {
		c := ClampScore(v)
		overall = &c
	}
	// a bare overall score backfills rubric components the response omitted
	if overall != nil {
		for _, c := range constants.RubricComponents() {
			if _, ok := out.ComponentScores[c]; !ok {
				out.ComponentScores[c] = *overall
			}
		}
	}

	if v, ok := lookup(folded, hintsAliases); ok {
		out.Hints = coerceStringSlice(v)
	}

	return out
}

// fromSequence classifies a top-level sequence by its first non-null
// element: strings read as an ordered hint list, mappings as worked-solution
// steps with an answer pattern checked on the last element.
func fromSequence(seq []any) entity.NormalizedResult {
	out := Defaults()

	var first any
	for _, el := range seq {
		if el != nil {
			first = el
			break
		}
	}
	switch first.(type) {
	case nil:
		return out
	case map[string]any:
		out.Solution.Steps, out.Solution.FinalAnswer = stepsFromSequence(seq)
	default:
		out.Hints = coerceStringSlice(seq)
	}
	return out
}

// fromString first looks for an embedded JSON value (the service's free-text
// style often wraps one in prose or code fences) and recurses on it; with no
// parseable structure the whole string becomes the problem text.
func fromString(s string) entity.NormalizedResult {
	body := StripCodeFences(s)
	if block, ok := ExtractJSONValue(body); ok {
		var v any
		if err := json.Unmarshal([]byte(block), &v); err == nil {
			switch v.(type) {
			case map[string]any, []any:
				return NormalizeValue(v)
			}
		}
	}

	out := Defaults()
	out.ProblemText = strings.TrimSpace(s)
	return out
}

func normalizeSolution(v any) entity.Solution {
	sol := entity.Solution{Steps: []string{}}
	switch t := v.(type) {
	case map[string]any:
		folded := foldMap(t)
		if sv, ok := lookup(folded, stepsAliases); ok {
			steps, inferred := stepsFromValue(sv)
			sol.Steps = steps
			sol.FinalAnswer = inferred
		}
		if av, ok := lookup(folded, finalAnswerAliases); ok {
			if s := coerceString(av); s != "" {
				sol.FinalAnswer = s
			}
		}
	case []any:
		sol.Steps, sol.FinalAnswer = stepsFromSequence(t)
	case string:
		sol.FinalAnswer = strings.TrimSpace(t)
	}
	return sol
}

func stepsFromValue(v any) ([]string, string) {
	switch t := v.(type) {
	case []any:
		return stepsFromSequence(t)
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}, ""
		}
	}
	return []string{}, ""
}

// stepsFromSequence flattens a sequence into ordered step strings. Mapping
// elements contribute their step text; when the last element carries an
// answer-like key, its value is returned as the inferred final answer.
func stepsFromSequence(seq []any) ([]string, string) {
	steps := make([]string, 0, len(seq))
	finalAnswer := ""
	for i, el := range seq {
		switch t := el.(type) {
		case map[string]any:
			folded := foldMap(t)
			if i == len(seq)-1 {
				if av, ok := lookup(folded, finalAnswerAliases); ok {
					finalAnswer = coerceString(av)
				}
			}
			if sv, ok := lookup(folded, stepTextAliases); ok {
				if s := coerceString(sv); s != "" {
					steps = append(steps, s)
				}
			}
		case nil:
			continue
		default:
			if s := coerceString(t); s != "" {
				steps = append(steps, s)
			}
		}
	}
	return steps, finalAnswer
}

// mergeComponentScores clamps every entry of a component mapping into dst.
// Keys are canonicalized onto the fixed rubric where they match; unmatched
// keys are kept under their folded spelling so no reported score is lost.
func mergeComponentScores(dst map[string]float64, m map[string]any) {
	for k, v := range m {
		if c, ok := constants.CanonicalComponent(k); ok {
			dst[string(c)] = ClampScore(v)
			continue
		}
		if key := foldKey(k); key != "" {
			dst[key] = ClampScore(v)
		}
	}
}
