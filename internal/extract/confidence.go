package extract

import (
	"regexp"
	"strings"
)

var (
	reEquation = regexp.MustCompile(`[=≈]|\\approx`)
	reNumber   = regexp.MustCompile(`\d`)
	reMathOp   = regexp.MustCompile(`[+\-*/^()]|\b(solve|simplify|evaluate|find)\b`)
)

func hasEquationPattern(s string) bool { return reEquation.MatchString(s) }
func hasNumberPattern(s string) bool   { return reNumber.MatchString(s) }
func hasMathOpPattern(s string) bool   { return reMathOp.MatchString(s) }

// naive heuristic confidence based on decoded text characteristics
func heuristicConfidence(txt string) float32 {
	// very simple: boost if we see common worksheet artifacts
	// (equation-ish, number-ish, operator-ish). Each adds a little.
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasEquationPattern(txtL) {
		score += 0.2
	}
	if hasNumberPattern(txtL) {
		score += 0.15
	}
	if hasMathOpPattern(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}
