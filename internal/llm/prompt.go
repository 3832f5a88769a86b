package llm

import (
	"encoding/json"
	"strings"

	"github.com/mathsight/grader/internal/normalize"
)

// BuildGradingMessages composes the messages for the grading call: a system
// prompt with the rubric, the extracted text framed as the user message, and
// the response schema as a trailing system message. The output is a pure
// function of the extracted text, so identical inputs produce identical
// requests.
func BuildGradingMessages(extractedText string, maxChars int) []ChatMessage {
	return []ChatMessage{
		TextMessage(RoleSystem, buildGradingSystemPrompt()),
		TextMessage(RoleUser, buildGradingUserPrompt(extractedText, maxChars)),
		TextMessage(RoleSystem, "JSON Schema:\n"+mustJSON(normalize.GraderResponseSchema())),
	}
}

func buildGradingSystemPrompt() string {
	parts := []string{
		"You are an expert math grader and tutor. You will receive raw text extracted from a photo that contains a math problem (typed or printed) and possibly a student's handwritten attempt.",
		"Return ONLY JSON that matches the provided JSON Schema.",
		"'problem_text': the problem statement. If none is present, use an empty string.",
		"'topic': a short label for the mathematical area (e.g. algebra, calculus, geometry).",
		"'difficulty_assessment': one of easy, medium, hard.",
		"'solution': your own worked solution. 'steps' is an ordered list of concise steps; 'final_answer' is the result alone.",
		"'student_attempt': the student's work verbatim, keeping line breaks and arrows. Use null if no attempt is visible.",

		// scoring behavior:
		"'component_scores': rate the attempt 0-100 on each of 'understanding' (did the student grasp the problem), 'execution' (is the method sound), and 'accuracy' (is the final answer right).",
		"Use 100 only when a component is fully correct. Score all components 0 when there is no attempt.",

		// hint behavior:
		"'hints': up to 3 short, actionable hints ordered most helpful first, each a gentle next step. Never reveal the final answer. Use an empty array when the attempt is fully correct.",

		// hygiene:
		"Be conservative; do not invent content that is not in the text. Keep math symbols as ASCII when reproducing them.",
	}
	return strings.Join(parts, " ")
}

func buildGradingUserPrompt(extractedText string, maxChars int) string {
	text := strings.TrimSpace(extractedText)
	var b strings.Builder
	b.WriteString("EXTRACTED_TEXT:\n'''START'''\n")
	if maxChars > 0 && len(text) > maxChars {
		b.WriteString(text[:maxChars])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(text)
	}
	b.WriteString("\n'''END'''\n\nNow produce the JSON described.")
	return b.String()
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
