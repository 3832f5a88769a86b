package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mathsight/grader/constants"
)

// GraderResponseSchema returns the JSON-Schema (draft 2020-12 subset) for a
// well-formed grader response, as a generic map. It is embedded in the
// grading prompt as a structured-output constraint and used locally to tell
// conformant responses from ones that need the lenient path.
func GraderResponseSchema() map[string]any {
	componentProps := map[string]any{}
	for _, c := range constants.RubricComponents() {
		componentProps[c] = scoreProp()
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"problem_text":          map[string]any{"type": "string"},
			"topic":                 map[string]any{"type": "string"},
			"difficulty_assessment": map[string]any{"type": "string"},
			"solution": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"steps":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"final_answer": map[string]any{"type": "string"},
				},
				"required": []string{"steps", "final_answer"},
			},
			"student_attempt": map[string]any{"type": []string{"string", "null"}},
			"component_scores": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties":           componentProps,
				"required":             constants.RubricComponents(),
			},
			"hints": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "string"},
				"maxItems": constants.MaxHints,
			},
		},
		"required": []string{"problem_text", "solution", "component_scores"},
	}
}

func scoreProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0.0, "maximum": 100.0}
}

// responseSchema is compiled once; the schema is static for the process
// lifetime and validation sits on the hot path of every response.
var responseSchema = mustCompileSchema(GraderResponseSchema())

func mustCompileSchema(schemaMap map[string]any) *jsonschema.Schema {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		panic(fmt.Sprintf("marshal schema: %v", err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response.json", bytes.NewReader(b)); err != nil {
		panic(fmt.Sprintf("add schema: %v", err))
	}
	schema, err := compiler.Compile("response.json")
	if err != nil {
		panic(fmt.Sprintf("compile schema: %v", err))
	}
	return schema
}

// ValidateResponse reports whether data is a schema-conformant grader
// response.
func ValidateResponse(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := responseSchema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
