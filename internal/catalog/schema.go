package catalog

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// streamSchema is the JSON Schema every stream YAML file must satisfy.
const streamSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["stream", "version", "name", "questions", "courses"],
  "properties": {
    "stream": {"enum": ["pcm", "pcb", "pcmb", "commerce", "arts"]},
    "version": {"type": "integer", "minimum": 1},
    "name": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "scenario", "options"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "scenario": {"type": "string", "minLength": 1},
          "options": {
            "type": "array",
            "minItems": 4,
            "maxItems": 4,
            "items": {
              "type": "object",
              "required": ["id", "text", "traits"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "text": {"type": "string", "minLength": 1},
                "traits": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}}
              }
            }
          }
        }
      }
    },
    "courses": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "required_traits"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "required_traits": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
          "careers": {"type": "array", "items": {"type": "string"}},
          "salary_range": {"type": "string"},
          "duration": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    }
  }
}`

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(streamSchema))
})

// validateDocument checks a decoded YAML document against streamSchema.
func validateDocument(doc any) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("validating document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("schema violations: %s", strings.Join(msgs, "; "))
}
