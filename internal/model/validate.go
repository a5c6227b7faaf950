package model

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schemas for the structured AI outputs.
const (
	SchemaSpeech     = "speech"
	SchemaEvaluation = "evaluation"
	SchemaImprove    = "improve"
)

//go:embed schema/*.schema.json
var schemaFS embed.FS

// ValidateMap validates a decoded AI payload against one of the embedded
// schemas and joins every violation into a single error.
func ValidateMap(schema string, m map[string]interface{}) error {
	raw, err := schemaFS.ReadFile("schema/" + schema + ".schema.json")
	if err != nil {
		return fmt.Errorf("unknown schema %q: %w", schema, err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(raw), gojsonschema.NewGoLoader(m))
	if err != nil {
		return err
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s schema validation failed: %s", schema, strings.Join(msgs, "; "))
}
