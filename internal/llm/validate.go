package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/docuvault/prescription-extractor/internal/common"
)

// SchemaValidationError reports a response that parsed as JSON but does not
// match the record schema. Field carries the offending instance path.
type SchemaValidationError struct {
	Field string
	Err   error
}

func (e *SchemaValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema validation failed at %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *SchemaValidationError) Unwrap() error { return common.ErrValidation }

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return &SchemaValidationError{Field: offendingField(err), Err: err}
	}
	return nil
}

// offendingField walks to the deepest cause to name the failing instance path.
func offendingField(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return ""
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve.InstanceLocation
}
