// Package validation checks decoded host profile documents against the
// generated profile JSON schema before they are bound to structs.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/magnolia-os/magnolia-go/application/schema"
	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// SchemaValidator implements ports.DocumentValidator with a compiled schema.
type SchemaValidator struct {
	schema *jsonschema.Schema
}

// NewSchemaValidator compiles raw, a JSON schema document, under url.
func NewSchemaValidator(url string, raw []byte) (*SchemaValidator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, strings.NewReader(string(raw))); err != nil {
		return nil, fmt.Errorf("failed to add schema resource %s: %w", url, err)
	}
	sch, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", url, err)
	}
	return &SchemaValidator{schema: sch}, nil
}

// NewProfileValidator returns a validator for host profile documents.
func NewProfileValidator() (ports.DocumentValidator, error) {
	raw, err := schema.ProfileSchema()
	if err != nil {
		return nil, err
	}
	return NewSchemaValidator(schema.ProfileSchemaURL, raw)
}

// Validate checks doc, any value that marshals to JSON, against the schema.
// Schema violations are reported in the result; the error is reserved for
// documents that cannot be prepared at all.
func (v *SchemaValidator) Validate(doc any) (*entities.ValidationResult, error) {
	// Round-trip through JSON so YAML-decoded values take JSON types.
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}
	var obj any
	if err := json.Unmarshal(b, &obj); err != nil {
		return nil, fmt.Errorf("failed to prepare validation object: %w", err)
	}

	result := &entities.ValidationResult{Valid: true}
	if err := v.schema.Validate(obj); err != nil {
		result.Valid = false
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			result.Errors = collect(result.Errors, ve)
		} else {
			result.Errors = append(result.Errors, entities.ValidationError{Message: err.Error()})
		}
	}
	return result, nil
}

// collect flattens a validation error tree into its leaf causes.
func collect(dst []entities.ValidationError, ve *jsonschema.ValidationError) []entities.ValidationError {
	if len(ve.Causes) == 0 {
		return append(dst, entities.ValidationError{
			Field:   ve.InstanceLocation,
			Keyword: ve.KeywordLocation,
			Message: ve.Message,
		})
	}
	for _, cause := range ve.Causes {
		dst = collect(dst, cause)
	}
	return dst
}
