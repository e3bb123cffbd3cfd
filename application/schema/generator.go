// Package schema provides JSON schema generation for host profiles.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/magnolia-os/magnolia-go/domain/entities"
)

// ProfileSchemaURL is the resource name the profile schema is compiled under.
const ProfileSchemaURL = "magnolia://schema/host-profile.json"

// GenerateSchema creates a JSON schema (Draft 2020-12) from a Go struct.
// Property names follow the struct's yaml tags, since profiles are written
// in YAML; fields without omitempty are required and unknown keys are
// rejected.
func GenerateSchema(v any) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand the top-level struct inline
		Anonymous:      true, // No $id; the compiler names the resource
		FieldNameTag:   "yaml",
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// ProfileSchema returns the schema of a host profile document.
func ProfileSchema() ([]byte, error) {
	return GenerateSchema(&entities.HostProfile{})
}
