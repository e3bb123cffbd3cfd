// Package parser decodes host profile documents.
package parser

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/ports"
)

// YamlProfileParser implements ports.ProfileParser for YAML.
type YamlProfileParser struct{}

// NewYamlProfileParser creates a new YamlProfileParser.
func NewYamlProfileParser() ports.ProfileParser {
	return &YamlProfileParser{}
}

// Parse unmarshals YAML bytes into a HostProfile struct. Unknown keys are
// rejected.
func (p *YamlProfileParser) Parse(data []byte) (*entities.HostProfile, error) {
	var profile entities.HostProfile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
