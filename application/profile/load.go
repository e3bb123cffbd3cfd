package profile

import (
	"bytes"
	stdErrors "errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/magnolia-os/magnolia-go/application/validation"
	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/errors"
	"github.com/magnolia-os/magnolia-go/domain/ports"
	"github.com/magnolia-os/magnolia-go/infrastructure/parser"
)

// ErrSchema is wrapped by errors for documents that fail the profile schema.
var ErrSchema = stdErrors.New("profile does not match schema")

// Loader turns YAML documents into validated host profiles.
type Loader struct {
	parser ports.ProfileParser
	docs   ports.DocumentValidator
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithParser replaces the YAML parser.
func WithParser(p ports.ProfileParser) LoaderOption {
	return func(l *Loader) {
		l.parser = p
	}
}

// WithDocumentValidator replaces the schema check.
func WithDocumentValidator(v ports.DocumentValidator) LoaderOption {
	return func(l *Loader) {
		l.docs = v
	}
}

// NewLoader creates a Loader with the YAML parser and the generated
// profile schema.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	l := &Loader{parser: parser.NewYamlProfileParser()}
	for _, opt := range opts {
		opt(l)
	}
	if l.docs == nil {
		v, err := validation.NewProfileValidator()
		if err != nil {
			return nil, err
		}
		l.docs = v
	}
	return l, nil
}

// Load checks data against the schema, decodes it and validates the result.
func (l *Loader) Load(data []byte) (*entities.HostProfile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &errors.ProfileError{Err: stdErrors.New("empty document")}
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &errors.ProfileError{Err: err}
	}
	res, err := l.docs.Validate(doc)
	if err != nil {
		return nil, &errors.ProfileError{Err: err}
	}
	if !res.Valid {
		return nil, schemaError(res)
	}

	p, err := l.parser.Parse(data)
	if err != nil {
		return nil, &errors.ProfileError{Err: err}
	}
	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadFile reads and loads the profile at path.
func (l *Loader) LoadFile(path string) (*entities.HostProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	return l.Load(data)
}

// Marshal renders p as YAML.
func Marshal(p *entities.HostProfile) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func schemaError(res *entities.ValidationResult) error {
	field := ""
	if len(res.Errors) > 0 {
		field = res.Errors[0].Field
	}
	return &errors.ProfileError{
		Field: field,
		Err:   fmt.Errorf("%w: %s", ErrSchema, strings.Join(res.Messages(), "; ")),
	}
}
