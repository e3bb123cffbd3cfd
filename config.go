package magnolia

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/magnolia-os/magnolia-go/fs"
)

// validate is a package-level singleton; building a validator is expensive.
var validate = validator.New()

// ReadConfig loads a YAML job configuration file through fsys into target
// and checks it against target's validation tags.
func ReadConfig(fsys *fs.FS, path string, target any) error {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	return DecodeConfig(data, target)
}

// DecodeConfig unmarshals YAML data into target and validates it.
func DecodeConfig(data []byte, target any) error {
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
