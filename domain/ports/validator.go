package ports

import "github.com/magnolia-os/magnolia-go/domain/entities"

// DocumentValidator checks a decoded profile document against the profile
// JSON schema before it is bound to a struct.
type DocumentValidator interface {
	Validate(doc any) (*entities.ValidationResult, error)
}
