package ports

import "github.com/magnolia-os/magnolia-go/domain/entities"

// ProfileParser parses raw YAML bytes into a HostProfile.
type ProfileParser interface {
	// Parse unmarshals YAML bytes into a HostProfile struct.
	Parse(data []byte) (*entities.HostProfile, error)
}
