package profile

import (
	stdErrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/magnolia-os/magnolia-go/domain/entities"
	"github.com/magnolia-os/magnolia-go/domain/errors"
)

var (
	// ErrMissingErrno is reported when a profile lacks a code the runtime
	// synthesizes or the simulator reports.
	ErrMissingErrno = stdErrors.New("missing required error code")

	// ErrDuplicateErrno is reported when two entries share a name or code.
	ErrDuplicateErrno = stdErrors.New("duplicate error code")

	// ErrFlagLayout is reported when open-flag bits collide.
	ErrFlagLayout = stdErrors.New("inconsistent open flags")
)

// validate is a package-level singleton; field names follow yaml tags.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks p beyond what the schema can express: struct tags, the
// required error names, unique error numbering and non-overlapping flags.
func Validate(p *entities.HostProfile) error {
	if p == nil {
		return &errors.ProfileError{Err: stdErrors.New("profile is nil")}
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if stdErrors.As(err, &verrs) && len(verrs) > 0 {
			return &errors.ProfileError{Field: verrs[0].Namespace(), Err: err}
		}
		return &errors.ProfileError{Err: err}
	}
	if err := validateErrno(p.Errno); err != nil {
		return err
	}
	return validateFlags(p.Flags)
}

func validateErrno(table entities.ErrnoTable) error {
	names := make(map[string]bool, len(table))
	codes := make(map[int32]string, len(table))
	for i, e := range table {
		field := fmt.Sprintf("errno[%d]", i)
		if names[e.Name] {
			return &errors.ProfileError{Field: field, Err: fmt.Errorf("%w: name %s", ErrDuplicateErrno, e.Name)}
		}
		if other, ok := codes[e.Code]; ok {
			return &errors.ProfileError{Field: field, Err: fmt.Errorf("%w: %s and %s are both %d", ErrDuplicateErrno, other, e.Name, e.Code)}
		}
		names[e.Name] = true
		codes[e.Code] = e.Name
	}
	for _, name := range entities.RequiredErrnoNames {
		if !names[name] {
			return &errors.ProfileError{Field: "errno", Err: fmt.Errorf("%w: %s", ErrMissingErrno, name)}
		}
	}
	return nil
}

func validateFlags(f entities.OpenFlags) error {
	fail := func(field, format string, args ...any) error {
		return &errors.ProfileError{Field: "open_flags." + field, Err: fmt.Errorf("%w: "+format, append([]any{ErrFlagLayout}, args...)...)}
	}

	modes := []struct {
		field string
		value int32
	}{
		{"rdonly", f.ReadOnly}, {"wronly", f.WriteOnly}, {"rdwr", f.ReadWrite},
	}
	for _, m := range modes {
		if m.value&^f.AccessMask != 0 {
			return fail(m.field, "%#x outside accmode %#x", m.value, f.AccessMask)
		}
	}
	if f.ReadOnly == f.WriteOnly || f.ReadOnly == f.ReadWrite || f.WriteOnly == f.ReadWrite {
		return fail("accmode", "access modes are not distinct")
	}

	bits := []struct {
		field string
		value int32
	}{
		{"append", f.Append}, {"creat", f.Create}, {"trunc", f.Truncate},
		{"excl", f.Exclusive}, {"nonblock", f.NonBlock}, {"cloexec", f.CloseOnExec},
	}
	seen := f.AccessMask
	for _, b := range bits {
		if b.value == 0 {
			continue
		}
		if b.value&seen != 0 {
			return fail(b.field, "%#x overlaps another flag", b.value)
		}
		seen |= b.value
	}
	return nil
}
