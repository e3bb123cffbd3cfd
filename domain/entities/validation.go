package entities

// ValidationResult is the outcome of checking a profile document against
// the profile schema.
type ValidationResult struct {
	Errors []ValidationError
	Valid  bool
}

// ValidationError is one schema violation.
type ValidationError struct {
	// Field is the JSON pointer of the offending value, "" for the root.
	Field string
	// Keyword is the schema keyword location that rejected it.
	Keyword string
	Message string
}

func (e ValidationError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Messages returns one line per violation.
func (r *ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		out = append(out, e.String())
	}
	return out
}
