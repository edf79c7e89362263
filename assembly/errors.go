package assembly

import "fmt"

// StructuralError is fatal to an assembly pass: malformed mesh adjacency,
// mismatched space/state sizes, or an underivable block-enable map. The pass
// aborts and leaves no partially usable matrix behind; recovery is the
// caller's decision, typically aborting the enclosing Newton iteration.
type StructuralError struct {
	Msg string
	Err error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return "sparse structure: " + e.Msg + ": " + e.Err.Error()
	}
	return "sparse structure: " + e.Msg
}

func (e *StructuralError) Unwrap() error { return e.Err }

func structuralErrorf(format string, args ...interface{}) error {
	return &StructuralError{Msg: fmt.Sprintf(format, args...)}
}

func wrapStructural(msg string, err error) error {
	return &StructuralError{Msg: msg, Err: err}
}

// ConfigurationError reports a weak formulation that does not fit its
// declared equation count. It is the caller's programming error, raised at
// registration time so a broken setup never reaches an assembly pass.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string {
	return "weak formulation: " + e.Msg
}

func configurationErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}
