package gcs

import "errors"

// Model-build errors (spec.md §7): fail-fast before search, no proof written.
var (
	ErrDuplicateName       = errors.New("gcs: duplicate variable name")
	ErrEmptyDomain         = errors.New("gcs: variable created with an empty domain")
	ErrCoefficientOverflow = errors.New("gcs: linear coefficient would overflow Integer")
	ErrMismatchedTupleWidth = errors.New("gcs: table tuple width does not match variable count")
	ErrUnimplemented       = errors.New("gcs: unimplemented")
	ErrProofAfterConclusion = errors.New("gcs: attempted to write to proof after conclusion")
	ErrBadConstraintLine    = errors.New("gcs: reference to a nonexistent constraint line")
)

// BuildError wraps one of the sentinels above with context identifying what
// was being built when the failure occurred.
type BuildError struct {
	Op  string
	Err error
}

func (e *BuildError) Error() string {
	return "gcs: " + e.Op + ": " + e.Err.Error()
}

func (e *BuildError) Unwrap() error { return e.Err }

func newBuildError(op string, err error) error {
	return &BuildError{Op: op, Err: err}
}
