package generator

import "errors"

// ErrNoRows rejects a batch that is absent or empty.
var ErrNoRows = errors.New("no rows provided")

// GenerationError wraps a provider call or response parse failure.
type GenerationError struct {
	err error
}

func (e *GenerationError) Error() string {
	return "generate descriptions: " + e.err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.err
}

func newGenerationError(err error) error {
	return &GenerationError{err: err}
}

// IsGenerationFailed reports whether err is a GenerationError.
func IsGenerationFailed(err error) bool {
	var gen *GenerationError
	return errors.As(err, &gen)
}
