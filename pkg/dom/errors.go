package dom

import "github.com/vango-dev/hostdom/internal/errors"

// Sentinel errors for structural misuse. Returned errors carry more detail
// but match these under errors.Is.
var (
	ErrNilNode        = errors.New("E100")
	ErrHierarchy      = errors.New("E101")
	ErrNotChild       = errors.New("E102")
	ErrNotSupported   = errors.New("E103")
	ErrForeignSession = errors.New("E104")
)

func errorf(sentinel *errors.Error, format string, args ...any) error {
	return errors.New(sentinel.Code).WithDetailf(format, args...)
}
