package catalog

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel causes.  Readers wrap these so that the engine can decide, via
// errors.Cause, whether to try the next reader.
var (
	// ErrUnknownFormat means the reader does not recognize the format.  The next
	// reader is tried.
	ErrUnknownFormat = errors.New("unknown catalog format")

	// ErrUnparseable means the reader could not make sense of the content.
	// The next reader is tried.
	ErrUnparseable = errors.New("unparseable catalog")

	// ErrParseFailed means the reader recognized the format, but the content
	// is invalid.  No other reader is tried for that resource.
	ErrParseFailed = errors.New("catalog parse failed")

	// ErrConfiguration means an entry could not be constructed
	ErrConfiguration = errors.New("invalid catalog entry")

	// ErrNotFound means a catalog resource does not exist
	ErrNotFound = errors.New("catalog resource not found")
)

// Class is a coarse classification of catalog failures
type Class int

// Failure classes
const (
	ConfigurationError Class = iota + 1
	ResourceError
	FormatError
)

func (c Class) String() string {
	switch c {
	case ConfigurationError:
		return "configuration error"
	case ResourceError:
		return "resource error"
	case FormatError:
		return "format error"
	default:
		return "error"
	}
}

// Error is a catalog failure, annotated with the resource that caused it, if any.
type Error struct {
	Class    Class
	Location string
	Err      error
}

func (e *Error) Error() string {
	if e.Location == "" {
		return fmt.Sprintf("%s: %s", e.Class, e.Err)
	}
	return fmt.Sprintf("%s in %s: %s", e.Class, e.Location, e.Err)
}

// Cause allows errors.Cause to see through to the underlying failure
func (e *Error) Cause() error {
	return e.Err
}

// Unwrap supports errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Err
}

// Classify determines the class of a reader or transport failure
func Classify(err error) Class {
	if e, ok := err.(*Error); ok {
		return e.Class
	}

	switch errors.Cause(err) {
	case ErrConfiguration:
		return ConfigurationError
	case ErrUnknownFormat, ErrUnparseable, ErrParseFailed:
		return FormatError
	default:
		return ResourceError
	}
}

// Errors collects the failures encountered while parsing a set of catalogs.
// Parsing continues past each of them, so a non-nil Errors still leaves a
// usable catalog behind.
type Errors []*Error

func (errs Errors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil if there are no errors, or the collection otherwise
func (errs Errors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
