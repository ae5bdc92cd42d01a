package catalog

import (
	"errors"
	"fmt"
)

// NotFoundError reports a lookup against an identifier the catalog does not
// contain. Handlers treat it as a stale button, not a failure.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: %s not found: %s", e.Kind, e.ID)
}

// Code tags the error for summary logs.
func (e *NotFoundError) Code() string { return "NOT_FOUND" }

// IsNotFound reports whether err is a catalog lookup miss.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
