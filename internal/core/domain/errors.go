package domain

import (
	"errors"
	"fmt"
)

// Error kinds for the scan pipeline. Only ErrConfig is fatal; every other
// kind degrades to a per-document record with Error set.
var (
	ErrExtraction = errors.New("extraction failure")
	ErrTransport  = errors.New("transport failure")
	ErrParse      = errors.New("parse failure")
	ErrValidation = errors.New("validation failure")
	ErrConfig     = errors.New("configuration error")
	ErrNotFound   = errors.New("not found")
	ErrTemporary  = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
