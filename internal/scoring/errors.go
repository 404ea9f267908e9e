package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation         = errors.New("invalid request")
	ErrUnknownCategory    = errors.New("unknown product category")
	ErrSchemaMismatch     = errors.New("feature schema mismatch")
	ErrPredictorFailure   = errors.New("predictor failure")
	ErrPredictorTimeout   = errors.New("predictor timeout")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)

// ValidationError reports a bad request field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// SchemaMismatchError lists the materials whose attributes cannot form a
// feature vector. It matches ErrSchemaMismatch.
type SchemaMismatchError struct {
	Missing map[string][]Attribute
}

func (e *SchemaMismatchError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for name, attrs := range e.Missing {
		parts := make([]string, len(attrs))
		for i, a := range attrs {
			parts[i] = string(a)
		}
		names = append(names, fmt.Sprintf("%s (%s)", name, strings.Join(parts, ", ")))
	}
	sort.Strings(names)
	return fmt.Sprintf("%s: %s", ErrSchemaMismatch, strings.Join(names, "; "))
}

func (e *SchemaMismatchError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
