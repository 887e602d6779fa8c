package editor

import (
	"errors"
	"fmt"
)

// EditError represents a recoverable failure inside the editing core.
//
// Edit errors include:
//   - No target layer: add attempted with no layer selected
//   - Incomplete geometry: commit below the minimum vertex count
//   - Empty query result: a box query matched nothing
//   - Export failure: the capture/compose step failed
//
// None of these terminates the editing session or corrupts shared
// state; every failure leaves tool mode and record store consistent.
type EditError struct {
	// Code identifies the error category.
	Code EditErrorCode

	// Message is a human-readable description.
	Message string

	// LayerID identifies the affected layer, when relevant.
	LayerID string

	// Err is the underlying cause, when wrapping.
	Err error
}

// EditErrorCode categorizes edit errors.
type EditErrorCode string

const (
	// ErrCodeNoTargetLayer indicates an add with no layer selected.
	ErrCodeNoTargetLayer EditErrorCode = "NO_TARGET_LAYER"

	// ErrCodeIncompleteGeometry indicates a commit below the minimum
	// vertex count for the session's geometry kind.
	ErrCodeIncompleteGeometry EditErrorCode = "INCOMPLETE_GEOMETRY"

	// ErrCodeEmptyQueryResult indicates a box query matched no records.
	ErrCodeEmptyQueryResult EditErrorCode = "EMPTY_QUERY_RESULT"

	// ErrCodeExportFailure indicates the capture/compose step failed.
	ErrCodeExportFailure EditErrorCode = "EXPORT_FAILURE"
)

// Error implements the error interface.
func (e *EditError) Error() string {
	if e.LayerID != "" {
		return fmt.Sprintf("%s: %s (layer=%s)", e.Code, e.Message, e.LayerID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *EditError) Unwrap() error {
	return e.Err
}

// IsIncompleteGeometry returns true for incomplete-geometry errors.
// Uses errors.As to handle wrapped errors.
func IsIncompleteGeometry(err error) bool {
	var ee *EditError
	return errors.As(err, &ee) && ee.Code == ErrCodeIncompleteGeometry
}

// IsEmptyQueryResult returns true for empty-query-result errors.
func IsEmptyQueryResult(err error) bool {
	var ee *EditError
	return errors.As(err, &ee) && ee.Code == ErrCodeEmptyQueryResult
}

// NewNoTargetLayerError creates an EditError for an add attempt with no
// layer selected.
func NewNoTargetLayerError() *EditError {
	return &EditError{
		Code:    ErrCodeNoTargetLayer,
		Message: "select a target layer before adding features",
	}
}

// NewIncompleteGeometryError creates an EditError for a commit below
// the minimum vertex count.
func NewIncompleteGeometryError(kindName string, have, need int) *EditError {
	return &EditError{
		Code:    ErrCodeIncompleteGeometry,
		Message: fmt.Sprintf("%s needs at least %d vertices, have %d", kindName, need, have),
	}
}

// NewEmptyQueryResultError creates an EditError for a query that
// matched nothing.
func NewEmptyQueryResultError() *EditError {
	return &EditError{
		Code:    ErrCodeEmptyQueryResult,
		Message: "no visible features inside the query rectangle",
	}
}

// NewExportFailureError wraps a capture/compose failure.
func NewExportFailureError(err error) *EditError {
	return &EditError{
		Code:    ErrCodeExportFailure,
		Message: "map export failed",
		Err:     err,
	}
}
