package relations

import (
	"errors"
	"fmt"
)

// Sentinel failures raised by model operations. Sources wrap them in a
// ModelError naming the model they occurred on.
var (
	// ErrMultipleRetrieved is raised when a one-mode retrieve matches more
	// than one row.
	ErrMultipleRetrieved = errors.New("more than one retrieved")

	// ErrNoneRetrieved is raised when a verified one-mode retrieve matches
	// no rows.
	ErrNoneRetrieved = errors.New("none retrieved")

	// ErrNothingToUpdate is raised when a model has neither criteria with
	// pending values nor records to update.
	ErrNothingToUpdate = errors.New("nothing to update from")

	// ErrNothingToDelete is raised when a model has neither criteria nor
	// identifiable records to delete.
	ErrNothingToDelete = errors.New("nothing to delete from")

	// ErrNoSource is raised when a schema names a source that is not
	// registered.
	ErrNoSource = errors.New("source not registered")
)

// ModelError ties an operation failure to the model it happened on.
type ModelError struct {
	Model string
	Err   error
}

// NewModelError wraps err with the model name it occurred on.
func NewModelError(model string, err error) *ModelError {
	return &ModelError{Model: model, Err: err}
}

// Error renders as "<model>: <failure>".
func (e *ModelError) Error() string {
	return fmt.Sprintf("%s: %s", e.Model, e.Err)
}

// Unwrap exposes the underlying sentinel for errors.Is checks.
func (e *ModelError) Unwrap() error {
	return e.Err
}
