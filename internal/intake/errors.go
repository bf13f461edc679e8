package intake

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/farellandr/thm-registration/internal/helpers"
	"github.com/farellandr/thm-registration/internal/store"
)

// ValidationError lists every rule the submission broke.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d violation(s)", len(e.Violations))
}

// DuplicateEmailError means a ticket already exists for the email.
type DuplicateEmailError struct {
	Email string
}

func (e *DuplicateEmailError) Error() string {
	return "a registration with this email already exists"
}

// StorageError wraps registration store failures other than unique
// violations.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed", e.Op)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps an intake error to the status code returned to the caller.
func HTTPStatus(err error) int {
	var (
		validationErr *ValidationError
		dupEmailErr   *DuplicateEmailError
		dupKeyErr     *store.DuplicateKeyError
		fileErr       *helpers.FileConstraintError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr),
		errors.As(err, &dupEmailErr),
		errors.As(err, &dupKeyErr),
		errors.As(err, &fileErr):
		return http.StatusBadRequest
	default:
		// Upload and storage failures.
		return http.StatusInternalServerError
	}
}
