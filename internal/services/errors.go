package services

import (
	"errors"

	"gorm.io/gorm"
)

// Error kinds returned by the services. Handlers map them to HTTP statuses.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("service unavailable")
)

// notFound converts gorm's record-not-found into ErrNotFound and leaves
// other errors untouched.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
