package service

import (
	"errors"

	"workspace-service/internal/apperror"
	"workspace-service/internal/store"
)

// storeError converts a store failure into the service error taxonomy
func storeError(notFoundMsg string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return apperror.NotFound(notFoundMsg, err)
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Internal("store operation failed", err)
}
