package handlers

import (
	"errors"

	"github.com/vidtube/backend/internal/apperr"
	"github.com/vidtube/backend/internal/repositories"
)

// lookupError translates a repository read failure for the named resource.
func lookupError(err error, resource string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.Newf(apperr.NotFound, "%s not found", resource)
	}
	return apperr.Internalf(err, "load %s", resource)
}

// writeError translates a repository write failure for the named resource.
func writeError(err error, resource string) error {
	switch {
	case errors.Is(err, repositories.ErrConflict):
		return apperr.Newf(apperr.Conflict, "%s already exists", resource)
	case errors.Is(err, repositories.ErrNotFound):
		return apperr.Newf(apperr.NotFound, "%s not found", resource)
	default:
		return apperr.Internalf(err, "write %s", resource)
	}
}
