package services

import (
	"errors"

	db "github.com/superfishal-intelligence/backend/internal/core/database"
	"github.com/superfishal-intelligence/backend/internal/platform/apierr"
)

// storeErr maps store sentinels to client-facing errors. Anything else passes
// through untouched and ends up as a 500.
func storeErr(err error, notFound, duplicate string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrNotFound) && notFound != "":
		return apierr.NotFound(notFound)
	case errors.Is(err, db.ErrDuplicate) && duplicate != "":
		return apierr.Conflict(duplicate, err)
	default:
		return err
	}
}
