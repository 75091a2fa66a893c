package integration

import (
	"errors"

	"github.com/pageza/foodgram/backend/internal/apperrors"
)

func isConflict(err error) bool {
	var conflict *apperrors.ConflictError
	return errors.As(err, &conflict)
}
