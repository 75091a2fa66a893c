package service

import "github.com/pageza/foodgram/backend/internal/apperrors"

// Principal identifies the caller of a service operation. The zero value is
// the anonymous caller.
type Principal struct {
	UserID uint
}

func Anonymous() Principal { return Principal{} }

func (p Principal) IsAnonymous() bool { return p.UserID == 0 }

func (p Principal) require() error {
	if p.IsAnonymous() {
		return apperrors.Unauthorized("authentication credentials were not provided")
	}
	return nil
}
