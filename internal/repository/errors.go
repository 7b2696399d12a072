package repository

import (
	"errors"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

var (
	ErrNotFound    = eris.New("record not found")
	ErrDuplicate   = eris.New("record already exists")
	ErrRateLimited = eris.New("rate limit exceeded")
)

// notFound converts gorm's sentinel into ErrNotFound and wraps anything else.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return eris.Wrap(ErrNotFound, msg)
	}
	return eris.Wrap(err, msg)
}
