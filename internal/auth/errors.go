package auth

import (
	"fmt"

	"github.com/rotisserie/eris"
)

var (
	ErrInvalidPhone     = eris.New("invalid phone number")
	ErrInvalidPINFormat = eris.New("pin must be 4 to 6 digits")
	ErrNameRequired     = eris.New("name required")
	ErrPhoneTaken       = eris.New("phone already registered")
	ErrUserNotFound     = eris.New("user not found")
	ErrLocked           = eris.New("account locked")
	ErrInvalidPIN       = eris.New("invalid pin")
	ErrInvalidSession   = eris.New("invalid session")
)

// InvalidPINError is a wrong PIN. Remaining is the number of attempts left
// before the account locks; zero means this attempt locked it.
type InvalidPINError struct {
	Remaining int
}

func (e *InvalidPINError) Error() string {
	return fmt.Sprintf("invalid pin, %d attempts left", e.Remaining)
}

func (e *InvalidPINError) Is(target error) bool {
	return target == ErrInvalidPIN
}
