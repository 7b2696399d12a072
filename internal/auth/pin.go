package auth

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/crypto/bcrypt"
)

var pinCost = bcrypt.DefaultCost

func ValidatePIN(pin string) error {
	if len(pin) < 4 || len(pin) > 6 {
		return ErrInvalidPINFormat
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPINFormat
		}
	}
	return nil
}

func HashPIN(pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), pinCost)
	if err != nil {
		return "", eris.Wrap(err, "hash pin")
	}
	return string(hash), nil
}

func CheckPIN(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}

// NormalizePhone returns a Turkish mobile number as +905XXXXXXXXX. It
// accepts 05xx, 5xx, 905xx and +905xx forms with spaces, dashes or brackets.
func NormalizePhone(raw string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+':
			return -1
		default:
			return 'x'
		}
	}, strings.TrimSpace(raw))
	if strings.ContainsRune(digits, 'x') {
		return "", eris.Wrapf(ErrInvalidPhone, "%q", raw)
	}

	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "90"):
		digits = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		digits = digits[1:]
	}
	if len(digits) != 10 || digits[0] != '5' {
		return "", eris.Wrapf(ErrInvalidPhone, "%q", raw)
	}
	return "+90" + digits, nil
}
