package validation

import (
	"errors"
)

const MinPasswordLength = 8

// ValidatePassword enforces the length rules bcrypt can honour.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("password must be at least 8 characters")
	}

	// bcrypt silently truncates anything past 72 bytes
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	return nil
}
