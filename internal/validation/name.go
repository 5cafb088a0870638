package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength     = 200
	MaxSiteNameLength = 15
)

// ValidateName checks a catalog item name.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("name is required")
	}

	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return fmt.Errorf("name is too long (max %d characters)", MaxNameLength)
	}

	return nil
}

// ValidateSiteName checks the source site label shown next to an entry.
func ValidateSiteName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 {
		return errors.New("Site name is required")
	}
	if n > MaxSiteNameLength {
		return fmt.Errorf("Site name must be at most %d characters", MaxSiteNameLength)
	}
	return nil
}
