package validation

import (
	"errors"
	"regexp"
	"strings"
)

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ValidateHTTPURL accepts only absolute http and https URLs.
func ValidateHTTPURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("Site URL is required")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		return errors.New("Site URL must start with http:// or https://")
	}
	return nil
}

func ValidateHexColor(color string) error {
	if !hexColor.MatchString(color) {
		return errors.New("color must be a hex value like #00FF41")
	}
	return nil
}
