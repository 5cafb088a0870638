package validation

import "fmt"

// Error is a client input error tied to a request field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// Field attaches a field name to a plain validation error.
func Field(field string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Field: field, Message: err.Error()}
}
