package valueobjects

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email represents a normalized email address.
type Email struct {
	value string
}

// NewEmail trims, lowercases and validates value.
func NewEmail(value string) (*Email, error) {
	normalized := strings.TrimSpace(strings.ToLower(value))

	if normalized == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}
	if len(normalized) > 255 {
		return nil, fmt.Errorf("email cannot exceed 255 characters")
	}
	if !emailRegex.MatchString(normalized) {
		return nil, fmt.Errorf("invalid email format: %s", value)
	}

	return &Email{value: normalized}, nil
}

func (e *Email) String() string {
	return e.value
}

func (e *Email) Equals(other *Email) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.value == other.value
}

// LocalPart returns the part before '@'. It is the fallback display name.
func (e *Email) LocalPart() string {
	local, _, _ := strings.Cut(e.value, "@")
	return local
}

// Domain returns the part after '@'.
func (e *Email) Domain() string {
	_, domain, _ := strings.Cut(e.value, "@")
	return domain
}

// LocalPartOf returns the local part of a raw address without validation.
func LocalPartOf(address string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(address), "@")
	return local
}
