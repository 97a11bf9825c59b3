package errors

import (
	"net/url"
	"strings"
	"unicode"
)

const (
	maxNodeIDLength = 256
	maxPathLength   = 4096
)

// ValidateNodeID checks a city name received from a data source or a
// click: non-empty, at most 256 bytes, no control characters.
func ValidateNodeID(id string) error {
	return checkText(ErrCodeInvalidInput, "node id", id, maxNodeIDLength)
}

// ValidatePath checks a local file path given to a data source.
func ValidatePath(path string) error {
	return checkText(ErrCodeInvalidPath, "path", path, maxPathLength)
}

func checkText(code Code, what, s string, limit int) error {
	switch {
	case s == "":
		return New(code, "%s cannot be empty", what)
	case len(s) > limit:
		return New(code, "%s too long (max %d characters)", what, limit)
	case strings.ContainsFunc(s, unicode.IsControl):
		return New(code, "%s contains control characters", what)
	}
	return nil
}

// ValidateContainerID checks a display container id. Ids appear in URLs
// and element ids, so only letters, digits, '-' and '_' are allowed.
func ValidateContainerID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "container id cannot be empty")
	}
	if i := strings.IndexFunc(id, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_'
	}); i >= 0 {
		return New(ErrCodeInvalidInput, "container id contains invalid character %q", id[i])
	}
	return nil
}

// ValidateURL requires an absolute http or https URL with a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL %q has no host", rawURL)
	}
	return nil
}
