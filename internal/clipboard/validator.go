package clipboard

import (
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
)

var clipboardReadAll = clipboard.ReadAll

// Validator checks candidate endpoint URLs.
type Validator struct {
	allowedSchemes map[string]bool
}

func NewValidator() *Validator {
	return &Validator{
		allowedSchemes: map[string]bool{"http": true, "https": true},
	}
}

// ExtractURL returns text as a normalised endpoint URL, or "" when it is not
// a single absolute http(s) URL.
func (v *Validator) ExtractURL(text string) string {
	text = strings.TrimSpace(text)

	if len(text) > 2048 || strings.ContainsAny(text, "\n\r\t ") {
		return ""
	}

	parsed, err := url.Parse(text)
	if err != nil || parsed.Host == "" || !v.allowedSchemes[strings.ToLower(parsed.Scheme)] {
		return ""
	}

	return parsed.String()
}

// ReadURL returns an endpoint URL found on the clipboard, or "".
func ReadURL() string {
	text, err := clipboardReadAll()
	if err != nil {
		return ""
	}
	return NewValidator().ExtractURL(text)
}
