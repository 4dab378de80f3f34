package clipboard

import (
	"errors"
	"strings"

	"github.com/atotto/clipboard"
)

var clipboardWriteAll = clipboard.WriteAll

// ErrNothingToCopy is returned for blank text.
var ErrNothingToCopy = errors.New("nothing to copy")

// CopyText puts text on the system clipboard with line endings normalised
// and surrounding whitespace trimmed.
func CopyText(text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrNothingToCopy
	}
	return clipboardWriteAll(text)
}

// Unsupported reports whether the platform has no clipboard backend.
func Unsupported() bool {
	return clipboard.Unsupported
}
