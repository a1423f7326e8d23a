package photo

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// DefaultCaption derives a caption from a filename by stripping the final
// extension. The extension is only stripped when at least one character
// follows the last dot and that suffix contains no path separator, so
// "notes." and "dir.v2/file" are kept as they are. Case is irrelevant:
// "site-photo.JPG" becomes "site-photo".
func DefaultCaption(filename string) string {
	caption := filename
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		if !strings.Contains(filename[i+1:], "/") {
			caption = filename[:i]
		}
	}
	// Uploads from macOS carry decomposed (NFD) names.
	return norm.NFC.String(caption)
}
