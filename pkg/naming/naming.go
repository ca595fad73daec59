// Package naming produces the on-disk names of stored files.
//
// A stored name is a random UUID, a dash, and a sanitized copy of the name the
// client supplied, e.g. "9b2f...c1e0-report.pdf". The UUID makes names unique
// without coordination; the suffix keeps them readable.
package naming

import (
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// Separator joins the token and the original name.
	Separator = "-"
	// FallbackName replaces originals that sanitize to nothing.
	FallbackName = "file"

	tokenLength  = 36
	prefixLength = tokenLength + len(Separator)

	// Keeps the full stored name under the common 255-byte NAME_MAX.
	maxOriginalBytes = 200
	maxExtBytes      = 32
)

// Generate returns a new unique stored name for original.
func Generate(original string) string {
	return uuid.NewString() + Separator + Sanitize(original)
}

// Sanitize strips everything that could make original unsafe as a single
// path element: directory components, control characters and invalid UTF-8.
func Sanitize(original string) string {
	name := strings.ToValidUTF8(original, "")
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}

	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if strings.Trim(name, ".") == "" {
		return FallbackName
	}

	name = strings.TrimSpace(truncate(name))
	if strings.Trim(name, ".") == "" {
		return FallbackName
	}
	return name
}

// truncate shortens name to maxOriginalBytes, keeping a short extension intact.
func truncate(name string) string {
	if len(name) <= maxOriginalBytes {
		return name
	}

	ext := filepath.Ext(name)
	if len(ext) > maxExtBytes {
		ext = ""
	}
	base := name[:len(name)-len(ext)]

	budget := maxOriginalBytes - len(ext)
	for budget > 0 && !utf8.RuneStart(base[budget]) {
		budget--
	}
	return base[:budget] + ext
}

// Valid reports whether stored has the shape Generate produces. Anything else
// is never looked up on disk.
func Valid(stored string) bool {
	if len(stored) <= prefixLength {
		return false
	}
	if stored[tokenLength:prefixLength] != Separator {
		return false
	}
	if _, err := uuid.Parse(stored[:tokenLength]); err != nil {
		return false
	}
	suffix := stored[prefixLength:]
	return Sanitize(suffix) == suffix
}

// Original returns the sanitized client name embedded in stored, or "" if
// stored is not a generated name.
func Original(stored string) string {
	if !Valid(stored) {
		return ""
	}
	return stored[prefixLength:]
}
