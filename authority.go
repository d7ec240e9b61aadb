package tile

import (
	"path/filepath"
	"strings"
)

// AuthorityFromPath derives the authority token addressing a loaded
// container from its file path.
//
// The file's base name (extension included) is lower-cased, every rune
// outside ASCII letters, digits, hyphen, and period becomes a hyphen,
// and leading/trailing hyphens are trimmed. Purely deterministic, no
// I/O. Distinct files can normalize to the same authority; the store
// resolves collisions last-open-wins.
func AuthorityFromPath(path string) string {
	base := strings.ToLower(filepath.Base(path))
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '-'
		}
	}, base)
	return strings.Trim(mapped, "-")
}
