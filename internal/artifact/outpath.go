package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sanitizeHint strips characters that are unsafe in a file name derived
// from a font name hint.
func sanitizeHint(hint string) string {
	safe := strings.ReplaceAll(hint, " ", "")
	safe = strings.ReplaceAll(safe, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	if safe == "" {
		safe = "font"
	}
	return safe
}

// AllocatePath picks a non-colliding output path in dir for a generated
// artifact named after hint, with an optional suffix and the given
// extension (without dot). Existing files are never overwritten; an
// incrementing numeric suffix resolves collisions.
func AllocatePath(dir, hint, suffix, ext string) (string, error) {
	base := sanitizeHint(hint)
	if suffix != "" {
		base = base + "-" + sanitizeHint(suffix)
	}

	candidate := filepath.Join(dir, fmt.Sprintf("%s.%s", base, ext))
	for n := 1; ; n++ {
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return candidate, nil
			}
			return "", err
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d.%s", base, n, ext))
	}
}
