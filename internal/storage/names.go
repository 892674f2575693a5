package storage

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// UniqueName returns a random UUIDv4 followed by ext. The original filename
// never reaches the disk.
func UniqueName(ext string) string {
	return uuid.NewString() + ext
}

// SanitizeSubdir turns an arbitrary entity name into a single safe directory
// component: anything other than letters, numbers, space, '-' and '_' becomes
// '_', surrounding whitespace is trimmed, spaces become '_' and runs of '_'
// collapse into one.
func SanitizeSubdir(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), r == ' ', r == '-', r == '_':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	clean := strings.ReplaceAll(strings.TrimSpace(sb.String()), " ", "_")

	sb.Reset()
	prev := rune(0)
	for _, r := range clean {
		if r == '_' && prev == '_' {
			continue
		}
		sb.WriteRune(r)
		prev = r
	}
	return sb.String()
}
