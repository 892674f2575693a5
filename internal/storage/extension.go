package storage

import (
	"sort"
	"strings"
)

// Extensions is an allow-list of lower-case file extensions, dot included.
type Extensions map[string]struct{}

func NewExtensions(exts ...string) Extensions {
	set := make(Extensions, len(exts))
	for _, e := range exts {
		set[strings.ToLower(e)] = struct{}{}
	}
	return set
}

// Allow-lists per asset class.
var (
	ImageExtensions    = NewExtensions(".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg")
	DocumentExtensions = NewExtensions(".pdf", ".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx", ".txt", ".csv", ".odt", ".ods")
)

func (e Extensions) Contains(ext string) bool {
	_, ok := e[ext]
	return ok
}

// List returns the extensions sorted, for error messages.
func (e Extensions) List() []string {
	out := make([]string, 0, len(e))
	for ext := range e {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extension returns the case-folded suffix starting at the last dot of the
// base name, or "" when there is none.
func Extension(filename string) string {
	base := filename
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	i := strings.LastIndex(base, ".")
	if i <= 0 {
		// no dot, or a dotfile like ".env"
		return ""
	}
	return strings.ToLower(base[i:])
}

// ValidateExtension reports whether filename carries an allowed extension.
func ValidateExtension(filename string, allowed Extensions) bool {
	ext := Extension(filename)
	return ext != "" && allowed.Contains(ext)
}
