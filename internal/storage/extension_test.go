package storage

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"drill.png", ".png"},
		{"DRILL.PNG", ".png"},
		{"archive.tar.gz", ".gz"},
		{"manual", ""},
		{".env", ""},
		{"dir.v2/manual", ""},
		{`C:\docs\Manual.PDF`, ".pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, Extension(tt.filename))
		})
	}
}

func TestValidateExtension(t *testing.T) {
	for ext := range ImageExtensions {
		assert.True(t, ValidateExtension("photo"+ext, ImageExtensions), ext)
		assert.False(t, ValidateExtension("photo"+ext, DocumentExtensions), ext)
	}
	for ext := range DocumentExtensions {
		assert.True(t, ValidateExtension("doc"+ext, DocumentExtensions), ext)
	}

	assert.True(t, ValidateExtension("Photo.JpEg", ImageExtensions))
	assert.True(t, ValidateExtension("REPORT.XLSX", DocumentExtensions))

	assert.False(t, ValidateExtension("setup.exe", DocumentExtensions))
	assert.False(t, ValidateExtension("png", ImageExtensions))
	assert.False(t, ValidateExtension("image.png.exe", ImageExtensions))
	assert.False(t, ValidateExtension("", ImageExtensions))
}

func TestExtensionsList(t *testing.T) {
	assert.Equal(t, []string{".gif", ".jpeg", ".jpg", ".png", ".svg", ".webp"}, ImageExtensions.List())
	assert.Len(t, DocumentExtensions.List(), 11)
}

func TestUniqueName(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\.png$`)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		name := UniqueName(".png")
		assert.Regexp(t, pattern, name)
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
}

func TestSanitizeSubdir(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Drill", "Drill"},
		{"spaces", "Power Drill", "Power_Drill"},
		{"multiple spaces", "  Power   Drill  ", "Power_Drill"},
		{"traversal", "../etc/passwd", "_etc_passwd"},
		{"slashes", "Drill/Driver\\Set", "Drill_Driver_Set"},
		{"unicode punctuation", "Drill «Pro» 2000", "Drill_Pro_2000"},
		{"unicode letters kept", "Дрель Bosch", "Дрель_Bosch"},
		{"hyphen kept", "drill-2000", "drill-2000"},
		{"numeric symbols kept", "Bit ½ inch m²", "Bit_½_inch_m²"},
		{"empty", "", ""},
		{"only dots", "...", "_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSubdir(tt.in))
		})
	}
}

func TestSanitizeSubdirIsSafe(t *testing.T) {
	safe := regexp.MustCompile(`^[\p{L}\p{N}_-]*$`)
	inputs := []string{
		"../../root",
		"a/../../b",
		"  ..  /  ..  ",
		"name\twith\ttabs",
		"emoji 🔧 tool",
		"— dashes – and … ellipsis",
		"C:\\Windows\\System32",
	}
	for _, in := range inputs {
		got := SanitizeSubdir(in)
		assert.Regexp(t, safe, got, in)
		assert.NotContains(t, got, "__", in)
		assert.NotContains(t, got, "..", in)
	}
}
