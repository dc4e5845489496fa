package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\me\photo.png`, "photo.png"},
		{"bad<name>.doc", "bad_name_.doc"},
		{"..", "file"},
		{"", "file"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.input), "input %q", tt.input)
	}
}

func TestFileExtension(t *testing.T) {
	assert.Equal(t, "pdf", FileExtension("Report.PDF"))
	assert.Equal(t, "docx", FileExtension("a.b.docx"))
	assert.Equal(t, "", FileExtension("README"))
}

func TestGenerateStoredFileName(t *testing.T) {
	a := GenerateStoredFileName("Quarterly Report.PDF")
	b := GenerateStoredFileName("Quarterly Report.PDF")

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "-quarterly-report.pdf"), a)
	assert.Len(t, strings.SplitN(a, "-", 6)[0], 8)

	long := GenerateStoredFileName(strings.Repeat("x", 300) + ".png")
	assert.LessOrEqual(t, len(long), 36+1+80+len(".png"))
}

func TestTaskFilePath(t *testing.T) {
	assert.Equal(t, "tasks/abc/file.pdf", TaskFilePath("abc", "file.pdf"))
}
