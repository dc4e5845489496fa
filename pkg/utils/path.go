package utils

import (
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

var dangerousChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f\x7f]`)

// SanitizeFileName sanitizes a filename to ensure it's safe for storage
func SanitizeFileName(filename string) string {
	// Remove path components (ทั้ง / และ \ จาก browser บน windows)
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = path.Base(filename)

	filename = dangerousChars.ReplaceAllString(filename, "_")
	filename = strings.TrimSpace(filename)

	if filename == "" || filename == "." || filename == ".." || filename == "/" {
		filename = "file"
	}

	return filename
}

// FileExtension returns the lower-cased extension without the dot.
func FileExtension(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}

// GenerateStoredFileName builds a collision resistant name: <uuid>-<slug><.ext>
func GenerateStoredFileName(original string) string {
	original = SanitizeFileName(original)
	ext := strings.ToLower(filepath.Ext(original))
	base := slug.Make(strings.TrimSuffix(original, filepath.Ext(original)))
	if base == "" {
		base = "file"
	}
	if len(base) > 80 {
		base = strings.Trim(base[:80], "-")
	}
	return uuid.New().String() + "-" + base + ext
}

// TaskFilesPrefix prefix ของ storage key ไฟล์แนบทั้งหมด
const TaskFilesPrefix = "tasks/"

// TaskFilePath คือ storage key ของไฟล์แนบ: tasks/<taskID>/<storedName>
func TaskFilePath(taskID, storedName string) string {
	return path.Join(TaskFilesPrefix, taskID, storedName)
}
