package utils

import (
	"path/filepath"
	"strings"
)

var extensionMimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// MimeTypeFromExtension คืน MIME type ตามนามสกุลไฟล์ (ไม่รู้จัก = octet-stream)
func MimeTypeFromExtension(filename string) string {
	if mimeType, ok := extensionMimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mimeType
	}
	return "application/octet-stream"
}
