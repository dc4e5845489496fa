package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"taskboard/domain/ports"
	"taskboard/pkg/logger"
	"taskboard/pkg/utils"
)

// ErrUnsafePath key ที่พยายามออกนอก basePath
var ErrUnsafePath = errors.New("unsafe storage path")

// LocalStorage implements StoragePort สำหรับเก็บไฟล์ใน local filesystem
type LocalStorage struct {
	basePath       string
	baseURL        string
	minFreePercent float64
}

type LocalStorageConfig struct {
	BasePath       string // ./uploads
	BaseURL        string // /uploads หรือ http://localhost:8080/uploads
	MinFreePercent float64
}

// NewLocalStorage สร้าง LocalStorage instance
func NewLocalStorage(config LocalStorageConfig) (*LocalStorage, error) {
	if err := os.MkdirAll(config.BasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &LocalStorage{
		basePath:       config.BasePath,
		baseURL:        strings.TrimSuffix(config.BaseURL, "/"),
		minFreePercent: config.MinFreePercent,
	}, nil
}

var _ ports.StoragePort = (*LocalStorage)(nil)

// BasePath ใช้ตอน mount static route
func (l *LocalStorage) BasePath() string {
	return l.basePath
}

// UploadFile เขียนไฟล์ลง disk; size ใช้ตรวจพื้นที่ว่างก่อนเขียน
func (l *LocalStorage) UploadFile(file io.Reader, path string, size int64, contentType string) (string, error) {
	fullPath, err := l.resolve(path)
	if err != nil {
		return "", err
	}

	if size > 0 {
		if err := utils.EnsureDiskSpace(l.basePath, size, l.minFreePercent); err != nil {
			return "", err
		}
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	logger.Debug("File stored", "path", path, "content_type", contentType, "size", size)
	return l.GetFileURL(path), nil
}

// DeleteFile ลบไฟล์; ไฟล์ไม่มีอยู่แล้วถือว่าสำเร็จ
func (l *LocalStorage) DeleteFile(path string) error {
	fullPath, err := l.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	l.cleanupEmptyDirs(filepath.Dir(fullPath))
	return nil
}

func (l *LocalStorage) Exists(path string) (bool, error) {
	fullPath, err := l.resolve(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// GetFileURL สร้าง URL สำหรับเข้าถึงไฟล์
func (l *LocalStorage) GetFileURL(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return l.baseURL + path
}

// GetFileContent อ่านไฟล์จาก local filesystem
func (l *LocalStorage) GetFileContent(path string) (io.ReadCloser, string, error) {
	fullPath, err := l.resolve(path)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}

	return file, utils.MimeTypeFromExtension(path), nil
}

func (l *LocalStorage) GetProviderName() string {
	return "local"
}

// resolve แปลง storage key เป็น path จริงใต้ basePath
func (l *LocalStorage) resolve(path string) (string, error) {
	path = strings.TrimPrefix(strings.ReplaceAll(path, "\\", "/"), "/")
	if path == "" {
		return "", ErrUnsafePath
	}

	fullPath := filepath.Join(l.basePath, filepath.FromSlash(path))
	rel, err := filepath.Rel(l.basePath, fullPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", ErrUnsafePath
	}
	return fullPath, nil
}

// cleanupEmptyDirs ลบ directory ว่างๆ ขึ้นไปจนถึง basePath
func (l *LocalStorage) cleanupEmptyDirs(dir string) {
	absBase, _ := filepath.Abs(l.basePath)
	absDir, _ := filepath.Abs(dir)

	for absDir != absBase && strings.HasPrefix(absDir, absBase) {
		entries, err := os.ReadDir(absDir)
		if err != nil || len(entries) > 0 {
			break
		}
		os.Remove(absDir)
		absDir = filepath.Dir(absDir)
	}
}

// ListKeys คืน storage key (คั่นด้วย /) ของไฟล์ทั้งหมดใต้ prefix
func (l *LocalStorage) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	root, err := l.resolve(prefix)
	if err != nil {
		return nil, err
	}

	var keys []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.basePath, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return keys, err
}
