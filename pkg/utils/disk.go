package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiskInfo ข้อมูลพื้นที่ disk
type DiskInfo struct {
	Total       uint64
	Free        uint64
	Used        uint64
	UsedPercent float64
}

// CheckDiskSpace ตรวจสอบว่ามีพื้นที่ว่างเพียงพอหรือไม่
// minFreePercent: % พื้นที่ว่างขั้นต่ำที่ต้องเหลือหลังเขียน (0 = ไม่บังคับ)
func CheckDiskSpace(path string, requiredBytes int64, minFreePercent float64) (bool, *DiskInfo, error) {
	info, err := GetDiskInfo(path)
	if err != nil {
		return false, nil, err
	}

	if int64(info.Free) < requiredBytes {
		return false, info, nil
	}

	if minFreePercent > 0 && info.Total > 0 {
		remainingFree := int64(info.Free) - requiredBytes
		remainingPercent := float64(remainingFree) / float64(info.Total) * 100
		if remainingPercent < minFreePercent {
			return false, info, nil
		}
	}

	return true, info, nil
}

// EnsureDiskSpace returns a *DiskSpaceError when path cannot take requiredBytes.
func EnsureDiskSpace(path string, requiredBytes int64, minFreePercent float64) error {
	ok, info, err := CheckDiskSpace(path, requiredBytes, minFreePercent)
	if err != nil {
		return err
	}
	if !ok {
		return NewDiskSpaceError(requiredBytes, info.Free)
	}
	return nil
}

// FormatBytes แปลง bytes เป็น human-readable format
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

type DiskSpaceError struct {
	Required  int64
	Available uint64
}

func (e *DiskSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space: required %s, available %s",
		FormatBytes(uint64(e.Required)),
		FormatBytes(e.Available),
	)
}

func NewDiskSpaceError(required int64, available uint64) *DiskSpaceError {
	return &DiskSpaceError{
		Required:  required,
		Available: available,
	}
}

// nearestExistingDir เดินขึ้นไปจนเจอ directory ที่มีอยู่จริง
func nearestExistingDir(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
