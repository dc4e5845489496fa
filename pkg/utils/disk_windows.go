//go:build windows

package utils

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// GetDiskInfo ดึงข้อมูลพื้นที่ disk ของ path ที่ระบุ (Windows)
func GetDiskInfo(path string) (*DiskInfo, error) {
	path = nearestExistingDir(path)

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64

	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("failed to convert path: %w", err)
	}

	err = windows.GetDiskFreeSpaceEx(
		pathPtr,
		&freeBytesAvailable,
		&totalBytes,
		&totalFreeBytes,
	)
	if err != nil {
		return nil, fmt.Errorf("GetDiskFreeSpaceEx failed: %w", err)
	}

	used := totalBytes - totalFreeBytes
	info := &DiskInfo{
		Total: totalBytes,
		Free:  freeBytesAvailable,
		Used:  used,
	}
	if totalBytes > 0 {
		info.UsedPercent = float64(used) / float64(totalBytes) * 100
	}
	return info, nil
}
