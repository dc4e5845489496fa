//go:build !windows

package utils

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// GetDiskInfo ดึงข้อมูลพื้นที่ disk ของ path ที่ระบุ (Unix/Linux)
func GetDiskInfo(path string) (*DiskInfo, error) {
	path = nearestExistingDir(path)

	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return nil, fmt.Errorf("statfs failed: %w", err)
	}

	bsize := uint64(stat.Bsize)
	totalBytes := stat.Blocks * bsize
	// Bavail = พื้นที่ที่ user ทั่วไปเขียนได้จริง
	freeBytes := uint64(stat.Bavail) * bsize
	used := totalBytes - uint64(stat.Bfree)*bsize

	info := &DiskInfo{
		Total: totalBytes,
		Free:  freeBytes,
		Used:  used,
	}
	if totalBytes > 0 {
		info.UsedPercent = float64(used) / float64(totalBytes) * 100
	}
	return info, nil
}
