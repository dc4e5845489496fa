package ports

import (
	"io"
)

// StoragePort คือ interface หลักสำหรับ content store ของไฟล์แนบ
// ทำให้เปลี่ยน storage provider ได้ง่าย (Local, S3/MinIO)
type StoragePort interface {
	// UploadFile อัปโหลดไฟล์ไปยัง storage
	// path: key ที่จะเก็บไฟล์ (เช่น "tasks/<task-id>/<filename>")
	// return: URL ที่เข้าถึงไฟล์ได้
	UploadFile(file io.Reader, path string, size int64, contentType string) (string, error)

	// DeleteFile ลบไฟล์จาก storage; ไฟล์ที่ไม่มีอยู่แล้วถือว่าสำเร็จ
	DeleteFile(path string) error

	// Exists ตรวจสอบว่ามีไฟล์อยู่ใน storage หรือไม่
	Exists(path string) (bool, error)

	// GetFileURL รับ URL สำหรับเข้าถึงไฟล์
	GetFileURL(path string) string

	// GetFileContent อ่านไฟล์จาก storage
	GetFileContent(path string) (io.ReadCloser, string, error)

	// GetProviderName ชื่อ provider (local, s3)
	GetProviderName() string
}
