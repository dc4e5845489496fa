package routes

import (
	"github.com/gofiber/fiber/v2"
)

// SetupUploadRoutes serve ไฟล์แนบจาก local storage
func SetupUploadRoutes(app *fiber.App, prefix, root string) {
	if root == "" {
		return
	}
	if prefix == "" {
		prefix = "/uploads"
	}

	// ไม่ cache file handle: ไฟล์ที่ถูกลบต้องได้ 404 ทันที
	app.Static(prefix, root, fiber.Static{
		Browse:        false,
		Download:      false,
		CacheDuration: -1,
	})
}
