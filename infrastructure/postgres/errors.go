package postgres

import (
	"errors"

	"gorm.io/gorm"

	"taskboard/domain/repositories"
)

// translateError แปลง gorm error เป็น repositories error (ต้องเปิด TranslateError)
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.ErrDuplicateKey
	default:
		return err
	}
}
