package repositories

import "errors"

// storage-agnostic errors คืนจาก repository implementations
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)
