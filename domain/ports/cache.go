package ports

import (
	"context"
	"time"
)

// CachePort JSON cache ที่ใช้ใน service layer (Redis)
type CachePort interface {
	GetJSON(ctx context.Context, key string, target interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
