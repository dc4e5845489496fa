package serviceimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"mime/multipart"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskboard/domain/models"
	"taskboard/domain/ports"
	"taskboard/domain/repositories"
	"taskboard/domain/services"
	"taskboard/infrastructure/postgres"
	"taskboard/infrastructure/redis"
	"taskboard/infrastructure/storage"
)

const testJWTSecret = "test-secret"

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
	pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")
)

type testEnv struct {
	db          *gorm.DB
	basePath    string
	userRepo    repositories.UserRepository
	taskRepo    repositories.TaskRepository
	outbox      repositories.FileDeletionRepository
	attachments services.AttachmentService
	users       services.UserService
	tasks       services.TaskService
	events      *recordingPublisher
	cache       *memoryCache
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := postgres.NewDatabase(postgres.DatabaseConfig{
		Driver:     postgres.DriverSQLite,
		SQLitePath: ":memory:",
		LogLevel:   "silent",
	})
	require.NoError(t, err)
	require.NoError(t, postgres.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	basePath := t.TempDir()
	local, err := storage.NewLocalStorage(storage.LocalStorageConfig{BasePath: basePath, BaseURL: "/uploads/"})
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		basePath: basePath,
		userRepo: postgres.NewUserRepository(db),
		taskRepo: postgres.NewTaskRepository(db),
		outbox:   postgres.NewFileDeletionRepository(db),
		events:   &recordingPublisher{},
		cache:    newMemoryCache(),
	}
	env.attachments = NewAttachmentService(local, env.outbox, AttachmentConfig{
		MaxFileSize:       1 << 20,
		MaxFiles:          models.MaxTaskAttachments,
		AllowedExtensions: []string{"pdf", "png", "jpg", "jpeg", "gif", "doc", "docx"},
	})
	env.users = NewUserService(env.userRepo, env.taskRepo, env.cache, UserServiceConfig{
		JWTSecret:        testJWTSecret,
		JWTTTL:           time.Hour,
		AllowAdminSignup: true,
	})
	env.tasks = NewTaskService(env.taskRepo, env.userRepo, env.attachments, env.events)
	return env
}

func (e *testEnv) createUser(t *testing.T, email, role string) *services.Actor {
	t.Helper()
	user := &models.User{Name: email, Email: email, Password: "unused", Role: role}
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	return services.ActorFromUser(user)
}

// storedFiles คืน path ของไฟล์ทั้งหมดใต้ base path
func (e *testEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(e.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, _ := filepath.Rel(e.basePath, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	return files
}

type upload struct {
	name    string
	content []byte
}

// formFiles สร้าง *multipart.FileHeader ผ่าน multipart reader จริง
func formFiles(t *testing.T, uploads ...upload) []*multipart.FileHeader {
	t.Helper()
	if len(uploads) == 0 {
		return nil
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, u := range uploads {
		part, err := w.CreateFormFile("documents", u.name)
		require.NoError(t, err)
		_, err = part.Write(u.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(10 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["documents"]
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*ports.TaskEvent
}

func (p *recordingPublisher) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: make(map[string][]byte)}
}

func (c *memoryCache) GetJSON(ctx context.Context, key string, target interface{}) error {
	c.mu.Lock()
	data, ok := c.items[key]
	c.mu.Unlock()
	if !ok {
		return redis.ErrCacheMiss
	}
	return json.Unmarshal(data, target)
}

func (c *memoryCache) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.items[key] = data
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.items[key]
	return ok
}
