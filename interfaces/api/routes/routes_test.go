package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/application/serviceimpl"
	"taskboard/infrastructure/postgres"
	"taskboard/infrastructure/storage"
	"taskboard/interfaces/api/handlers"
	"taskboard/interfaces/api/middleware"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type authData struct {
	Token string `json:"token"`
	User  struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"user"`
}

type taskData struct {
	ID         string `json:"id"`
	AssignedTo struct {
		ID string `json:"id"`
	} `json:"assignedTo"`
	Documents []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"documents"`
}

func newTestApp(t *testing.T) *fiber.App {
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

	userRepo := postgres.NewUserRepository(db)
	taskRepo := postgres.NewTaskRepository(db)
	outbox := postgres.NewFileDeletionRepository(db)

	attachments := serviceimpl.NewAttachmentService(local, outbox, serviceimpl.AttachmentConfig{
		MaxFileSize:       1 << 20,
		AllowedExtensions: []string{"pdf", "png", "jpg"},
	})
	userService := serviceimpl.NewUserService(userRepo, taskRepo, nil, serviceimpl.UserServiceConfig{
		JWTSecret:        "routes-test-secret",
		JWTTTL:           time.Hour,
		AllowAdminSignup: true,
	})
	taskService := serviceimpl.NewTaskService(taskRepo, userRepo, attachments, nil)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	h := handlers.NewHandlers(&handlers.Services{
		UserService: userService,
		TaskService: taskService,
	})
	SetupRoutes(app, h, Options{
		UserService:   userService,
		UploadsRoot:   basePath,
		UploadsPrefix: "/uploads",
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return send(t, app, req)
}

func send(t *testing.T, app *fiber.App, req *http.Request) (int, envelope) {
	t.Helper()

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &env)
	}
	return resp.StatusCode, env
}

func register(t *testing.T, app *fiber.App, name, email, role string) authData {
	t.Helper()

	status, env := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "secret123",
		"role":     role,
	})
	require.Equal(t, fiber.StatusCreated, status)

	var auth authData
	require.NoError(t, json.Unmarshal(env.Data, &auth))
	require.NotEmpty(t, auth.Token)
	return auth
}

func taskBody(assignee string) map[string]string {
	return map[string]string{
		"title":       "Write onboarding guide",
		"description": "Cover local setup",
		"dueDate":     time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
		"assignedTo":  assignee,
	}
}

func TestTaskAccessAcrossRoles(t *testing.T) {
	app := newTestApp(t)

	a := register(t, app, "Alice", "a@example.com", "user")
	b := register(t, app, "Boss", "b@example.com", "admin")
	c := register(t, app, "Carol", "c@example.com", "user")
	assert.Equal(t, "admin", b.User.Role)

	status, env := doJSON(t, app, fiber.MethodPost, "/api/tasks", a.Token, taskBody(a.User.ID))
	require.Equal(t, fiber.StatusCreated, status)
	var task taskData
	require.NoError(t, json.Unmarshal(env.Data, &task))
	assert.Equal(t, a.User.ID, task.AssignedTo.ID)

	status, env = doJSON(t, app, fiber.MethodGet, "/api/tasks/all", b.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var all []taskData
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all, 1)
	assert.Equal(t, task.ID, all[0].ID)

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/tasks/all", a.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, env = doJSON(t, app, fiber.MethodGet, "/api/tasks", a.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var mine []taskData
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	assert.Len(t, mine, 1)

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/tasks/"+task.ID, c.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/tasks/"+task.ID, c.Token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/tasks/"+task.ID, a.Token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/tasks/"+task.ID, b.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestRequestsWithoutValidToken(t *testing.T) {
	app := newTestApp(t)

	status, _ := doJSON(t, app, fiber.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/tasks", "garbage", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/users", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doJSON(t, app, fiber.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestCreateTaskValidation(t *testing.T) {
	app := newTestApp(t)
	a := register(t, app, "Alice", "a@example.com", "user")

	body := taskBody(a.User.ID)
	delete(body, "title")
	status, _ := doJSON(t, app, fiber.MethodPost, "/api/tasks", a.Token, body)
	assert.Equal(t, fiber.StatusBadRequest, status)

	// assignee ที่ไม่มีอยู่จริง
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/tasks", a.Token, taskBody("7f1d5c52-1f7a-4c6e-9a3b-0d6b2f3c4e5a"))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDeleteReferencedUserConflicts(t *testing.T) {
	app := newTestApp(t)
	a := register(t, app, "Alice", "a@example.com", "user")
	b := register(t, app, "Boss", "b@example.com", "admin")

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/tasks", b.Token, taskBody(a.User.ID))
	require.Equal(t, fiber.StatusCreated, status)

	status, _ = doJSON(t, app, fiber.MethodDelete, "/api/users/"+a.User.ID, b.Token, nil)
	assert.Equal(t, fiber.StatusConflict, status)
}

// createWithDocuments สร้าง task ผ่าน multipart พร้อมไฟล์ pdf ตามชื่อที่ให้
func createWithDocuments(t *testing.T, app *fiber.App, token, assignee string, names ...string) taskData {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range taskBody(assignee) {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, name := range names {
		part, err := w.CreateFormFile("documents", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("%PDF-1.4\n%%EOF\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(fiber.MethodPost, "/api/tasks", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	status, env := send(t, app, req)
	require.Equal(t, fiber.StatusCreated, status)
	var task taskData
	require.NoError(t, json.Unmarshal(env.Data, &task))
	return task
}

func fetchStatus(t *testing.T, app *fiber.App, url string) int {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, url, nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	return resp.StatusCode
}

func TestTaskDocumentsOverMultipart(t *testing.T) {
	app := newTestApp(t)
	a := register(t, app, "Alice", "a@example.com", "user")

	task := createWithDocuments(t, app, a.Token, a.User.ID, "one.pdf", "two.pdf", "three.pdf", "four.pdf")
	require.Len(t, task.Documents, 3)

	assert.Equal(t, fiber.StatusOK, fetchStatus(t, app, task.Documents[0].URL))

	status, env := doJSON(t, app, fiber.MethodDelete, "/api/tasks/"+task.ID+"/documents/"+task.Documents[0].ID, a.Token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var updated taskData
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Len(t, updated.Documents, 2)

	// ไฟล์ที่ถูกลบต้องได้ 404 ทันที แม้เพิ่ง serve ไป
	assert.Equal(t, fiber.StatusNotFound, fetchStatus(t, app, task.Documents[0].URL))
	assert.Equal(t, fiber.StatusOK, fetchStatus(t, app, task.Documents[1].URL))
}

func TestDeleteTaskUnservesDocuments(t *testing.T) {
	app := newTestApp(t)
	a := register(t, app, "Alice", "a@example.com", "user")

	task := createWithDocuments(t, app, a.Token, a.User.ID, "one.pdf", "two.pdf")
	require.Len(t, task.Documents, 2)
	for _, doc := range task.Documents {
		require.Equal(t, fiber.StatusOK, fetchStatus(t, app, doc.URL))
	}

	status, _ := doJSON(t, app, fiber.MethodDelete, "/api/tasks/"+task.ID, a.Token, nil)
	require.Equal(t, fiber.StatusNoContent, status)

	for _, doc := range task.Documents {
		assert.Equal(t, fiber.StatusNotFound, fetchStatus(t, app, doc.URL), doc.URL)
	}

	status, _ = doJSON(t, app, fiber.MethodGet, "/api/tasks/"+task.ID, a.Token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}
