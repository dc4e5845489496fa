package serviceimpl

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/domain/dto"
	"taskboard/domain/models"
	"taskboard/domain/ports"
	"taskboard/domain/services"
)

// plainZip zip ธรรมดาที่ไม่ใช่เอกสาร Word
func plainZip(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create("notes.txt")
	require.NoError(t, err)
	_, err = f.Write([]byte("not a word document"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func createRequest(assignee uuid.UUID) *dto.CreateTaskRequest {
	return &dto.CreateTaskRequest{
		Title:       "Prepare report",
		Description: "Quarterly numbers",
		Priority:    models.TaskPriorityHigh,
		DueDate:     time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		AssignedTo:  assignee.String(),
	}
}

func TestCreateTaskStoresDocuments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)

	task, err := env.tasks.CreateTask(ctx, admin, createRequest(alice.ID), formFiles(t,
		upload{"brief.pdf", pdfBytes},
		upload{"diagram.png", pngBytes},
	))
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusPending, task.Status)
	assert.Equal(t, alice.ID, task.AssignedToID)
	assert.Equal(t, admin.ID, task.CreatedByID)
	require.Len(t, task.Attachments, 2)
	assert.Equal(t, "brief.pdf", task.Attachments[0].OriginalName)
	assert.Equal(t, "application/pdf", task.Attachments[0].MimeType)
	assert.Equal(t, "diagram.png", task.Attachments[1].OriginalName)
	assert.Len(t, env.storedFiles(t), 2)
	assert.Equal(t, []string{ports.TaskEventCreated}, env.events.types())
}

func TestCreateTaskTruncatesExtraDocuments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)

	task, err := env.tasks.CreateTask(ctx, alice, createRequest(alice.ID), formFiles(t,
		upload{"1.pdf", pdfBytes},
		upload{"2.pdf", pdfBytes},
		upload{"3.pdf", pdfBytes},
		upload{"4.pdf", pdfBytes},
	))
	require.NoError(t, err)
	require.Len(t, task.Attachments, models.MaxTaskAttachments)
	assert.Equal(t, "3.pdf", task.Attachments[2].OriginalName)
	assert.Len(t, env.storedFiles(t), models.MaxTaskAttachments)
}

func TestCreateTaskUnknownAssigneeWritesNothing(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)

	_, err := env.tasks.CreateTask(ctx, admin, createRequest(uuid.New()), formFiles(t, upload{"brief.pdf", pdfBytes}))
	assert.ErrorIs(t, err, services.ErrValidation)

	var tasks int64
	require.NoError(t, env.db.Model(&models.Task{}).Count(&tasks).Error)
	assert.Zero(t, tasks)
	assert.Empty(t, env.storedFiles(t))
	assert.Empty(t, env.events.types())
}

func TestCreateTaskRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)

	tests := []struct {
		name   string
		mutate func(*dto.CreateTaskRequest)
	}{
		{"blank title", func(r *dto.CreateTaskRequest) { r.Title = "   " }},
		{"bad due date", func(r *dto.CreateTaskRequest) { r.DueDate = "next week" }},
		{"bad status", func(r *dto.CreateTaskRequest) { r.Status = "done" }},
		{"bad priority", func(r *dto.CreateTaskRequest) { r.Priority = "critical" }},
		{"assignee not a uuid", func(r *dto.CreateTaskRequest) { r.AssignedTo = "alice" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := createRequest(alice.ID)
			tt.mutate(req)
			_, err := env.tasks.CreateTask(ctx, alice, req, nil)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}

	_, err := env.tasks.CreateTask(ctx, nil, createRequest(alice.ID), nil)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestCreateTaskRejectsBadDocuments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)

	tests := []struct {
		name   string
		upload upload
	}{
		{"disallowed extension", upload{"run.exe", pdfBytes}},
		{"content does not match extension", upload{"fake.pdf", []byte("just some plain text")}},
		{"png named as pdf", upload{"image.pdf", pngBytes}},
		{"empty file", upload{"empty.pdf", nil}},
		{"plain zip named as docx", upload{"report.docx", plainZip(t)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tasks.CreateTask(ctx, alice, createRequest(alice.ID), formFiles(t, tt.upload))
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}

	assert.Empty(t, env.storedFiles(t))
}

func TestAttachmentServiceRejectsOversizeFile(t *testing.T) {
	env := newTestEnv(t)
	small := NewAttachmentService(nil, env.outbox, AttachmentConfig{
		MaxFileSize:       16,
		AllowedExtensions: []string{"pdf"},
	})

	_, err := small.Accept(formFiles(t, upload{"big.pdf", pdfBytes}), models.MaxTaskAttachments)
	assert.ErrorIs(t, err, services.ErrValidation)

	accepted, err := small.Accept(formFiles(t, upload{"a.pdf", pdfBytes[:10]}, upload{"b.pdf", pdfBytes[:10]}), 1)
	require.NoError(t, err)
	assert.Len(t, accepted, 1)
}

func TestUpdateTaskKeepsOldestDocuments(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)

	task, err := env.tasks.CreateTask(ctx, alice, createRequest(alice.ID), formFiles(t,
		upload{"first.pdf", pdfBytes},
		upload{"second.pdf", pdfBytes},
	))
	require.NoError(t, err)

	updated, err := env.tasks.UpdateTask(ctx, alice, task.ID,
		&dto.UpdateTaskRequest{Status: models.TaskStatusInProgress},
		formFiles(t, upload{"third.pdf", pdfBytes}, upload{"fourth.pdf", pdfBytes}),
	)
	require.NoError(t, err)

	assert.Equal(t, models.TaskStatusInProgress, updated.Status)
	assert.Equal(t, task.Title, updated.Title)
	require.Len(t, updated.Attachments, models.MaxTaskAttachments)
	assert.Equal(t, "first.pdf", updated.Attachments[0].OriginalName)
	assert.Equal(t, "second.pdf", updated.Attachments[1].OriginalName)
	assert.Equal(t, "third.pdf", updated.Attachments[2].OriginalName)
	assert.Len(t, env.storedFiles(t), models.MaxTaskAttachments)

	full, err := env.tasks.UpdateTask(ctx, alice, task.ID, &dto.UpdateTaskRequest{}, formFiles(t, upload{"fifth.pdf", pdfBytes}))
	require.NoError(t, err)
	assert.Len(t, full.Attachments, models.MaxTaskAttachments)
	assert.Len(t, env.storedFiles(t), models.MaxTaskAttachments)
}

func TestUpdateTaskAccessAndReassign(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)
	bob := env.createUser(t, "bob@example.com", models.RoleUser)

	task, err := env.tasks.CreateTask(ctx, admin, createRequest(alice.ID), nil)
	require.NoError(t, err)

	_, err = env.tasks.UpdateTask(ctx, bob, task.ID, &dto.UpdateTaskRequest{Title: "mine now"}, nil)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = env.tasks.UpdateTask(ctx, alice, task.ID, &dto.UpdateTaskRequest{AssignedTo: uuid.NewString()}, nil)
	assert.ErrorIs(t, err, services.ErrValidation)

	updated, err := env.tasks.UpdateTask(ctx, admin, task.ID, &dto.UpdateTaskRequest{AssignedTo: bob.ID.String()}, nil)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, updated.AssignedToID)

	_, err = env.tasks.GetTask(ctx, alice, task.ID)
	assert.ErrorIs(t, err, services.ErrForbidden)

	_, err = env.tasks.UpdateTask(ctx, admin, uuid.New(), &dto.UpdateTaskRequest{}, nil)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestDeleteTaskRemovesFiles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)
	bob := env.createUser(t, "bob@example.com", models.RoleUser)

	task, err := env.tasks.CreateTask(ctx, admin, createRequest(alice.ID), formFiles(t,
		upload{"a.pdf", pdfBytes},
		upload{"b.png", pngBytes},
	))
	require.NoError(t, err)
	require.Len(t, env.storedFiles(t), 2)

	assert.ErrorIs(t, env.tasks.DeleteTask(ctx, bob, task.ID), services.ErrForbidden)
	require.NoError(t, env.tasks.DeleteTask(ctx, alice, task.ID))

	assert.Empty(t, env.storedFiles(t))
	queued, err := env.outbox.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, queued)

	_, err = env.tasks.GetTask(ctx, admin, task.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
	assert.ErrorIs(t, env.tasks.DeleteTask(ctx, admin, task.ID), services.ErrNotFound)
	assert.Contains(t, env.events.types(), ports.TaskEventDeleted)
}

func TestDeleteAttachmentKeepsOthers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)

	task, err := env.tasks.CreateTask(ctx, alice, createRequest(alice.ID), formFiles(t,
		upload{"a.pdf", pdfBytes},
		upload{"b.pdf", pdfBytes},
		upload{"c.pdf", pdfBytes},
	))
	require.NoError(t, err)

	removed := task.Attachments[1]
	updated, err := env.tasks.DeleteAttachment(ctx, alice, task.ID, removed.ID)
	require.NoError(t, err)

	require.Len(t, updated.Attachments, 2)
	assert.Equal(t, "a.pdf", updated.Attachments[0].OriginalName)
	assert.Equal(t, "c.pdf", updated.Attachments[1].OriginalName)
	assert.Len(t, env.storedFiles(t), 2)
	assert.NotContains(t, env.storedFiles(t), removed.Path)

	_, err = env.tasks.DeleteAttachment(ctx, alice, task.ID, removed.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	// ช่องว่างหนึ่งช่องรับไฟล์ใหม่ต่อท้าย
	refilled, err := env.tasks.UpdateTask(ctx, alice, task.ID, &dto.UpdateTaskRequest{}, formFiles(t, upload{"d.pdf", pdfBytes}))
	require.NoError(t, err)
	require.Len(t, refilled.Attachments, 3)
	assert.Equal(t, "d.pdf", refilled.Attachments[2].OriginalName)
}

func TestListTasks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := env.createUser(t, "admin@example.com", models.RoleAdmin)
	alice := env.createUser(t, "alice@example.com", models.RoleUser)
	bob := env.createUser(t, "bob@example.com", models.RoleUser)

	for _, assignee := range []*services.Actor{alice, alice, bob} {
		_, err := env.tasks.CreateTask(ctx, admin, createRequest(assignee.ID), nil)
		require.NoError(t, err)
	}

	mine, total, err := env.tasks.ListMyTasks(ctx, alice, nil, 0, 10)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	assert.Equal(t, int64(2), total)

	_, _, err = env.tasks.ListAllTasks(ctx, alice, nil, 0, 10)
	assert.ErrorIs(t, err, services.ErrForbidden)

	all, total, err := env.tasks.ListAllTasks(ctx, admin, nil, 0, 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, int64(3), total)

	bobs, _, err := env.tasks.ListAllTasks(ctx, admin, &dto.TaskFilterRequest{AssignedTo: bob.ID.String()}, 0, 10)
	require.NoError(t, err)
	assert.Len(t, bobs, 1)
}
