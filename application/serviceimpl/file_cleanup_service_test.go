package serviceimpl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/domain/models"
	"taskboard/pkg/scheduler"
)

func TestRunCleanupRetriesOutbox(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	orphan := filepath.Join(env.basePath, "tasks", "gone", "orphan.pdf")
	require.NoError(t, os.MkdirAll(filepath.Dir(orphan), 0755))
	require.NoError(t, os.WriteFile(orphan, pdfBytes, 0644))

	rows := []models.PendingFileDeletion{
		{Path: "tasks/gone/orphan.pdf"},
		{Path: "tasks/gone/already-removed.pdf"},
		{Path: "../outside.pdf"},
	}
	require.NoError(t, env.db.Create(&rows).Error)

	cleanup := NewFileCleanupService(nil, env.outbox, env.attachments, "*/5 * * * *", 10)
	removed, err := cleanup.RunCleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err))

	left, err := env.outbox.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "../outside.pdf", left[0].Path)
	assert.Equal(t, 1, left[0].Attempts)
	assert.NotEmpty(t, left[0].LastError)

	removed, err = cleanup.RunCleanup(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestRegisterCleanupJob(t *testing.T) {
	env := newTestEnv(t)
	sched := scheduler.NewEventScheduler()

	cleanup := NewFileCleanupService(sched, env.outbox, env.attachments, "*/5 * * * *", 0)
	require.NoError(t, cleanup.RegisterCleanupJob())

	_, ok := sched.GetJob(fileCleanupJobID)
	assert.True(t, ok)

	bad := NewFileCleanupService(sched, env.outbox, env.attachments, "every five minutes", 0)
	assert.Error(t, bad.RegisterCleanupJob())
}
