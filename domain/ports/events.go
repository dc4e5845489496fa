package ports

import (
	"context"
	"time"
)

const (
	TaskEventCreated           = "task.created"
	TaskEventUpdated           = "task.updated"
	TaskEventDeleted           = "task.deleted"
	TaskEventAttachmentRemoved = "task.attachment_removed"
)

// TaskEvent - plain struct (ไม่มี NATS dependency)
type TaskEvent struct {
	Type         string    `json:"type"`
	TaskID       string    `json:"taskId"`
	Title        string    `json:"title"`
	Status       string    `json:"status"`
	AssignedToID string    `json:"assignedTo"`
	CreatedByID  string    `json:"createdBy"`
	ActorID      string    `json:"actorId"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// TaskEventPublisherPort ส่ง task event ออกไปยัง subscribers (NATS / WebSocket)
type TaskEventPublisherPort interface {
	PublishTaskEvent(ctx context.Context, event *TaskEvent) error
}

// TaskEventSubscriberPort รับ task event จาก message bus
type TaskEventSubscriberPort interface {
	SubscribeTaskEvents(handler func(event *TaskEvent)) error
	Stop()
}
