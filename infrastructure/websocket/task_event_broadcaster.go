package websocket

import (
	"context"

	"github.com/google/uuid"

	"taskboard/domain/ports"
	"taskboard/pkg/logger"
)

// TaskEventBroadcaster ส่ง task event ไปยัง assignee และ creator ที่เปิด /ws อยู่
// ใช้ได้ทั้งเป็น publisher ตรง (ไม่มี NATS) และเป็นปลายทางของ NATS subscriber
type TaskEventBroadcaster struct {
	manager    *WebSocketManager
	subscriber ports.TaskEventSubscriberPort
}

func NewTaskEventBroadcaster(manager *WebSocketManager) *TaskEventBroadcaster {
	return &TaskEventBroadcaster{manager: manager}
}

var _ ports.TaskEventPublisherPort = (*TaskEventBroadcaster)(nil)

// PublishTaskEvent in-process path
func (b *TaskEventBroadcaster) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	b.Forward(event)
	return nil
}

// Start รับ event จาก message bus แล้ว forward
func (b *TaskEventBroadcaster) Start(subscriber ports.TaskEventSubscriberPort) error {
	if err := subscriber.SubscribeTaskEvents(b.Forward); err != nil {
		return err
	}
	b.subscriber = subscriber
	logger.Info("Task event broadcaster started")
	return nil
}

func (b *TaskEventBroadcaster) Stop() {
	if b.subscriber != nil {
		b.subscriber.Stop()
	}
}

func (b *TaskEventBroadcaster) Forward(event *ports.TaskEvent) {
	if event == nil {
		return
	}

	var recipients []uuid.UUID
	for _, raw := range []string{event.AssignedToID, event.CreatedByID} {
		if id, err := uuid.Parse(raw); err == nil {
			recipients = append(recipients, id)
		}
	}
	if len(recipients) == 0 {
		return
	}

	b.manager.BroadcastToUsers(recipients, event.Type, event)
}
