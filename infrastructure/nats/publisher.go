package nats

import (
	"context"
	"encoding/json"
	"fmt"

	"taskboard/domain/ports"
	"taskboard/pkg/logger"
)

// TaskEventPublisher ส่ง task event เข้า JetStream
type TaskEventPublisher struct {
	client *Client
}

func NewTaskEventPublisher(client *Client) ports.TaskEventPublisherPort {
	return &TaskEventPublisher{client: client}
}

func (p *TaskEventPublisher) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if event.TaskID == "" {
		return fmt.Errorf("task id is required")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal task event: %w", err)
	}

	ack, err := p.client.js.Publish(ctx, TaskEventSubject(event.Type), data)
	if err != nil {
		return fmt.Errorf("failed to publish task event: %w", err)
	}

	logger.DebugContext(ctx, "Task event published",
		"type", event.Type,
		"task_id", event.TaskID,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
	)
	return nil
}
