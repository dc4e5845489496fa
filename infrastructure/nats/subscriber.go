package nats

import (
	"encoding/json"
	"sync"

	"github.com/nats-io/nats.go"

	"taskboard/domain/ports"
	"taskboard/pkg/logger"
)

// TaskEventSubscriber รับ task events แบบ core pub/sub (ไม่ ack, ไม่ replay)
type TaskEventSubscriber struct {
	conn      *nats.Conn
	sub       *nats.Subscription
	runningMu sync.Mutex
}

func NewTaskEventSubscriber(client *Client) *TaskEventSubscriber {
	return &TaskEventSubscriber{conn: client.Conn()}
}

var _ ports.TaskEventSubscriberPort = (*TaskEventSubscriber)(nil)

func (s *TaskEventSubscriber) SubscribeTaskEvents(handler func(event *ports.TaskEvent)) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.sub != nil {
		return nil
	}

	sub, err := s.conn.Subscribe(SubjectTaskEvents+".>", func(msg *nats.Msg) {
		var event ports.TaskEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Error("Failed to parse task event", "subject", msg.Subject, "error", err)
			return
		}

		defer func() {
			if r := recover(); r != nil {
				logger.Error("Task event handler panicked", "error", r)
			}
		}()
		handler(&event)
	})
	if err != nil {
		return err
	}
	s.sub = sub

	logger.Info("NATS task event subscriber started", "subject", SubjectTaskEvents+".>")
	return nil
}

func (s *TaskEventSubscriber) Stop() {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.sub == nil {
		return
	}
	if err := s.sub.Unsubscribe(); err != nil {
		logger.Warn("Failed to unsubscribe", "error", err)
	}
	s.sub = nil
	logger.Info("NATS task event subscriber stopped")
}
