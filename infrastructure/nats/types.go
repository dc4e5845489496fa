package nats

const (
	// StreamName JetStream stream ที่เก็บ task events (audit / replay)
	StreamName = "TASK_EVENTS"

	// SubjectTaskEvents prefix ของ subject: tasks.events.<type>
	SubjectTaskEvents = "tasks.events"
)

// TaskEventSubject คืน subject ของ event type เช่น tasks.events.task.created
func TaskEventSubject(eventType string) string {
	return SubjectTaskEvents + "." + eventType
}

// StreamInfo สถานะ stream สำหรับ health endpoint
type StreamInfo struct {
	Name     string `json:"name"`
	Messages uint64 `json:"messages"`
	Bytes    uint64 `json:"bytes"`
	FirstSeq uint64 `json:"firstSeq"`
	LastSeq  uint64 `json:"lastSeq"`
}
