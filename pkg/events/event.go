package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by all concrete constructors.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes.
const (
	TypeChatTurnCompleted = "CHAT_TURN_COMPLETED"
	TypeFileIndexed       = "FILE_INDEXED"
	TypeFileIndexFailed   = "FILE_INDEX_FAILED"
	TypeFileDeleted       = "FILE_DELETED"
	TypeCourseJoined      = "COURSE_JOINED"
)

// NewChatTurnCompleted records the outcome of one chat turn, including the
// guardrail action taken and the hint level served.
func NewChatTurnCompleted(sessionID, courseID, action string, hintLevel int) Event {
	return BaseEvent{
		Type: TypeChatTurnCompleted,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"course_id":  courseID,
			"action":     action,
			"hint_level": hintLevel,
		},
		OccurredAt: time.Now(),
	}
}

// NewFileIndexed records a course file finishing the chunk-and-embed pipeline.
func NewFileIndexed(fileID, courseID string, chunkCount int) Event {
	return BaseEvent{
		Type: TypeFileIndexed,
		Data: map[string]interface{}{
			"file_id":     fileID,
			"course_id":   courseID,
			"chunk_count": chunkCount,
		},
		OccurredAt: time.Now(),
	}
}

// NewFileIndexFailed records an indexing attempt that gave up.
func NewFileIndexFailed(fileID, courseID, reason string) Event {
	return BaseEvent{
		Type: TypeFileIndexFailed,
		Data: map[string]interface{}{
			"file_id":   fileID,
			"course_id": courseID,
			"reason":    reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewFileDeleted records an instructor removing a course file and its chunks.
func NewFileDeleted(fileID, courseID string) Event {
	return BaseEvent{
		Type: TypeFileDeleted,
		Data: map[string]interface{}{
			"file_id":   fileID,
			"course_id": courseID,
		},
		OccurredAt: time.Now(),
	}
}

// NewCourseJoined records a student joining a course by class code.
func NewCourseJoined(userID, courseID string) Event {
	return BaseEvent{
		Type: TypeCourseJoined,
		Data: map[string]interface{}{
			"user_id":   userID,
			"course_id": courseID,
		},
		OccurredAt: time.Now(),
	}
}
