package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionStatus string

const (
	SessionScheduled SessionStatus = "scheduled"
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// Session is a concrete scheduled session. Direct sessions (created from an
// accepted request) have Capacity 1 with the student pre-seeded; open sessions
// start with no participants and any positive capacity. Participants never
// includes the mentor.
type Session struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID string             `bson:"session_id" json:"session_id"` // uuid v4

	MentorID  string `bson:"mentor_id" json:"mentor_id"`
	RequestID string `bson:"request_id,omitempty" json:"request_id,omitempty"` // set for direct sessions

	Title       string `bson:"title" json:"title"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
	Subject     string `bson:"subject,omitempty" json:"subject,omitempty"`

	ScheduledAt     time.Time `bson:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"`
	MeetLink        string    `bson:"meet_link" json:"meet_link"`

	Capacity     int      `bson:"capacity" json:"capacity"`
	Participants []string `bson:"participants" json:"participants"`

	Status SessionStatus `bson:"status" json:"status"`

	Notes                 string `bson:"notes,omitempty" json:"notes,omitempty"`
	ActualDurationMinutes int    `bson:"actual_duration_minutes,omitempty" json:"actual_duration_minutes,omitempty"`
	CompletedBy           string `bson:"completed_by,omitempty" json:"completed_by,omitempty"`
	CancelledBy           string `bson:"cancelled_by,omitempty" json:"cancelled_by,omitempty"`
	CancelReason          string `bson:"cancel_reason,omitempty" json:"cancel_reason,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	CancelledAt *time.Time `bson:"cancelled_at,omitempty" json:"cancelled_at,omitempty"`
}

func (s *Session) HasParticipant(userID string) bool {
	for _, p := range s.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsParticipant reports whether userID may complete/cancel/review the session.
func (s *Session) IsParticipant(userID string) bool {
	return userID == s.MentorID || s.HasParticipant(userID)
}

func (s *Session) IsTerminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionCancelled
}

func (s *Session) IsFull() bool {
	return len(s.Participants) >= s.Capacity
}
