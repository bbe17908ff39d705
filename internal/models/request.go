package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// SessionRequest is a student's ask for a session with a specific mentor.
// At most one pending request may exist per (student, mentor) pair; a unique
// partial index on the collection enforces this.
type SessionRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID string             `bson:"request_id" json:"request_id"` // uuid v4

	StudentID string `bson:"student_id" json:"student_id"`
	MentorID  string `bson:"mentor_id" json:"mentor_id"`

	Subject         string      `bson:"subject" json:"subject"`
	Description     string      `bson:"description,omitempty" json:"description,omitempty"`
	DurationMinutes int         `bson:"duration_minutes" json:"duration_minutes"`
	PreferredTimes  []time.Time `bson:"preferred_times,omitempty" json:"preferred_times,omitempty"`
	ProposedPrice   float64     `bson:"proposed_price,omitempty" json:"proposed_price,omitempty"`

	Status          RequestStatus `bson:"status" json:"status"`
	ResponseMessage string        `bson:"response_message,omitempty" json:"response_message,omitempty"`
	ScheduledAt     *time.Time    `bson:"scheduled_at,omitempty" json:"scheduled_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
