package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotifRequestReceived  NotificationType = "request_received"
	NotifRequestAccepted  NotificationType = "request_accepted"
	NotifRequestRejected  NotificationType = "request_rejected"
	NotifSessionPublished NotificationType = "session_published"
	NotifSessionJoined    NotificationType = "session_joined"
	NotifSessionCancelled NotificationType = "session_cancelled"
	NotifReviewReceived   NotificationType = "review_received"
	NotifAccountApproved  NotificationType = "account_approved"
)

type Notification struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NotificationID string             `bson:"notification_id" json:"notification_id"` // uuid v4

	RecipientID string `bson:"recipient_id" json:"recipient_id"`
	SenderID    string `bson:"sender_id,omitempty" json:"sender_id,omitempty"`

	Type    NotificationType `bson:"type" json:"type"`
	Title   string           `bson:"title" json:"title"`
	Message string           `bson:"message" json:"message"`

	IsRead bool       `bson:"is_read" json:"is_read"`
	ReadAt *time.Time `bson:"read_at,omitempty" json:"read_at,omitempty"`

	RelatedID    string         `bson:"related_id,omitempty" json:"related_id,omitempty"`
	RelatedModel string         `bson:"related_model,omitempty" json:"related_model,omitempty"`
	Metadata     map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// LegacyMessage is the read-adapter shape for consumers still expecting the
// old message-style notification feed. Nothing is ever stored in this form.
type LegacyMessage struct {
	MessageID string    `json:"message_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   string    `json:"content"`
	IsRead    bool      `json:"is_read"`
	SentAt    time.Time `json:"sent_at"`
}
