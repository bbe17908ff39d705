package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a post-completion rating between two session participants.
// One review per (session, reviewer) pair, backed by a unique index.
type Review struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReviewID string             `bson:"review_id" json:"review_id"` // uuid v4

	SessionID  string `bson:"session_id" json:"session_id"`
	ReviewerID string `bson:"reviewer_id" json:"reviewer_id"`
	RevieweeID string `bson:"reviewee_id" json:"reviewee_id"`

	Rating   int    `bson:"rating" json:"rating"` // 1..5
	Comment  string `bson:"comment,omitempty" json:"comment,omitempty"`
	IsPublic bool   `bson:"is_public" json:"is_public"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RatingSummary is the recomputed aggregate written back to the user directory.
type RatingSummary struct {
	Average float64 `bson:"average"`
	Count   int     `bson:"count"`
}
