package config

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureMongoIndexes creates the indexes the booking workflow relies on.
// The unique partial index on pending requests and the unique
// (session_id, reviewer_id) review index are load-bearing: they turn the
// duplicate checks done in the services into storage-level guarantees.
func EnsureMongoIndexes() error {
	if MongoClient == nil {
		return errors.New("MongoClient is nil; call InitMongo() first")
	}
	db := MongoDatabase()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requests := db.Collection("session_requests")
	_, err := requests.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_request_id").
				SetUnique(true),
		},
		// At most one pending request per (student, mentor) pair.
		{
			Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "mentor_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_pending_student_mentor").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "pending"}),
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_mentor_created"),
		},
		{
			Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_student_created"),
		},
	})
	if err != nil {
		return err
	}

	sessions := db.Collection("sessions")
	_, err = sessions.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "mentor_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("by_mentor_status"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "scheduled_at", Value: 1}},
			Options: options.Index().SetName("by_status_scheduled"),
		},
		{
			Keys:    bson.D{{Key: "participants", Value: 1}},
			Options: options.Index().SetName("by_participant"),
		},
	})
	if err != nil {
		return err
	}

	notifications := db.Collection("notifications")
	_, err = notifications.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "notification_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_notification_id").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_recipient_created"),
		},
		// Fan-out dedup lookup: which recipients already got this session's notice.
		{
			Keys:    bson.D{{Key: "related_id", Value: 1}, {Key: "type", Value: 1}, {Key: "recipient_id", Value: 1}},
			Options: options.Index().SetName("by_related_type_recipient"),
		},
	})
	if err != nil {
		return err
	}

	reviews := db.Collection("reviews")
	_, err = reviews.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "review_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_review_id").
				SetUnique(true),
		},
		// One review per (session, reviewer) pair.
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "reviewer_id", Value: 1}},
			Options: options.Index().
				SetName("uniq_session_reviewer").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "reviewee_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_reviewee_created"),
		},
	})
	return err
}
