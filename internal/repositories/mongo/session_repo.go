package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tutorhive/tutorhive/internal/models"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type SessionRepository interface {
	Create(ctx context.Context, s *models.Session) error
	GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	// Join appends userID to the participant set in a single conditional
	// write: the session must be joinable, not started in the past, not
	// already contain the user, and have room. Returns false when the
	// filter matched nothing; the caller re-reads to classify why.
	Join(ctx context.Context, sessionID, userID string, now time.Time) (bool, error)
	CompleteIfOpen(ctx context.Context, sessionID, completedBy, notes string, actualDuration int, now time.Time) (bool, error)
	CancelIfOpen(ctx context.Context, sessionID, cancelledBy, reason string, now time.Time) (bool, error)
	ListAvailable(ctx context.Context, now time.Time, limit int64) ([]models.Session, error)
	ListForUser(ctx context.Context, userID string, limit, offset int64) ([]models.Session, error)
	// AudienceForMentor returns the distinct students who ever participated
	// in one of the mentor's non-cancelled sessions.
	AudienceForMentor(ctx context.Context, mentorID string) ([]string, error)
}

type sessionRepo struct {
	col *mongo.Collection
}

func NewSessionRepo(db *mongo.Database) SessionRepository {
	return &sessionRepo{col: db.Collection("sessions")}
}

var joinableStatuses = bson.A{models.SessionScheduled, models.SessionActive}

func (r *sessionRepo) Create(ctx context.Context, s *models.Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if s.Participants == nil {
		s.Participants = []string{}
	}
	_, err := r.col.InsertOne(ctx, s)
	return err
}

func (r *sessionRepo) GetBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	var s models.Session
	err := r.col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &s, err
}

func (r *sessionRepo) Join(ctx context.Context, sessionID, userID string, now time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{
			"session_id":   sessionID,
			"status":       bson.M{"$in": joinableStatuses},
			"scheduled_at": bson.M{"$gt": now.UTC()},
			"participants": bson.M{"$ne": userID},
			"$expr":        bson.M{"$lt": bson.A{bson.M{"$size": "$participants"}, "$capacity"}},
		},
		bson.M{
			"$addToSet": bson.M{"participants": userID},
			"$set": bson.M{
				"status":     models.SessionActive,
				"updated_at": now.UTC(),
			},
		},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *sessionRepo) CompleteIfOpen(ctx context.Context, sessionID, completedBy, notes string, actualDuration int, now time.Time) (bool, error) {
	set := bson.M{
		"status":       models.SessionCompleted,
		"completed_by": completedBy,
		"completed_at": now.UTC(),
		"updated_at":   now.UTC(),
	}
	if notes != "" {
		set["notes"] = notes
	}
	if actualDuration > 0 {
		set["actual_duration_minutes"] = actualDuration
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "status": bson.M{"$in": joinableStatuses}},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *sessionRepo) CancelIfOpen(ctx context.Context, sessionID, cancelledBy, reason string, now time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"session_id": sessionID, "status": bson.M{"$in": joinableStatuses}},
		bson.M{"$set": bson.M{
			"status":        models.SessionCancelled,
			"cancelled_by":  cancelledBy,
			"cancel_reason": reason,
			"cancelled_at":  now.UTC(),
			"updated_at":    now.UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *sessionRepo) ListAvailable(ctx context.Context, now time.Time, limit int64) ([]models.Session, error) {
	filter := bson.M{
		"status":       bson.M{"$in": joinableStatuses},
		"scheduled_at": bson.M{"$gt": now.UTC()},
		"$expr":        bson.M{"$lt": bson.A{bson.M{"$size": "$participants"}, "$capacity"}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: 1}}).
		SetLimit(limit)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Session{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) ListForUser(ctx context.Context, userID string, limit, offset int64) ([]models.Session, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"mentor_id": userID},
		bson.M{"participants": userID},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "scheduled_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Session{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) AudienceForMentor(ctx context.Context, mentorID string) ([]string, error) {
	raw, err := r.col.Distinct(ctx, "participants", bson.M{
		"mentor_id": mentorID,
		"status":    bson.M{"$ne": models.SessionCancelled},
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
