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

type RequestRepository interface {
	Create(ctx context.Context, r *models.SessionRequest) error
	GetByRequestID(ctx context.Context, requestID string) (*models.SessionRequest, error)
	HasPending(ctx context.Context, studentID, mentorID string) (bool, error)
	ListByStudent(ctx context.Context, studentID string, limit, offset int64) ([]models.SessionRequest, error)
	ListByMentor(ctx context.Context, mentorID string, limit, offset int64) ([]models.SessionRequest, error)
	// AcceptIfPending flips a pending request to accepted in one conditional
	// write. Returns false when the request is missing or no longer pending.
	AcceptIfPending(ctx context.Context, requestID, responseMessage string, scheduledAt time.Time) (bool, error)
	RejectIfPending(ctx context.Context, requestID, responseMessage string) (bool, error)
}

type requestRepo struct {
	col *mongo.Collection
}

func NewRequestRepo(db *mongo.Database) RequestRepository {
	return &requestRepo{col: db.Collection("session_requests")}
}

func (r *requestRepo) Create(ctx context.Context, req *models.SessionRequest) error {
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, req)
	if mongo.IsDuplicateKeyError(err) {
		// lost the race against the partial unique index on pending pairs
		return utils.ErrConflict
	}
	return err
}

func (r *requestRepo) GetByRequestID(ctx context.Context, requestID string) (*models.SessionRequest, error) {
	var req models.SessionRequest
	err := r.col.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &req, err
}

func (r *requestRepo) HasPending(ctx context.Context, studentID, mentorID string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"student_id": studentID,
		"mentor_id":  mentorID,
		"status":     models.RequestPending,
	})
	return count > 0, err
}

func (r *requestRepo) ListByStudent(ctx context.Context, studentID string, limit, offset int64) ([]models.SessionRequest, error) {
	return r.list(ctx, bson.M{"student_id": studentID}, limit, offset)
}

func (r *requestRepo) ListByMentor(ctx context.Context, mentorID string, limit, offset int64) ([]models.SessionRequest, error) {
	return r.list(ctx, bson.M{"mentor_id": mentorID}, limit, offset)
}

func (r *requestRepo) list(ctx context.Context, filter bson.M, limit, offset int64) ([]models.SessionRequest, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.SessionRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *requestRepo) AcceptIfPending(ctx context.Context, requestID, responseMessage string, scheduledAt time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"request_id": requestID, "status": models.RequestPending},
		bson.M{"$set": bson.M{
			"status":           models.RequestAccepted,
			"response_message": responseMessage,
			"scheduled_at":     scheduledAt.UTC(),
			"updated_at":       time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *requestRepo) RejectIfPending(ctx context.Context, requestID, responseMessage string) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"request_id": requestID, "status": models.RequestPending},
		bson.M{"$set": bson.M{
			"status":           models.RequestRejected,
			"response_message": responseMessage,
			"updated_at":       time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}
