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

type ReviewRepository interface {
	Create(ctx context.Context, rv *models.Review) error
	GetByReviewID(ctx context.Context, reviewID string) (*models.Review, error)
	Update(ctx context.Context, reviewID string, rating int, comment string, isPublic bool) error
	Delete(ctx context.Context, reviewID string) error
	ExistsForSessionReviewer(ctx context.Context, sessionID, reviewerID string) (bool, error)
	ListByReviewee(ctx context.Context, revieweeID string, publicOnly bool, limit, offset int64) ([]models.Review, error)
	// Summarize recomputes the reviewee's aggregate from all their reviews.
	Summarize(ctx context.Context, revieweeID string) (models.RatingSummary, error)
}

type reviewRepo struct {
	col *mongo.Collection
}

func NewReviewRepo(db *mongo.Database) ReviewRepository {
	return &reviewRepo{col: db.Collection("reviews")}
}

func (r *reviewRepo) Create(ctx context.Context, rv *models.Review) error {
	now := time.Now().UTC()
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = now
	}
	rv.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, rv)
	if mongo.IsDuplicateKeyError(err) {
		// unique (session_id, reviewer_id) index
		return utils.ErrConflict
	}
	return err
}

func (r *reviewRepo) GetByReviewID(ctx context.Context, reviewID string) (*models.Review, error) {
	var rv models.Review
	err := r.col.FindOne(ctx, bson.M{"review_id": reviewID}).Decode(&rv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	return &rv, err
}

func (r *reviewRepo) Update(ctx context.Context, reviewID string, rating int, comment string, isPublic bool) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"review_id": reviewID},
		bson.M{"$set": bson.M{
			"rating":     rating,
			"comment":    comment,
			"is_public":  isPublic,
			"updated_at": time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *reviewRepo) Delete(ctx context.Context, reviewID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"review_id": reviewID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *reviewRepo) ExistsForSessionReviewer(ctx context.Context, sessionID, reviewerID string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{
		"session_id":  sessionID,
		"reviewer_id": reviewerID,
	})
	return count > 0, err
}

func (r *reviewRepo) ListByReviewee(ctx context.Context, revieweeID string, publicOnly bool, limit, offset int64) ([]models.Review, error) {
	filter := bson.M{"reviewee_id": revieweeID}
	if publicOnly {
		filter["is_public"] = true
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit).
		SetSkip(offset)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Review{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewRepo) Summarize(ctx context.Context, revieweeID string) (models.RatingSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"reviewee_id": revieweeID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingSummary{}, err
	}
	defer cur.Close(ctx)

	var rows []models.RatingSummary
	if err := cur.All(ctx, &rows); err != nil {
		return models.RatingSummary{}, err
	}
	if len(rows) == 0 {
		// no reviews left: aggregate resets to zero
		return models.RatingSummary{}, nil
	}
	return rows[0], nil
}
