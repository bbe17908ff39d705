package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tutorhive/tutorhive/internal/models"
	mongorepo "github.com/tutorhive/tutorhive/internal/repositories/mongo"
	pgrepo "github.com/tutorhive/tutorhive/internal/repositories/postgres"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type CreateReviewInput struct {
	ReviewerID string
	SessionID  string
	RevieweeID string // optional; defaults to the other side of the session
	Rating     int
	Comment    string
	IsPublic   bool
}

type ReviewService interface {
	Create(ctx context.Context, in CreateReviewInput) (*models.Review, error)
	Update(ctx context.Context, reviewerID, reviewID string, rating int, comment string, isPublic bool) (*models.Review, error)
	Delete(ctx context.Context, actorID string, actorRole models.UserRole, reviewID string) error
	ListForUser(ctx context.Context, revieweeID string, publicOnly bool, limit, offset int64) ([]models.Review, error)
}

type reviewService struct {
	reviews  mongorepo.ReviewRepository
	sessions mongorepo.SessionRepository
	users    pgrepo.UserRepository
	notifier NotificationService
}

func NewReviewService(
	reviews mongorepo.ReviewRepository,
	sessions mongorepo.SessionRepository,
	users pgrepo.UserRepository,
	notifier NotificationService,
) ReviewService {
	return &reviewService{
		reviews:  reviews,
		sessions: sessions,
		users:    users,
		notifier: notifier,
	}
}

func (s *reviewService) Create(ctx context.Context, in CreateReviewInput) (*models.Review, error) {
	const op = "ReviewService.Create"

	if in.ReviewerID == "" || in.SessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "reviewer_id and session_id are required", nil)
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "rating must be between 1 and 5", nil)
	}

	session, err := s.sessions.GetBySessionID(ctx, in.SessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	if !session.IsParticipant(in.ReviewerID) {
		return nil, utils.E(utils.CodeForbidden, op, "only a session participant can leave a review", nil)
	}
	if session.Status != models.SessionCompleted {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "session is not completed", nil)
	}

	revieweeID, err := s.resolveReviewee(session, in.ReviewerID, in.RevieweeID)
	if err != nil {
		return nil, err
	}

	exists, err := s.reviews.ExistsForSessionReviewer(ctx, in.SessionID, in.ReviewerID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing review", err)
	}
	if exists {
		return nil, utils.E(utils.CodeConflict, op, "you already reviewed this session", nil)
	}

	now := time.Now().UTC()
	review := &models.Review{
		ReviewID:   uuid.NewString(),
		SessionID:  in.SessionID,
		ReviewerID: in.ReviewerID,
		RevieweeID: revieweeID,
		Rating:     in.Rating,
		Comment:    in.Comment,
		IsPublic:   in.IsPublic,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			return nil, utils.E(utils.CodeConflict, op, "you already reviewed this session", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create review", err)
	}

	if err := s.recomputeRating(ctx, op, revieweeID); err != nil {
		return nil, err
	}

	_ = s.notifier.Push(ctx, PushInput{
		RecipientID:  revieweeID,
		SenderID:     in.ReviewerID,
		Type:         models.NotifReviewReceived,
		Title:        "New review",
		Message:      fmt.Sprintf("You received a %d-star review", in.Rating),
		RelatedID:    review.ReviewID,
		RelatedModel: "review",
	})

	return review, nil
}

func (s *reviewService) Update(ctx context.Context, reviewerID, reviewID string, rating int, comment string, isPublic bool) (*models.Review, error) {
	const op = "ReviewService.Update"

	if reviewerID == "" || reviewID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "reviewer_id and review_id are required", nil)
	}
	if rating < 1 || rating > 5 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "rating must be between 1 and 5", nil)
	}

	review, err := s.reviews.GetByReviewID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "review not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get review", err)
	}
	if review.ReviewerID != reviewerID {
		return nil, utils.E(utils.CodeForbidden, op, "only the author can update a review", nil)
	}

	if err := s.reviews.Update(ctx, reviewID, rating, comment, isPublic); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "review not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update review", err)
	}

	if err := s.recomputeRating(ctx, op, review.RevieweeID); err != nil {
		return nil, err
	}

	review.Rating = rating
	review.Comment = comment
	review.IsPublic = isPublic
	review.UpdatedAt = time.Now().UTC()
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, actorID string, actorRole models.UserRole, reviewID string) error {
	const op = "ReviewService.Delete"

	if actorID == "" || reviewID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "actor_id and review_id are required", nil)
	}

	review, err := s.reviews.GetByReviewID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "review not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to get review", err)
	}
	if review.ReviewerID != actorID && actorRole != models.RoleAdmin {
		return utils.E(utils.CodeForbidden, op, "only the author or an admin can delete a review", nil)
	}

	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "review not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete review", err)
	}

	return s.recomputeRating(ctx, op, review.RevieweeID)
}

func (s *reviewService) ListForUser(ctx context.Context, revieweeID string, publicOnly bool, limit, offset int64) ([]models.Review, error) {
	const op = "ReviewService.ListForUser"

	if revieweeID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "reviewee_id is required", nil)
	}
	out, err := s.reviews.ListByReviewee(ctx, revieweeID, publicOnly, normalizeLimit(limit), offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list reviews", err)
	}
	return out, nil
}

// resolveReviewee picks the other side of the session when the caller did not
// name one: students review the mentor; the mentor reviews the sole student of
// a direct session, and must name the reviewee in group sessions.
func (s *reviewService) resolveReviewee(session *models.Session, reviewerID, explicit string) (string, error) {
	const op = "ReviewService.Create"

	if explicit != "" {
		if explicit == reviewerID {
			return "", utils.E(utils.CodeInvalidArgument, op, "cannot review yourself", nil)
		}
		if !session.IsParticipant(explicit) {
			return "", utils.E(utils.CodeInvalidArgument, op, "reviewee is not a participant of this session", nil)
		}
		return explicit, nil
	}

	if reviewerID != session.MentorID {
		return session.MentorID, nil
	}
	if len(session.Participants) == 1 {
		return session.Participants[0], nil
	}
	return "", utils.E(utils.CodeInvalidArgument, op, "reviewee_id is required for group sessions", nil)
}

// Full recompute of the reviewee's mean rating; immune to incremental drift.
func (s *reviewService) recomputeRating(ctx context.Context, op, revieweeID string) error {
	summary, err := s.reviews.Summarize(ctx, revieweeID)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to recompute rating", err)
	}
	if err := s.users.UpdateRating(ctx, revieweeID, summary.Average, summary.Count); err != nil && !errors.Is(err, utils.ErrNotFound) {
		return utils.E(utils.CodeInternal, op, "failed to store rating", err)
	}
	return nil
}
