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

type CreateRequestInput struct {
	StudentID       string
	MentorID        string
	Subject         string
	Description     string
	DurationMinutes int
	PreferredTimes  []time.Time
	ProposedPrice   float64
}

type RequestService interface {
	Create(ctx context.Context, in CreateRequestInput) (*models.SessionRequest, error)
	// Accept flips a pending request to accepted and derives the direct
	// session from it. The flip is a conditional write, so a racing second
	// accept observes not-found instead of creating a second session.
	Accept(ctx context.Context, mentorID, requestID string, scheduledAt time.Time, meetLink, responseMessage string) (*models.Session, error)
	Reject(ctx context.Context, mentorID, requestID, reason string) (*models.SessionRequest, error)
	ListByStudent(ctx context.Context, studentID string, limit, offset int64) ([]models.SessionRequest, error)
	ListByMentor(ctx context.Context, mentorID string, limit, offset int64) ([]models.SessionRequest, error)
}

type requestService struct {
	requests mongorepo.RequestRepository
	sessions mongorepo.SessionRepository
	users    pgrepo.UserRepository
	notifier NotificationService
}

func NewRequestService(
	requests mongorepo.RequestRepository,
	sessions mongorepo.SessionRepository,
	users pgrepo.UserRepository,
	notifier NotificationService,
) RequestService {
	return &requestService{
		requests: requests,
		sessions: sessions,
		users:    users,
		notifier: notifier,
	}
}

func (s *requestService) Create(ctx context.Context, in CreateRequestInput) (*models.SessionRequest, error) {
	const op = "RequestService.Create"

	if in.StudentID == "" || in.MentorID == "" || in.Subject == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "student_id, mentor_id, and subject are required", nil)
	}
	if in.DurationMinutes <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "duration_minutes must be a positive integer", nil)
	}
	if in.StudentID == in.MentorID {
		return nil, utils.E(utils.CodeInvalidArgument, op, "cannot request a session with yourself", nil)
	}

	mentor, err := s.users.GetByID(ctx, in.MentorID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInvalidArgument, op, "mentor not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to resolve mentor", err)
	}
	if !mentor.IsMentor() || !mentor.IsApproved {
		return nil, utils.E(utils.CodeInvalidArgument, op, "target user is not an approved mentor", nil)
	}

	pending, err := s.requests.HasPending(ctx, in.StudentID, in.MentorID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to check pending requests", err)
	}
	if pending {
		return nil, utils.E(utils.CodeConflict, op, "a pending request to this mentor already exists", nil)
	}

	now := time.Now().UTC()
	req := &models.SessionRequest{
		RequestID:       uuid.NewString(),
		StudentID:       in.StudentID,
		MentorID:        in.MentorID,
		Subject:         in.Subject,
		Description:     in.Description,
		DurationMinutes: in.DurationMinutes,
		PreferredTimes:  in.PreferredTimes,
		ProposedPrice:   in.ProposedPrice,
		Status:          models.RequestPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.requests.Create(ctx, req); err != nil {
		if errors.Is(err, utils.ErrConflict) {
			// the partial unique index caught a concurrent duplicate
			return nil, utils.E(utils.CodeConflict, op, "a pending request to this mentor already exists", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to create request", err)
	}

	_ = s.notifier.Push(ctx, PushInput{
		RecipientID:  in.MentorID,
		SenderID:     in.StudentID,
		Type:         models.NotifRequestReceived,
		Title:        "New session request",
		Message:      fmt.Sprintf("You have a new session request for %s (%d min)", in.Subject, in.DurationMinutes),
		RelatedID:    req.RequestID,
		RelatedModel: "session_request",
	})

	return req, nil
}

func (s *requestService) Accept(ctx context.Context, mentorID, requestID string, scheduledAt time.Time, meetLink, responseMessage string) (*models.Session, error) {
	const op = "RequestService.Accept"

	if mentorID == "" || requestID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentor_id and request_id are required", nil)
	}
	if scheduledAt.IsZero() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "scheduled_at is required", nil)
	}

	req, err := s.requests.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "request not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get request", err)
	}
	if req.MentorID != mentorID {
		return nil, utils.E(utils.CodeForbidden, op, "only the addressed mentor can accept this request", nil)
	}
	if req.Status != models.RequestPending {
		return nil, utils.E(utils.CodeNotFound, op, "request is not pending", nil)
	}

	// Flip first: a concurrent accept loses here and never reaches session
	// creation. A crash after the flip leaves an accepted request without a
	// session, which is recoverable by the mentor re-publishing.
	ok, err := s.requests.AcceptIfPending(ctx, requestID, responseMessage, scheduledAt)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to accept request", err)
	}
	if !ok {
		return nil, utils.E(utils.CodeNotFound, op, "request is not pending", nil)
	}

	session := &models.Session{
		SessionID:       uuid.NewString(),
		MentorID:        req.MentorID,
		RequestID:       req.RequestID,
		Title:           req.Subject,
		Description:     req.Description,
		Subject:         req.Subject,
		ScheduledAt:     scheduledAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		MeetLink:        meetLink,
		Capacity:        1,
		Participants:    []string{req.StudentID},
		Status:          models.SessionScheduled,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "request accepted but session creation failed", err)
	}

	_ = s.notifier.Push(ctx, PushInput{
		RecipientID:  req.StudentID,
		SenderID:     req.MentorID,
		Type:         models.NotifRequestAccepted,
		Title:        "Request accepted",
		Message:      fmt.Sprintf("Your request for %s was accepted", req.Subject),
		RelatedID:    session.SessionID,
		RelatedModel: "session",
		Metadata: map[string]any{
			"scheduled_at":     session.ScheduledAt,
			"duration_minutes": session.DurationMinutes,
			"meet_link":        session.MeetLink,
		},
	})

	return session, nil
}

func (s *requestService) Reject(ctx context.Context, mentorID, requestID, reason string) (*models.SessionRequest, error) {
	const op = "RequestService.Reject"

	if mentorID == "" || requestID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentor_id and request_id are required", nil)
	}

	req, err := s.requests.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "request not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get request", err)
	}
	if req.MentorID != mentorID {
		return nil, utils.E(utils.CodeForbidden, op, "only the addressed mentor can reject this request", nil)
	}
	if req.Status != models.RequestPending {
		return nil, utils.E(utils.CodeNotFound, op, "request is not pending", nil)
	}

	ok, err := s.requests.RejectIfPending(ctx, requestID, reason)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to reject request", err)
	}
	if !ok {
		return nil, utils.E(utils.CodeNotFound, op, "request is not pending", nil)
	}

	req.Status = models.RequestRejected
	req.ResponseMessage = reason
	req.UpdatedAt = time.Now().UTC()

	_ = s.notifier.Push(ctx, PushInput{
		RecipientID:  req.StudentID,
		SenderID:     req.MentorID,
		Type:         models.NotifRequestRejected,
		Title:        "Request declined",
		Message:      fmt.Sprintf("Your request for %s was declined", req.Subject),
		RelatedID:    req.RequestID,
		RelatedModel: "session_request",
	})

	return req, nil
}

func (s *requestService) ListByStudent(ctx context.Context, studentID string, limit, offset int64) ([]models.SessionRequest, error) {
	const op = "RequestService.ListByStudent"

	if studentID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "student_id is required", nil)
	}
	out, err := s.requests.ListByStudent(ctx, studentID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list requests", err)
	}
	return out, nil
}

func (s *requestService) ListByMentor(ctx context.Context, mentorID string, limit, offset int64) ([]models.SessionRequest, error) {
	const op = "RequestService.ListByMentor"

	if mentorID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentor_id is required", nil)
	}
	out, err := s.requests.ListByMentor(ctx, mentorID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list requests", err)
	}
	return out, nil
}
