package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tutorhive/tutorhive/internal/cache"
	"github.com/tutorhive/tutorhive/internal/models"
	mongorepo "github.com/tutorhive/tutorhive/internal/repositories/mongo"
	"github.com/tutorhive/tutorhive/internal/utils"
)

// FanoutQueue hands a freshly published open session off to the asynchronous
// fan-out worker, keeping broadcast latency out of the request path.
type FanoutQueue interface {
	Enqueue(ctx context.Context, sessionID string) error
}

const (
	availableCacheKey = "sessions:available"
	availableCacheTTL = 30 * time.Second
	availableLimit    = 50
)

type CreateOpenInput struct {
	MentorID        string
	Title           string
	Description     string
	Subject         string
	ScheduledAt     time.Time
	DurationMinutes int
	MeetLink        string
	Capacity        int
}

type SessionService interface {
	CreateOpen(ctx context.Context, in CreateOpenInput) (*models.Session, error)
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	// Join is idempotent: a user already in the participant set gets the
	// session back unchanged. Capacity and state are enforced by a single
	// conditional write in the repository, so concurrent joiners cannot
	// overbook.
	Join(ctx context.Context, sessionID, userID string) (*models.Session, error)
	Complete(ctx context.Context, sessionID, actorID, notes string, actualDuration int) (*models.Session, error)
	Cancel(ctx context.Context, sessionID, actorID, reason string) (*models.Session, error)
	ListAvailable(ctx context.Context) ([]models.Session, error)
	ListMine(ctx context.Context, userID string, limit, offset int64) ([]models.Session, error)
}

type sessionService struct {
	sessions mongorepo.SessionRepository
	notifier NotificationService
	queue    FanoutQueue
	cache    cache.Cache
}

func NewSessionService(
	sessions mongorepo.SessionRepository,
	notifier NotificationService,
	queue FanoutQueue,
	c cache.Cache,
) SessionService {
	return &sessionService{
		sessions: sessions,
		notifier: notifier,
		queue:    queue,
		cache:    c,
	}
}

func (s *sessionService) CreateOpen(ctx context.Context, in CreateOpenInput) (*models.Session, error) {
	const op = "SessionService.CreateOpen"

	if in.MentorID == "" || in.Title == "" || in.MeetLink == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentor_id, title, and meet_link are required", nil)
	}
	if in.DurationMinutes <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "duration_minutes must be a positive integer", nil)
	}
	now := time.Now().UTC()
	if in.ScheduledAt.IsZero() || !in.ScheduledAt.After(now) {
		return nil, utils.E(utils.CodeInvalidArgument, op, "scheduled_at must be in the future", nil)
	}
	capacity := in.Capacity
	if capacity == 0 {
		capacity = 1
	}
	if capacity < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "capacity must be a positive integer", nil)
	}

	session := &models.Session{
		SessionID:       uuid.NewString(),
		MentorID:        in.MentorID,
		Title:           in.Title,
		Description:     in.Description,
		Subject:         in.Subject,
		ScheduledAt:     in.ScheduledAt.UTC(),
		DurationMinutes: in.DurationMinutes,
		MeetLink:        in.MeetLink,
		Capacity:        capacity,
		Participants:    []string{},
		Status:          models.SessionScheduled,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create session", err)
	}

	// best-effort broadcast handoff; the worker dedups on redelivery
	_ = s.queue.Enqueue(ctx, session.SessionID)
	s.invalidateAvailable(ctx)

	return session, nil
}

func (s *sessionService) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	const op = "SessionService.Get"

	if sessionID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}
	out, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	return out, nil
}

func (s *sessionService) Join(ctx context.Context, sessionID, userID string) (*models.Session, error) {
	const op = "SessionService.Join"

	if sessionID == "" || userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id and user_id are required", nil)
	}

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.MentorID == userID {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentor cannot join their own session", nil)
	}
	if session.HasParticipant(userID) {
		// idempotent: already joined
		return session, nil
	}

	now := time.Now().UTC()
	if session.IsTerminal() {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "session is no longer joinable", nil)
	}
	if !session.ScheduledAt.After(now) {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "session start time has passed", nil)
	}

	joined, err := s.sessions.Join(ctx, sessionID, userID, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to join session", err)
	}
	if !joined {
		// conditional write matched nothing: re-read and classify the race
		session, err = s.Get(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		switch {
		case session.HasParticipant(userID):
			return session, nil
		case session.IsFull():
			return nil, utils.E(utils.CodeResourceExhausted, op, "session is full", nil)
		default:
			return nil, utils.E(utils.CodeFailedPrecondition, op, "session is no longer joinable", nil)
		}
	}

	session, err = s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	_ = s.notifier.Push(ctx, PushInput{
		RecipientID:  userID,
		SenderID:     session.MentorID,
		Type:         models.NotifSessionJoined,
		Title:        "Session confirmed",
		Message:      fmt.Sprintf("You joined %q on %s", session.Title, session.ScheduledAt.Format(time.RFC3339)),
		RelatedID:    session.SessionID,
		RelatedModel: "session",
		Metadata: map[string]any{
			"meet_link":    session.MeetLink,
			"scheduled_at": session.ScheduledAt,
		},
	})
	_ = s.notifier.Push(ctx, PushInput{
		RecipientID:  session.MentorID,
		SenderID:     userID,
		Type:         models.NotifSessionJoined,
		Title:        "New participant",
		Message:      fmt.Sprintf("A student joined %q (%d/%d seats taken)", session.Title, len(session.Participants), session.Capacity),
		RelatedID:    session.SessionID,
		RelatedModel: "session",
	})

	s.invalidateAvailable(ctx)
	return session, nil
}

func (s *sessionService) Complete(ctx context.Context, sessionID, actorID, notes string, actualDuration int) (*models.Session, error) {
	const op = "SessionService.Complete"

	if sessionID == "" || actorID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id and actor_id are required", nil)
	}
	if actualDuration < 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "actual_duration_minutes must not be negative", nil)
	}

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsParticipant(actorID) {
		return nil, utils.E(utils.CodeForbidden, op, "only a session participant can complete it", nil)
	}
	if session.IsTerminal() {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "session is already completed or cancelled", nil)
	}

	now := time.Now().UTC()
	ok, err := s.sessions.CompleteIfOpen(ctx, sessionID, actorID, notes, actualDuration, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to complete session", err)
	}
	if !ok {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "session is already completed or cancelled", nil)
	}

	s.invalidateAvailable(ctx)
	return s.Get(ctx, sessionID)
}

func (s *sessionService) Cancel(ctx context.Context, sessionID, actorID, reason string) (*models.Session, error) {
	const op = "SessionService.Cancel"

	if sessionID == "" || actorID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "session_id and actor_id are required", nil)
	}

	session, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsParticipant(actorID) {
		return nil, utils.E(utils.CodeForbidden, op, "only a session participant can cancel it", nil)
	}
	if session.Status == models.SessionCompleted {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "cannot cancel a completed session", nil)
	}
	if session.Status == models.SessionCancelled {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "session is already cancelled", nil)
	}

	now := time.Now().UTC()
	ok, err := s.sessions.CancelIfOpen(ctx, sessionID, actorID, reason, now)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to cancel session", err)
	}
	if !ok {
		return nil, utils.E(utils.CodeFailedPrecondition, op, "session is already completed or cancelled", nil)
	}

	// notify everyone attached except the canceller
	recipients := make([]string, 0, len(session.Participants)+1)
	if session.MentorID != actorID {
		recipients = append(recipients, session.MentorID)
	}
	for _, p := range session.Participants {
		if p != actorID {
			recipients = append(recipients, p)
		}
	}
	for _, rcpt := range recipients {
		_ = s.notifier.Push(ctx, PushInput{
			RecipientID:  rcpt,
			SenderID:     actorID,
			Type:         models.NotifSessionCancelled,
			Title:        "Session cancelled",
			Message:      fmt.Sprintf("%q was cancelled: %s", session.Title, reason),
			RelatedID:    session.SessionID,
			RelatedModel: "session",
		})
	}

	s.invalidateAvailable(ctx)
	return s.Get(ctx, sessionID)
}

func (s *sessionService) ListAvailable(ctx context.Context) ([]models.Session, error) {
	const op = "SessionService.ListAvailable"

	if s.cache != nil {
		var cached []models.Session
		if hit, err := s.cache.GetJSON(ctx, availableCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	out, err := s.sessions.ListAvailable(ctx, time.Now().UTC(), availableLimit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list available sessions", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, availableCacheKey, out, availableCacheTTL)
	}
	return out, nil
}

func (s *sessionService) ListMine(ctx context.Context, userID string, limit, offset int64) ([]models.Session, error) {
	const op = "SessionService.ListMine"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.sessions.ListForUser(ctx, userID, normalizeLimit(limit), offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list sessions", err)
	}
	return out, nil
}

func (s *sessionService) invalidateAvailable(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Del(ctx, availableCacheKey)
	}
}
