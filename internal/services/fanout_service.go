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

type FanoutResult struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
}

// FanoutService expands a published open session into one notification per
// eligible student. Audience: students who ever sat in one of the mentor's
// non-cancelled sessions; if none exist, all approved and verified students.
// Delivery is idempotent per (session, recipient), so the worker may replay
// the same session without double-notifying.
type FanoutService interface {
	Broadcast(ctx context.Context, sessionID string) (FanoutResult, error)
}

type fanoutService struct {
	sessions      mongorepo.SessionRepository
	notifications mongorepo.NotificationRepository
	users         pgrepo.UserRepository
}

func NewFanoutService(
	sessions mongorepo.SessionRepository,
	notifications mongorepo.NotificationRepository,
	users pgrepo.UserRepository,
) FanoutService {
	return &fanoutService{
		sessions:      sessions,
		notifications: notifications,
		users:         users,
	}
}

func (s *fanoutService) Broadcast(ctx context.Context, sessionID string) (FanoutResult, error) {
	const op = "FanoutService.Broadcast"

	if sessionID == "" {
		return FanoutResult{}, utils.E(utils.CodeInvalidArgument, op, "session_id is required", nil)
	}

	session, err := s.sessions.GetBySessionID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return FanoutResult{}, utils.E(utils.CodeNotFound, op, "session not found", err)
		}
		return FanoutResult{}, utils.E(utils.CodeInternal, op, "failed to get session", err)
	}
	if session.IsTerminal() {
		// published then immediately cancelled; nothing to announce
		return FanoutResult{}, nil
	}

	audience, err := s.sessions.AudienceForMentor(ctx, session.MentorID)
	if err != nil {
		return FanoutResult{}, utils.E(utils.CodeInternal, op, "failed to resolve audience", err)
	}
	if len(audience) == 0 {
		audience, err = s.users.ApprovedVerifiedStudentIDs(ctx)
		if err != nil {
			return FanoutResult{}, utils.E(utils.CodeInternal, op, "failed to resolve fallback audience", err)
		}
	}

	already, err := s.notifications.RecipientsNotified(ctx, session.SessionID, models.NotifSessionPublished)
	if err != nil {
		return FanoutResult{}, utils.E(utils.CodeInternal, op, "failed to check prior deliveries", err)
	}

	now := time.Now().UTC()
	seen := map[string]bool{session.MentorID: true}
	for _, p := range session.Participants {
		seen[p] = true
	}

	batch := make([]models.Notification, 0, len(audience))
	skipped := 0
	for _, studentID := range audience {
		if studentID == "" || seen[studentID] {
			continue
		}
		seen[studentID] = true
		if already[studentID] {
			skipped++
			continue
		}
		batch = append(batch, models.Notification{
			NotificationID: uuid.NewString(),
			RecipientID:    studentID,
			SenderID:       session.MentorID,
			Type:           models.NotifSessionPublished,
			Title:          "New open session",
			Message:        fmt.Sprintf("%q is open for joining on %s", session.Title, session.ScheduledAt.Format(time.RFC3339)),
			RelatedID:      session.SessionID,
			RelatedModel:   "session",
			Metadata: map[string]any{
				"title":            session.Title,
				"description":      session.Description,
				"scheduled_at":     session.ScheduledAt,
				"duration_minutes": session.DurationMinutes,
				"meet_link":        session.MeetLink,
				"capacity":         session.Capacity,
			},
			CreatedAt: now,
		})
	}

	if err := s.notifications.CreateMany(ctx, batch); err != nil {
		return FanoutResult{}, utils.E(utils.CodeInternal, op, "failed to write notifications", err)
	}
	return FanoutResult{Sent: len(batch), Skipped: skipped}, nil
}
