package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tutorhive/tutorhive/internal/models"
	mongorepo "github.com/tutorhive/tutorhive/internal/repositories/mongo"
	"github.com/tutorhive/tutorhive/internal/utils"
)

// PushInput describes a single typed notification to deliver.
type PushInput struct {
	RecipientID  string
	SenderID     string
	Type         models.NotificationType
	Title        string
	Message      string
	RelatedID    string
	RelatedModel string
	Metadata     map[string]any
}

type NotificationService interface {
	Push(ctx context.Context, in PushInput) error
	ListMine(ctx context.Context, userID string, unreadOnly bool, limit, offset int64) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// LegacyMessages renders the notification feed in the old message shape
	// for consumers that still expect it. Read-only adapter, nothing stored.
	LegacyMessages(ctx context.Context, userID string, limit, offset int64) ([]models.LegacyMessage, error)
}

type notificationService struct {
	notifications mongorepo.NotificationRepository
}

func NewNotificationService(notifications mongorepo.NotificationRepository) NotificationService {
	return &notificationService{notifications: notifications}
}

func (s *notificationService) Push(ctx context.Context, in PushInput) error {
	const op = "NotificationService.Push"

	if in.RecipientID == "" || in.Type == "" {
		return utils.E(utils.CodeInvalidArgument, op, "recipient_id and type are required", nil)
	}

	n := &models.Notification{
		NotificationID: uuid.NewString(),
		RecipientID:    in.RecipientID,
		SenderID:       in.SenderID,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		RelatedID:      in.RelatedID,
		RelatedModel:   in.RelatedModel,
		Metadata:       in.Metadata,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to create notification", err)
	}
	return nil
}

func (s *notificationService) ListMine(ctx context.Context, userID string, unreadOnly bool, limit, offset int64) ([]models.Notification, error) {
	const op = "NotificationService.ListMine"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.notifications.ListByRecipient(ctx, userID, unreadOnly, normalizeLimit(limit), offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list notifications", err)
	}
	return out, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	const op = "NotificationService.UnreadCount"

	if userID == "" {
		return 0, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	n, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to count unread notifications", err)
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	const op = "NotificationService.MarkRead"

	if userID == "" || notificationID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_id and notification_id are required", nil)
	}
	ok, err := s.notifications.MarkRead(ctx, notificationID, userID, time.Now().UTC())
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to mark notification read", err)
	}
	if !ok {
		return utils.E(utils.CodeNotFound, op, "notification not found", nil)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	const op = "NotificationService.MarkAllRead"

	if userID == "" {
		return 0, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	n, err := s.notifications.MarkAllRead(ctx, userID, time.Now().UTC())
	if err != nil {
		return 0, utils.E(utils.CodeInternal, op, "failed to mark notifications read", err)
	}
	return n, nil
}

func (s *notificationService) LegacyMessages(ctx context.Context, userID string, limit, offset int64) ([]models.LegacyMessage, error) {
	const op = "NotificationService.LegacyMessages"

	ns, err := s.ListMine(ctx, userID, false, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]models.LegacyMessage, 0, len(ns))
	for _, n := range ns {
		content := n.Message
		if n.Title != "" {
			content = fmt.Sprintf("%s: %s", n.Title, n.Message)
		}
		out = append(out, models.LegacyMessage{
			MessageID: n.NotificationID,
			From:      n.SenderID,
			To:        n.RecipientID,
			Content:   content,
			IsRead:    n.IsRead,
			SentAt:    n.CreatedAt,
		})
	}
	return out, nil
}

func normalizeLimit(limit int64) int64 {
	if limit <= 0 || limit > 100 {
		return 20
	}
	return limit
}
