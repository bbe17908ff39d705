package services

import (
	"context"
	"errors"

	"github.com/tutorhive/tutorhive/internal/models"
	pgrepo "github.com/tutorhive/tutorhive/internal/repositories/postgres"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type UserService interface {
	Get(ctx context.Context, id string) (*models.User, error)
	ListMentors(ctx context.Context, limit, offset int) ([]models.User, error)
	ListPendingApproval(ctx context.Context, limit, offset int) ([]models.User, error)
	Approve(ctx context.Context, id string) error
	VerifyDocuments(ctx context.Context, id string) error
}

type userService struct {
	users    pgrepo.UserRepository
	notifier NotificationService
}

func NewUserService(users pgrepo.UserRepository, notifier NotificationService) UserService {
	return &userService{users: users, notifier: notifier}
}

func (s *userService) Get(ctx context.Context, id string) (*models.User, error) {
	const op = "UserService.Get"

	if id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user id is required", nil)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}
	return u, nil
}

func (s *userService) ListMentors(ctx context.Context, limit, offset int) ([]models.User, error) {
	const op = "UserService.ListMentors"

	out, err := s.users.ListMentors(ctx, int(normalizeLimit(int64(limit))), offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list mentors", err)
	}
	return out, nil
}

func (s *userService) ListPendingApproval(ctx context.Context, limit, offset int) ([]models.User, error) {
	const op = "UserService.ListPendingApproval"

	out, err := s.users.ListPendingApproval(ctx, int(normalizeLimit(int64(limit))), offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list pending users", err)
	}
	return out, nil
}

func (s *userService) Approve(ctx context.Context, id string) error {
	const op = "UserService.Approve"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user id is required", nil)
	}
	if err := s.users.SetApproved(ctx, id, true); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to approve user", err)
	}

	_ = s.notifier.Push(ctx, PushInput{
		RecipientID: id,
		Type:        models.NotifAccountApproved,
		Title:       "Account approved",
		Message:     "Your account has been approved. You can now use the platform.",
	})
	return nil
}

func (s *userService) VerifyDocuments(ctx context.Context, id string) error {
	const op = "UserService.VerifyDocuments"

	if id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user id is required", nil)
	}
	if err := s.users.SetDocumentsVerified(ctx, id, true); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to verify documents", err)
	}
	return nil
}
