package services

import (
	"context"
	"errors"
	"time"

	"github.com/tutorhive/tutorhive/internal/models"
	pgrepo "github.com/tutorhive/tutorhive/internal/repositories/postgres"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type ProfileService interface {
	Get(ctx context.Context, mentorID string) (*models.MentorProfile, error)
	Upsert(ctx context.Context, p *models.MentorProfile) error
	SearchBySkill(ctx context.Context, skill string, limit, offset int) ([]models.MentorProfile, error)
}

type profileService struct {
	profiles pgrepo.ProfileRepository
}

func NewProfileService(profiles pgrepo.ProfileRepository) ProfileService {
	return &profileService{profiles: profiles}
}

func (s *profileService) Get(ctx context.Context, mentorID string) (*models.MentorProfile, error) {
	const op = "ProfileService.Get"

	if mentorID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "mentor id is required", nil)
	}
	p, err := s.profiles.GetByUserID(ctx, mentorID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "profile not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get profile", err)
	}
	return p, nil
}

func (s *profileService) Upsert(ctx context.Context, p *models.MentorProfile) error {
	const op = "ProfileService.Upsert"

	if p == nil || p.UserID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "profile.user_id is required", nil)
	}
	if p.HourlyRate < 0 {
		return utils.E(utils.CodeInvalidArgument, op, "hourly_rate must not be negative", nil)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	if err := s.profiles.Upsert(ctx, p); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to upsert profile", err)
	}
	return nil
}

func (s *profileService) SearchBySkill(ctx context.Context, skill string, limit, offset int) ([]models.MentorProfile, error) {
	const op = "ProfileService.SearchBySkill"

	if skill == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "skill is required", nil)
	}
	out, err := s.profiles.ListBySkill(ctx, skill, int(normalizeLimit(int64(limit))), offset)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to search profiles", err)
	}
	return out, nil
}
