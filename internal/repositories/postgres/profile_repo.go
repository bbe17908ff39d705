package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tutorhive/tutorhive/internal/models"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.MentorProfile, error)
	Upsert(ctx context.Context, p *models.MentorProfile) error
	ListBySkill(ctx context.Context, skill string, limit, offset int) ([]models.MentorProfile, error)
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*models.MentorProfile, error) {
	var p models.MentorProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &p, err
}

func (r *profileRepo) Upsert(ctx context.Context, p *models.MentorProfile) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"headline", "bio", "hourly_rate", "skills", "education", "availability", "updated_at"}),
		}).
		Create(p).Error
}

func (r *profileRepo) ListBySkill(ctx context.Context, skill string, limit, offset int) ([]models.MentorProfile, error) {
	var out []models.MentorProfile
	err := r.db.WithContext(ctx).
		Where("? = ANY(skills)", skill).
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}
