package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/tutorhive/tutorhive/internal/models"
	"github.com/tutorhive/tutorhive/internal/utils"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListPendingApproval(ctx context.Context, limit, offset int) ([]models.User, error)
	ListMentors(ctx context.Context, limit, offset int) ([]models.User, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	SetDocumentsVerified(ctx context.Context, id string, verified bool) error
	UpdateRating(ctx context.Context, id string, rating float64, totalReviews int) error
	// ApprovedVerifiedStudentIDs backs the fan-out fallback audience.
	ApprovedVerifiedStudentIDs(ctx context.Context) ([]string, error)
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key")) {
		return utils.ErrConflict
	}
	return err
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &u, err
}

func (r *userRepo) ListPendingApproval(ctx context.Context, limit, offset int) ([]models.User, error) {
	var out []models.User
	err := r.db.WithContext(ctx).
		Where("is_approved = false").
		Order("created_at").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *userRepo) ListMentors(ctx context.Context, limit, offset int) ([]models.User, error) {
	var out []models.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_approved = true", models.RoleMentor).
		Order("rating DESC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	return out, err
}

func (r *userRepo) SetApproved(ctx context.Context, id string, approved bool) error {
	return r.setFlag(ctx, id, "is_approved", approved)
}

func (r *userRepo) SetDocumentsVerified(ctx context.Context, id string, verified bool) error {
	return r.setFlag(ctx, id, "documents_verified", verified)
}

func (r *userRepo) setFlag(ctx context.Context, id, column string, value bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{column: value, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *userRepo) UpdateRating(ctx context.Context, id string, rating float64, totalReviews int) error {
	res := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":        rating,
			"total_reviews": totalReviews,
			"updated_at":    time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *userRepo) ApprovedVerifiedStudentIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ? AND is_approved = true AND documents_verified = true", models.RoleStudent).
		Pluck("id", &ids).Error
	return ids, err
}
