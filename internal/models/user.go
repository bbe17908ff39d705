package models

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleMentor  UserRole = "mentor"
	RoleAdmin   UserRole = "admin"
)

// User is the directory record every other component authorizes against.
// Rating and TotalReviews are derived aggregates owned by the review service.
type User struct {
	ID           string   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email        string   `gorm:"column:email;type:text;uniqueIndex" json:"email"`
	PasswordHash string   `gorm:"column:password_hash;type:text" json:"-"`
	FullName     string   `gorm:"column:full_name;type:text" json:"full_name"`
	Role         UserRole `gorm:"column:role;type:text" json:"role"`

	IsApproved        bool `gorm:"column:is_approved" json:"is_approved"`
	DocumentsVerified bool `gorm:"column:documents_verified" json:"documents_verified"`

	Rating       float64 `gorm:"column:rating" json:"rating"`
	TotalReviews int     `gorm:"column:total_reviews" json:"total_reviews"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) IsMentor() bool { return u.Role == RoleMentor }
