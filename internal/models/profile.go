package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type MentorProfile struct {
	UserID     string  `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Headline   string  `gorm:"column:headline;type:text" json:"headline"`
	Bio        string  `gorm:"column:bio;type:text" json:"bio"`
	HourlyRate float64 `gorm:"column:hourly_rate" json:"hourly_rate"`

	Skills pq.StringArray `gorm:"column:skills;type:text[]" json:"skills"`

	// JSONB (raw JSON, structure flexible)
	Education    datatypes.JSON `gorm:"column:education;type:jsonb" json:"education"`
	Availability datatypes.JSON `gorm:"column:availability;type:jsonb" json:"availability"`

	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (MentorProfile) TableName() string { return "mentor_profiles" }
