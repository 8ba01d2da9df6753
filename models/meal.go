package models

import (
	"time"
)

// One logged meal. AteAt is the authoritative UTC instant used for day-window
// queries; DisplayLocal is the verbatim client-supplied local timestamp kept
// only for display and never validated against AteAt.
type Meal struct {
	ID     uint   `gorm:"primaryKey" json:"-"`
	UID    string `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	UserID uint   `gorm:"index;not null" json:"-"`

	TotalCalories float64    `json:"total_calories"`
	Items         []MealItem `json:"items"`
	Notes         string     `json:"notes,omitempty"`
	ImageURL      string     `json:"image_url,omitempty"`
	ImageBase64   string     `gorm:"type:text" json:"image_base64,omitempty"`

	AteAt        time.Time `gorm:"index;not null" json:"created_at"`
	DisplayLocal string    `json:"display_local,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// MealItem stores one recognized food line within a meal. Rows keep their
// insertion order through the auto-increment primary key.
type MealItem struct {
	ID     uint `gorm:"primaryKey" json:"-"`
	MealID uint `gorm:"index;not null" json:"-"`

	Name          string  `json:"name"`
	QuantityUnits string  `json:"quantity_units"`
	Calories      float64 `json:"calories"`
	Confidence    float64 `json:"confidence"`
}
