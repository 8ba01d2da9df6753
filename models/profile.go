package models

import (
	"time"
)

// Profile holds one user's nutrition profile. One row per user, upserted on
// every PUT /profile. RecommendedDailyCalories is recomputed from the other
// fields on each save and is never written independently of them.
type Profile struct {
	ID            uint     `gorm:"primaryKey" json:"-"`
	UserID        uint     `gorm:"uniqueIndex;not null" json:"-"`
	HeightCm      float64  `json:"height_cm"`
	WeightKg      float64  `json:"weight_kg"`
	Age           int      `json:"age"`
	Gender        string   `json:"gender"`         // male|female|other
	ActivityLevel string   `json:"activity_level"` // sedentary|light|moderate|very|extra
	Goal          string   `json:"goal"`           // lose|maintain|gain
	GoalIntensity string   `json:"goal_intensity"` // mild|moderate|aggressive
	GoalWeightKg  *float64 `json:"goal_weight_kg,omitempty"`

	RecommendedDailyCalories int `json:"recommended_daily_calories"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}
