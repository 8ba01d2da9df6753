package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paolosvp/eatcount/config"
	"github.com/paolosvp/eatcount/models"
	"github.com/paolosvp/eatcount/utils"

	"gorm.io/gorm"
)

// RegisterUser creates an account and returns a fresh access token. Emails
// are case-normalized before the uniqueness check.
func RegisterUser(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.User
	err := config.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return "", ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return "", err
	}

	user := models.User{Email: email, PasswordHash: hashed}
	if err := config.DB.Create(&user).Error; err != nil {
		return "", err
	}

	return utils.GenerateJWT(user.ID, user.Email)
}

// AuthenticateUser verifies credentials and returns an access token. Unknown
// email and wrong password are indistinguishable to the caller.
func AuthenticateUser(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return "", ErrBadCredentials
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return "", ErrBadCredentials
	}

	return utils.GenerateJWT(user.ID, user.Email)
}

func GetUserWithProfile(userID uint) (*models.User, error) {
	var user models.User
	if err := config.DB.Preload("Profile").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

type ProfileInput struct {
	HeightCm      float64  `json:"height_cm" binding:"required,gt=0"`
	WeightKg      float64  `json:"weight_kg" binding:"required,gt=0"`
	Age           int      `json:"age" binding:"required,gt=0"`
	Gender        string   `json:"gender" binding:"required,oneof=male female other"`
	ActivityLevel string   `json:"activity_level" binding:"required,oneof=sedentary light moderate very extra"`
	Goal          string   `json:"goal" binding:"required,oneof=lose maintain gain"`
	GoalIntensity string   `json:"goal_intensity" binding:"omitempty,oneof=mild moderate aggressive"`
	GoalWeightKg  *float64 `json:"goal_weight_kg" binding:"omitempty,gt=0"`
}

// UpsertProfile saves the user's profile with a freshly recomputed daily
// calorie target. The target is derived inside the same save, so it can
// never drift from the fields it was computed from.
func UpsertProfile(userID uint, input ProfileInput) (*models.User, error) {
	if input.GoalIntensity == "" {
		input.GoalIntensity = "moderate"
	}

	target, err := ComputeDailyCalories(
		input.HeightCm, input.WeightKg, input.Age,
		input.Gender, input.ActivityLevel, input.Goal, input.GoalIntensity,
	)
	if err != nil {
		return nil, err
	}

	var profile models.Profile
	err = config.DB.Where("user_id = ?", userID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	profile.UserID = userID
	profile.HeightCm = input.HeightCm
	profile.WeightKg = input.WeightKg
	profile.Age = input.Age
	profile.Gender = input.Gender
	profile.ActivityLevel = input.ActivityLevel
	profile.Goal = input.Goal
	profile.GoalIntensity = input.GoalIntensity
	profile.GoalWeightKg = input.GoalWeightKg
	profile.RecommendedDailyCalories = target

	if err := config.DB.Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	return GetUserWithProfile(userID)
}
