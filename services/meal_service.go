package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/paolosvp/eatcount/cache"
	"github.com/paolosvp/eatcount/config"
	"github.com/paolosvp/eatcount/models"
	"github.com/paolosvp/eatcount/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MealService struct {
	logger *zap.Logger
}

func NewMealService(logger *zap.Logger) *MealService {
	return &MealService{logger: logger}
}

type MealItemInput struct {
	Name          string  `json:"name" binding:"required"`
	QuantityUnits string  `json:"quantity_units"`
	Calories      float64 `json:"calories" binding:"min=0"`
	Confidence    float64 `json:"confidence" binding:"min=0,max=1"`
}

type MealStats struct {
	CurrentStreakDays int `json:"current_streak_days"`
	BestStreakDays    int `json:"best_streak_days"`
}

// AddMeal persists a new meal. When capturedAt is supplied it must be RFC3339
// with an explicit offset; its UTC instant becomes the authoritative AteAt
// and the verbatim string is kept for display only. Otherwise AteAt is now.
func (s *MealService) AddMeal(
	userID uint,
	totalCalories float64,
	items []MealItemInput,
	notes, imageBase64, capturedAt string,
) (*models.Meal, error) {
	if totalCalories < 0 {
		return nil, fmt.Errorf("%w: total_calories must be >= 0", ErrValidation)
	}

	ateAt := time.Now().UTC()
	displayLocal := ""
	if capturedAt != "" {
		t, err := utils.ParseCapturedAt(capturedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		ateAt = t
		displayLocal = capturedAt
	}

	meal := &models.Meal{
		UID:           uuid.NewString(),
		UserID:        userID,
		TotalCalories: totalCalories,
		Notes:         notes,
		AteAt:         ateAt,
		DisplayLocal:  displayLocal,
	}

	if imageBase64 != "" {
		if utils.S3Enabled() {
			url, err := utils.UploadMealImage(imageBase64, "", fmt.Sprintf("u%d", userID))
			if err != nil {
				s.logger.Warn("meal_image_upload_failed", zap.Error(err))
				meal.ImageBase64 = imageBase64
			} else {
				meal.ImageURL = url
			}
		} else {
			meal.ImageBase64 = imageBase64
		}
	}

	for _, it := range items {
		meal.Items = append(meal.Items, models.MealItem{
			Name:          it.Name,
			QuantityUnits: it.QuantityUnits,
			Calories:      it.Calories,
			Confidence:    it.Confidence,
		})
	}

	if err := config.DB.Create(meal).Error; err != nil {
		return nil, err
	}

	s.invalidateStats(userID)
	return meal, nil
}

// ListMealsByDay returns the owner's meals whose AteAt falls inside the local
// calendar day, most recent first, plus the daily total. The total is always
// the sum over exactly the returned set, never a cached counter.
func (s *MealService) ListMealsByDay(userID uint, date string, tzOffsetMinutes int) ([]models.Meal, float64, error) {
	start, end, err := utils.DayWindow(date, tzOffsetMinutes)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var meals []models.Meal
	if err := config.DB.
		Preload("Items").
		Where("user_id = ? AND ate_at >= ? AND ate_at < ?", userID, start, end).
		Order("ate_at DESC").
		Find(&meals).Error; err != nil {
		return nil, 0, err
	}

	var total float64
	for _, m := range meals {
		total += m.TotalCalories
	}
	return meals, total, nil
}

// DeleteMeal removes a meal if and only if it belongs to userID. A missing
// id and someone else's id both come back as ErrNotFound.
func (s *MealService) DeleteMeal(userID uint, mealUID string) error {
	var meal models.Meal
	if err := config.DB.
		Where("uid = ? AND user_id = ?", mealUID, userID).
		First(&meal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := config.DB.Where("meal_id = ?", meal.ID).Delete(&models.MealItem{}).Error; err != nil {
		return err
	}
	if err := config.DB.Delete(&meal).Error; err != nil {
		return err
	}

	s.invalidateStats(userID)
	return nil
}

// Stats computes the consecutive-day streaks over the user's full history,
// bucketing meals into local calendar days under the supplied offset.
func (s *MealService) Stats(userID uint, tzOffsetMinutes int) (*MealStats, error) {
	if tzOffsetMinutes < -utils.MaxOffsetMinutes || tzOffsetMinutes > utils.MaxOffsetMinutes {
		return nil, fmt.Errorf("%w: %v", ErrValidation, utils.ErrBadOffset)
	}

	cacheKey := fmt.Sprintf("meal_stats:%d:%d", userID, tzOffsetMinutes)
	var cached MealStats
	if err := cache.Get(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var ateAts []time.Time
	if err := config.DB.Model(&models.Meal{}).
		Where("user_id = ?", userID).
		Order("ate_at ASC").
		Pluck("ate_at", &ateAts).Error; err != nil {
		return nil, err
	}

	daySet := make(map[string]struct{}, len(ateAts))
	for _, t := range ateAts {
		daySet[utils.LocalDay(t, tzOffsetMinutes)] = struct{}{}
	}

	today := utils.LocalDay(time.Now().UTC(), tzOffsetMinutes)
	current, best := Streaks(daySet, today)
	stats := &MealStats{CurrentStreakDays: current, BestStreakDays: best}

	if err := cache.Set(cacheKey, stats, 5*time.Minute); err != nil && !errors.Is(err, cache.ErrUnavailable) {
		s.logger.Warn("stats_cache_set_failed", zap.Error(err))
	}
	return stats, nil
}

func (s *MealService) invalidateStats(userID uint) {
	if err := cache.DeletePattern(fmt.Sprintf("meal_stats:%d:*", userID)); err != nil {
		s.logger.Warn("stats_cache_invalidate_failed", zap.Error(err))
	}
}

// Streaks computes (current, best) consecutive-day runs over the set of
// local calendar days having at least one meal.
//
// The current streak is the run ending at today, or at yesterday when today
// has no meal yet: a streak survives until a full day has actually been
// missed. Any earlier gap breaks continuity, so days before a gap never
// count toward the current streak.
func Streaks(daySet map[string]struct{}, today string) (current, best int) {
	if len(daySet) == 0 {
		return 0, 0
	}

	days := make([]time.Time, 0, len(daySet))
	for d := range daySet {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 0
	for i, d := range days {
		if i > 0 && d.Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}

	todayT, err := time.Parse("2006-01-02", today)
	if err != nil {
		return 0, best
	}

	anchor := todayT
	if _, ok := daySet[anchor.Format("2006-01-02")]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
		if _, ok := daySet[anchor.Format("2006-01-02")]; !ok {
			return 0, best
		}
	}
	for {
		if _, ok := daySet[anchor.Format("2006-01-02")]; !ok {
			break
		}
		current++
		anchor = anchor.AddDate(0, 0, -1)
	}
	return current, best
}
