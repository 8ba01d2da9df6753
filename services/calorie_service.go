package services

import (
	"fmt"
	"math"
)

// Activity multipliers for the Mifflin-St Jeor TDEE, strictly increasing
// from sedentary to extra.
var activityFactors = map[string]float64{
	"sedentary": 1.2,
	"light":     1.375,
	"moderate":  1.55,
	"very":      1.725,
	"extra":     1.9,
}

// kcal/day added to (gain) or removed from (lose) the maintenance target.
var goalAdjust = map[string]map[string]float64{
	"lose":     {"mild": -250, "moderate": -500, "aggressive": -750},
	"maintain": {"mild": 0, "moderate": 0, "aggressive": 0},
	"gain":     {"mild": 250, "moderate": 400, "aggressive": 600},
}

// Sex offsets for the Mifflin-St Jeor BMR. "other" uses the average of the
// male and female constants.
var genderOffset = map[string]float64{
	"male":   5,
	"female": -161,
	"other":  -78,
}

// Targets below this are clamped; prolonged intake under ~1200 kcal/day is
// not safe to recommend.
const minDailyCalories = 1200

// ComputeDailyCalories returns the recommended daily calorie target for a
// validated profile. Deterministic: same inputs always give the same output.
func ComputeDailyCalories(heightCm, weightKg float64, age int, gender, activityLevel, goal, goalIntensity string) (int, error) {
	if heightCm <= 0 || heightCm > 272 {
		return 0, fmt.Errorf("%w: height_cm out of range", ErrValidation)
	}
	if weightKg <= 0 || weightKg > 500 {
		return 0, fmt.Errorf("%w: weight_kg out of range", ErrValidation)
	}
	if age < 1 || age > 120 {
		return 0, fmt.Errorf("%w: age out of range", ErrValidation)
	}

	offset, ok := genderOffset[gender]
	if !ok {
		return 0, fmt.Errorf("%w: unknown gender %q", ErrValidation, gender)
	}
	factor, ok := activityFactors[activityLevel]
	if !ok {
		return 0, fmt.Errorf("%w: unknown activity_level %q", ErrValidation, activityLevel)
	}
	adjustments, ok := goalAdjust[goal]
	if !ok {
		return 0, fmt.Errorf("%w: unknown goal %q", ErrValidation, goal)
	}
	adjust, ok := adjustments[goalIntensity]
	if !ok {
		return 0, fmt.Errorf("%w: unknown goal_intensity %q", ErrValidation, goalIntensity)
	}

	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age) + offset
	tdee := bmr * factor

	target := int(math.Round(tdee + adjust))
	if target < minDailyCalories {
		target = minDailyCalories
	}
	return target, nil
}
