package services

import (
	"errors"
	"testing"
)

func TestComputeDailyCalories(t *testing.T) {
	tests := []struct {
		name                   string
		heightCm, weightKg     float64
		age                    int
		gender, activity       string
		goal, intensity        string
		want                   int
	}{
		{
			// BMR 1441.5, TDEE 2234.325, minus 500
			name:   "female moderate lose",
			heightCm: 170, weightKg: 68, age: 28,
			gender: "female", activity: "moderate",
			goal: "lose", intensity: "moderate",
			want: 1734,
		},
		{
			// Same inputs but male: BMR 1607.5, TDEE 2491.625, minus 500
			name:   "male moderate lose",
			heightCm: 170, weightKg: 68, age: 28,
			gender: "male", activity: "moderate",
			goal: "lose", intensity: "moderate",
			want: 1992,
		},
		{
			// "other" uses the averaged sex offset of -78
			name:   "other moderate lose",
			heightCm: 170, weightKg: 68, age: 28,
			gender: "other", activity: "moderate",
			goal: "lose", intensity: "moderate",
			want: 1863,
		},
		{
			name:   "maintain ignores intensity",
			heightCm: 180, weightKg: 82, age: 30,
			gender: "male", activity: "sedentary",
			goal: "maintain", intensity: "aggressive",
			want: 2160, // BMR 1800 * 1.2
		},
		{
			name:   "gain aggressive adds 600",
			heightCm: 180, weightKg: 82, age: 30,
			gender: "male", activity: "extra",
			goal: "gain", intensity: "aggressive",
			want: 4020, // BMR 1800 * 1.9 + 600
		},
		{
			name:   "floor clamps tiny results to 1200",
			heightCm: 150, weightKg: 45, age: 80,
			gender: "female", activity: "sedentary",
			goal: "lose", intensity: "aggressive",
			want: 1200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeDailyCalories(tt.heightCm, tt.weightKg, tt.age, tt.gender, tt.activity, tt.goal, tt.intensity)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestComputeDailyCaloriesDeterministic(t *testing.T) {
	first, err := ComputeDailyCalories(170, 68, 28, "female", "moderate", "lose", "moderate")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := ComputeDailyCalories(170, 68, 28, "female", "moderate", "lose", "moderate")
		if err != nil {
			t.Fatal(err)
		}
		if again != first {
			t.Fatalf("run %d: got %d, want %d", i, again, first)
		}
	}
}

func TestComputeDailyCaloriesMaleAboveFemale(t *testing.T) {
	male, _ := ComputeDailyCalories(175, 75, 35, "male", "light", "maintain", "moderate")
	female, _ := ComputeDailyCalories(175, 75, 35, "female", "light", "maintain", "moderate")
	other, _ := ComputeDailyCalories(175, 75, 35, "other", "light", "maintain", "moderate")

	if male <= female {
		t.Errorf("male target %d should exceed female %d", male, female)
	}
	if other <= female || other >= male {
		t.Errorf("other target %d should sit between female %d and male %d", other, female, male)
	}
}

func TestComputeDailyCaloriesValidation(t *testing.T) {
	tests := []struct {
		name               string
		heightCm, weightKg float64
		age                int
		gender, activity   string
		goal, intensity    string
	}{
		{"zero height", 0, 68, 28, "female", "moderate", "lose", "moderate"},
		{"negative weight", 170, -1, 28, "female", "moderate", "lose", "moderate"},
		{"zero age", 170, 68, 0, "female", "moderate", "lose", "moderate"},
		{"age too high", 170, 68, 121, "female", "moderate", "lose", "moderate"},
		{"implausible height", 300, 68, 28, "female", "moderate", "lose", "moderate"},
		{"unknown gender", 170, 68, 28, "unknown", "moderate", "lose", "moderate"},
		{"unknown activity", 170, 68, 28, "female", "couch", "lose", "moderate"},
		{"unknown goal", 170, 68, 28, "female", "moderate", "bulk", "moderate"},
		{"unknown intensity", 170, 68, 28, "female", "moderate", "lose", "extreme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeDailyCalories(tt.heightCm, tt.weightKg, tt.age, tt.gender, tt.activity, tt.goal, tt.intensity)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("want ErrValidation, got %v", err)
			}
		})
	}
}
