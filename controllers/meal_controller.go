package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/paolosvp/eatcount/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MealController struct {
	meals  *services.MealService
	logger *zap.Logger
}

func NewMealController(meals *services.MealService, logger *zap.Logger) *MealController {
	return &MealController{meals: meals, logger: logger}
}

type CreateMealInput struct {
	TotalCalories float64                  `json:"total_calories" binding:"min=0"`
	Items         []services.MealItemInput `json:"items" binding:"required,dive"`
	Notes         string                   `json:"notes"`
	ImageBase64   string                   `json:"image_base64"`
	CapturedAt    string                   `json:"captured_at"`
}

func (mc *MealController) CreateMeal(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CreateMealInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := mc.meals.AddMeal(userID, input.TotalCalories, input.Items, input.Notes, input.ImageBase64, input.CapturedAt)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mc.logger.Error("meal_create_failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, meal)
}

type ListMealsQuery struct {
	Date            string `form:"date" binding:"required,calendardate"`
	TzOffsetMinutes int    `form:"tz_offset_minutes" binding:"min=-840,max=840"`
}

func (mc *MealController) ListMeals(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var q ListMealsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meals, dailyTotal, err := mc.meals.ListMealsByDay(userID, q.Date, q.TzOffsetMinutes)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mc.logger.Error("meal_list_failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"date":        q.Date,
		"meals":       meals,
		"daily_total": dailyTotal,
	})
}

func (mc *MealController) DeleteMeal(c *gin.Context) {
	userID := c.MustGet("userID").(uint)
	mealID := c.Param("id")

	if err := mc.meals.DeleteMeal(userID, mealID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "meal not found"})
			return
		}
		mc.logger.Error("meal_delete_failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (mc *MealController) GetMealStats(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	offset := 0
	if v := c.Query("tz_offset_minutes"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tz_offset_minutes must be an integer"})
			return
		}
		offset = parsed
	}

	stats, err := mc.meals.Stats(userID, offset)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		mc.logger.Error("meal_stats_failed", zap.Uint("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
