package routes

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/paolosvp/eatcount/config"
	"github.com/paolosvp/eatcount/controllers"
	"github.com/paolosvp/eatcount/middlewares"
	"github.com/paolosvp/eatcount/services"
	"github.com/paolosvp/eatcount/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("calendardate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("2006-01-02", fl.Field().String())
			return err == nil
		})
	}
}

func corsOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" || raw == "*" {
		return nil
	}
	return strings.Split(raw, ",")
}

func SetupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidations()

	r := gin.New()
	r.Use(middlewares.Recovery())
	r.Use(middlewares.RequestLogger())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if origins := corsOrigins(); origins != nil {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	estimator := services.NewEstimationService(utils.Logger)
	mealSvc := services.NewMealService(utils.Logger)

	estimateCtl := controllers.NewEstimateController(estimator, utils.Logger)
	mealCtl := controllers.NewMealController(mealSvc, utils.Logger)

	api := r.Group("/api")
	{
		api.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Calorie Counter API running"})
		})
		api.GET("/health", func(c *gin.Context) {
			dbOK := false
			if sqlDB, err := config.DB.DB(); err == nil {
				dbOK = sqlDB.Ping() == nil
			}
			c.JSON(http.StatusOK, gin.H{
				"status":            "ok",
				"db":                dbOK,
				"model":             estimator.Model(),
				"llm_key_available": estimator.ServerKeyAvailable(),
				"time":              time.Now().UTC().Format(time.RFC3339),
			})
		})

		auth := api.Group("/auth")
		{
			auth.POST("/register", controllers.Register)
			auth.POST("/login", controllers.Login)
		}

		// Estimation works with or without a token; it never touches the
		// ledger, callers persist results separately via POST /meals.
		api.POST("/ai/estimate-calories", estimateCtl.EstimateCalories)

		protected := api.Group("")
		protected.Use(middlewares.AuthMiddleware())
		{
			protected.GET("/profile/me", controllers.GetProfile)
			protected.PUT("/profile", controllers.UpdateProfile)

			protected.POST("/meals", mealCtl.CreateMeal)
			protected.GET("/meals", mealCtl.ListMeals)
			protected.GET("/meals/stats", mealCtl.GetMealStats)
			protected.DELETE("/meals/:id", mealCtl.DeleteMeal)
		}
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}
