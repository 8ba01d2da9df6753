package controllers

import (
	"errors"
	"net/http"

	"github.com/paolosvp/eatcount/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type EstimateController struct {
	estimator *services.EstimationService
	logger    *zap.Logger
}

func NewEstimateController(estimator *services.EstimationService, logger *zap.Logger) *EstimateController {
	return &EstimateController{estimator: estimator, logger: logger}
}

func (ec *EstimateController) EstimateCalories(c *gin.Context) {
	var req services.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	est, err := ec.estimator.Estimate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Reached only on the caller-key path, which never downgrades.
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, est)
}
