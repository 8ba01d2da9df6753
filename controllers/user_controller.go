package controllers

import (
	"errors"
	"net/http"

	"github.com/paolosvp/eatcount/models"
	"github.com/paolosvp/eatcount/services"

	"github.com/gin-gonic/gin"
)

func profileResponse(user *models.User) gin.H {
	return gin.H{
		"id":      user.ID,
		"email":   user.Email,
		"profile": user.Profile,
	}
}

func GetProfile(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	user, err := services.GetUserWithProfile(userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profileResponse(user))
}

func UpdateProfile(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input services.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := services.UpsertProfile(userID, input)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, profileResponse(user))
}
