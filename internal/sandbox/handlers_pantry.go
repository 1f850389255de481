package sandbox

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/validation"
)

func (s *Server) familySize(c *gin.Context) {
	u, err := s.store.GetUser(c.Request.Context(), userID(c))
	if err != nil {
		logger.Warn("Family size lookup failed", "user", userID(c), "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u.FamilySize)
}

func (s *Server) listIngredients(c *gin.Context) {
	ings, err := s.store.ListIngredients(c.Request.Context(), userID(c))
	if err != nil {
		logger.Error("Failed to list ingredients", "user", userID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, ings)
}

func (s *Server) createIngredient(c *gin.Context) {
	var ing models.Ingredient
	if err := c.ShouldBindJSON(&ing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	ing.Name = strings.TrimSpace(ing.Name)
	ing.Measurement = strings.TrimSpace(ing.Measurement)
	if err := validation.ValidateIngredient(ing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": userMessage(err)})
		return
	}

	created, err := s.store.AddIngredient(c.Request.Context(), userID(c), ing)
	if err != nil {
		logger.Error("Failed to add ingredient", "user", userID(c), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusCreated, created)
}
