package sandbox

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/models"
	"github.com/julianstephens/mealplanner/internal/storage"
)

func (s *Server) weeklyCalendar(c *gin.Context) {
	ctx := c.Request.Context()
	slots, err := s.store.ListCalendarSlots(ctx, userID(c))
	if err != nil {
		logger.Error("Failed to list calendar slots", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	rows := make([]models.CalendarRow, 0, len(slots))
	for _, slot := range slots {
		row := models.CalendarRow{
			ID:        slot.ID,
			DayOfWeek: slot.DayOfWeek,
			SlotID:    slot.SlotID,
			RecipeID:  models.ID(slot.RecipeID),
		}
		if r, err := s.store.GetRecipe(ctx, slot.RecipeID); err == nil {
			row.Recipe = &models.CalendarRecipe{
				ID:           r.ID,
				Name:         r.Name,
				Ingredients:  r.Ingredients,
				ImageURL:     r.ImageURL,
				Instructions: r.Instructions,
			}
		}
		rows = append(rows, row)
	}
	c.JSON(http.StatusOK, rows)
}

// saveCalendarSlot upserts by (user, day, slot). A recipe missing from the
// catalog is stored from the payload's denormalized copy.
func (s *Server) saveCalendarSlot(c *gin.Context) {
	var a models.SlotAssignment
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidBody})
		return
	}
	if a.DayOfWeek < 0 || a.DayOfWeek >= constants.DaysPerWeek {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dayOfWeek must be between 0 and 6"})
		return
	}
	if a.SlotID < 1 || a.SlotID > constants.SlotsPerDay {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slotId must be between 1 and 3"})
		return
	}

	ctx := c.Request.Context()
	recipeID := strings.TrimSpace(string(a.RecipeID))
	if recipeID == "" {
		recipeID = strings.TrimSpace(string(a.Recipe.ID))
	}
	if recipeID == "" && strings.TrimSpace(a.Recipe.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe is required"})
		return
	}

	_, err := s.store.GetRecipe(ctx, recipeID)
	if recipeID == "" || errors.Is(err, storage.ErrNotFound) {
		if recipeID == "" {
			recipeID = uuid.NewString()
		}
		err = s.store.UpsertRecipe(ctx, models.Recipe{
			ID:           models.ID(recipeID),
			Name:         a.Recipe.Name,
			Ingredients:  a.Recipe.Ingredients,
			Instructions: a.Recipe.Instructions,
		})
	}
	if err != nil {
		logger.Error("Failed to resolve calendar recipe", "recipe", recipeID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}

	slot, err := s.store.UpsertCalendarSlot(ctx, storage.CalendarSlot{
		UserID:    userID(c),
		DayOfWeek: a.DayOfWeek,
		SlotID:    a.SlotID,
		RecipeID:  recipeID,
	})
	if err != nil {
		logger.Error("Failed to save calendar slot", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": slot.ID, "dayOfWeek": slot.DayOfWeek, "slotId": slot.SlotID, "recipeId": slot.RecipeID})
}
