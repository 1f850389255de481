package api

import (
	"context"
	"net/http"

	"github.com/julianstephens/mealplanner/internal/models"
)

// CalendarClient reads and writes weekly calendar slots. A bearer token is
// attached when a valid session exists but is not required.
type CalendarClient struct {
	c *Client
}

// WeeklyCalendar returns every persisted slot row.
func (cc *CalendarClient) WeeklyCalendar(ctx context.Context) ([]models.CalendarRow, error) {
	var rows []models.CalendarRow
	if err := cc.c.do(ctx, "load calendar", http.MethodGet, "/WeeklyCalendar", authOptional, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// SaveSlot persists one slot assignment. Any 2xx response is success.
func (cc *CalendarClient) SaveSlot(ctx context.Context, a models.SlotAssignment) error {
	return cc.c.do(ctx, "save calendar slot", http.MethodPost, "/WeeklyCalendar", authOptional, a, nil)
}
