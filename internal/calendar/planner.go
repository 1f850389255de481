package calendar

import (
	"context"
	"fmt"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/logger"
	"github.com/julianstephens/mealplanner/internal/models"
)

// Store persists calendar slots. api.CalendarClient implements it.
type Store interface {
	WeeklyCalendar(ctx context.Context) ([]models.CalendarRow, error)
	SaveSlot(ctx context.Context, a models.SlotAssignment) error
}

// Planner owns the local weekly grid and keeps it in step with the store.
// It is not safe for concurrent use; the TUI only touches it from Update.
type Planner struct {
	store Store
	week  Week
}

// NewPlanner returns a planner with an empty grid backed by store.
func NewPlanner(store Store) *Planner {
	return &Planner{store: store}
}

// Week returns a copy of the current grid.
func (p *Planner) Week() Week {
	return p.week
}

// Load replaces the grid with the store's rows. Rows outside the grid are
// skipped. On error the grid is left empty.
func (p *Planner) Load(ctx context.Context) error {
	w, err := p.Fetch(ctx)
	p.SetWeek(w)
	return err
}

// Fetch reads the store's rows into a new grid without touching the
// planner's own. The TUI runs it off the event loop and applies the
// result with SetWeek.
func (p *Planner) Fetch(ctx context.Context) (Week, error) {
	rows, err := p.store.WeeklyCalendar(ctx)
	if err != nil {
		logger.Error("Failed to load weekly calendar", "error", err)
		return Week{}, fmt.Errorf("load weekly calendar: %w", err)
	}
	w := BuildWeek(rows)
	logger.Debug("Loaded weekly calendar", "rows", len(rows), "filled", w.Filled())
	return w, nil
}

// SetWeek replaces the grid.
func (p *Planner) SetWeek(w Week) {
	p.week = w
}

// BuildWeek partitions remote rows into a grid. A row without a recipe
// leaves its cell empty. When rows repeat a (day, slot) the first one wins.
func BuildWeek(rows []models.CalendarRow) Week {
	var (
		w    Week
		seen [constants.DaysPerWeek][constants.SlotsPerDay]bool
	)
	for _, row := range rows {
		day, slot := Day(row.DayOfWeek), SlotNumber(row.SlotID)
		if !day.Valid() || !slot.Valid() {
			logger.Warn("Skipping calendar row outside the week grid", "id", row.ID, "day", row.DayOfWeek, "slot", row.SlotID)
			continue
		}
		if seen[day][slot-1] {
			logger.Debug("Skipping duplicate calendar row", "id", row.ID, "day", day, "slot", slot)
			continue
		}
		seen[day][slot-1] = true
		if row.Recipe == nil {
			w.Set(day, slot, Cell{})
			continue
		}
		w.Set(day, slot, Filled(row.Recipe.Recipe()))
	}
	return w
}

// Assign stores recipe in (day, slot) and updates the grid once the store
// accepts it. On failure the grid is unchanged.
func (p *Planner) Assign(ctx context.Context, day Day, slot SlotNumber, recipe models.Recipe) error {
	if err := p.Save(ctx, day, slot, recipe); err != nil {
		return err
	}
	p.Place(day, slot, recipe)
	return nil
}

// Save sends the assignment to the store without touching the grid.
func (p *Planner) Save(ctx context.Context, day Day, slot SlotNumber, recipe models.Recipe) error {
	if !day.Valid() {
		return fmt.Errorf("invalid day %d", int(day))
	}
	if !slot.Valid() {
		return fmt.Errorf("invalid slot %d", int(slot))
	}

	payload := models.NewSlotAssignment(int(day), int(slot), recipe)
	if err := p.store.SaveSlot(ctx, payload); err != nil {
		logger.Error("Failed to save calendar slot", "day", day.String(), "slot", int(slot), "error", err)
		return fmt.Errorf("save %s slot %d: %w", day, slot, err)
	}
	logger.Info("Assigned recipe to calendar slot", "day", day.String(), "slot", int(slot), "recipe", recipe.Name)
	return nil
}

// Place sets (day, slot) in the local grid after a successful Save.
func (p *Planner) Place(day Day, slot SlotNumber, recipe models.Recipe) {
	p.week.Set(day, slot, Filled(recipe))
}
