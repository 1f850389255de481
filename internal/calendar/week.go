package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/mealplanner/internal/constants"
	"github.com/julianstephens/mealplanner/internal/models"
)

// Day is a day of the week, Sunday=0 through Saturday=6.
type Day int

const (
	Sunday Day = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// Valid reports whether d is one of the seven days.
func (d Day) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// String returns the day's name.
func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return constants.DayNames[d]
}

// ParseDay accepts a full day name, a three letter abbreviation or a
// number from 0 to 6.
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		d := Day(n)
		if !d.Valid() {
			return 0, fmt.Errorf("day must be between 0 and 6, got %d", n)
		}
		return d, nil
	}
	lower := strings.ToLower(s)
	for i, name := range constants.DayNames {
		name = strings.ToLower(name)
		if lower == name || (len(lower) == 3 && strings.HasPrefix(name, lower)) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}

// SlotNumber identifies a meal slot within a day, 1 through 3.
type SlotNumber int

// Valid reports whether s is within 1 and the number of slots per day.
func (s SlotNumber) Valid() bool {
	return s >= 1 && int(s) <= constants.SlotsPerDay
}

// ParseSlot parses a slot number from user input.
func ParseSlot(s string) (SlotNumber, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid slot %q", s)
	}
	slot := SlotNumber(n)
	if !slot.Valid() {
		return 0, fmt.Errorf("slot must be between 1 and %d, got %d", constants.SlotsPerDay, n)
	}
	return slot, nil
}

// Cell is one slot of the grid. The zero value is empty.
type Cell struct {
	recipe *models.Recipe
}

// Filled returns a cell holding a copy of r.
func Filled(r models.Recipe) Cell {
	return Cell{recipe: &r}
}

// Empty reports whether the cell has no recipe.
func (c Cell) Empty() bool {
	return c.recipe == nil
}

// Recipe returns the assigned recipe and whether there is one.
func (c Cell) Recipe() (models.Recipe, bool) {
	if c.recipe == nil {
		return models.Recipe{}, false
	}
	return *c.recipe, true
}

// Week is the fixed weekly grid. Every day always has all of its slots.
type Week [constants.DaysPerWeek][constants.SlotsPerDay]Cell

// Cell returns the cell at (day, slot). Out of range coordinates yield an
// empty cell.
func (w *Week) Cell(day Day, slot SlotNumber) Cell {
	if !day.Valid() || !slot.Valid() {
		return Cell{}
	}
	return w[day][slot-1]
}

// Set replaces the cell at (day, slot). It reports false for out of range
// coordinates.
func (w *Week) Set(day Day, slot SlotNumber, c Cell) bool {
	if !day.Valid() || !slot.Valid() {
		return false
	}
	w[day][slot-1] = c
	return true
}

// Filled counts the non-empty cells.
func (w *Week) Filled() int {
	n := 0
	for d := range w {
		for s := range w[d] {
			if !w[d][s].Empty() {
				n++
			}
		}
	}
	return n
}
