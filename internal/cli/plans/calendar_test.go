package plans

import (
	"strings"
	"testing"

	"github.com/julianstephens/mealplanner/internal/cli/clitest"
	"github.com/julianstephens/mealplanner/internal/models"
)

func TestAssignThenShow(t *testing.T) {
	env := clitest.New(t)
	env.Login(t, 2)

	assign := &CalendarAssignCmd{Day: "mon", Slot: "1", Ingredients: []string{"egg"}, Recipe: "omelette"}
	if err := assign.Run(env.Ctx); err != nil {
		t.Fatalf("assign failed: %v", err)
	}
	if !strings.Contains(env.Out.String(), "✓ Monday slot 1: Omelette") {
		t.Errorf("assign output = %q", env.Out.String())
	}

	env.Out.Reset()
	if err := (&CalendarShowCmd{Day: "Monday"}).Run(env.Ctx); err != nil {
		t.Fatalf("show failed: %v", err)
	}
	out := env.Out.String()
	for _, want := range []string{"Monday:", "  1. Omelette", "  2. (empty)", "1 of 21 slots planned"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Sunday:") {
		t.Errorf("show printed other days:\n%s", out)
	}
}

func TestAssignRejectsBadInput(t *testing.T) {
	env := clitest.New(t)
	env.Login(t, 2)

	tests := []struct {
		name string
		cmd  CalendarAssignCmd
		want string
	}{
		{"bad day", CalendarAssignCmd{Day: "someday", Slot: "1", Ingredients: []string{"egg"}}, "day"},
		{"bad slot", CalendarAssignCmd{Day: "0", Slot: "4", Ingredients: []string{"egg"}}, "slot must be between 1 and 3"},
		{"no results", CalendarAssignCmd{Day: "0", Slot: "1", Ingredients: []string{"unobtainium"}}, "no recipes found"},
		{"unknown recipe", CalendarAssignCmd{Day: "0", Slot: "1", Ingredients: []string{"egg"}, Recipe: "Lasagne"}, "not among the first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cmd.Run(env.Ctx)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestPick(t *testing.T) {
	recipes := []models.Recipe{
		{ID: "r2", Name: "Pancakes"},
		{ID: "r3", Name: "Omelette"},
	}

	tests := []struct {
		want     string
		expected string
	}{
		{"", "Pancakes"},
		{"r3", "Omelette"},
		{" OMELETTE ", "Omelette"},
	}
	for _, tt := range tests {
		got, err := pick(recipes, tt.want)
		if err != nil {
			t.Errorf("pick(%q) failed: %v", tt.want, err)
			continue
		}
		if got.Name != tt.expected {
			t.Errorf("pick(%q) = %s, want %s", tt.want, got.Name, tt.expected)
		}
	}

	if _, err := pick(nil, ""); err == nil {
		t.Error("expected an error for no results")
	}
}
