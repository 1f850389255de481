package validation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/julianstephens/mealplanner/internal/models"
)

// Messages shown to the user when a form fails validation.
const (
	MsgAllFieldsRequired   = "All fields are required."
	MsgFamilySizePositive  = "Family size must be a positive number."
	MsgIngredientFields    = "Please fill in all fields before adding an ingredient."
	MsgEmailRequired       = "Email is required."
	MsgEmailInvalid        = "Please enter a valid email."
	MsgPasswordRequired    = "Password is required."
	MsgQuantityPositive    = "Quantity must be a positive number."
	MsgIngredientsRequired = "Add at least one ingredient."
)

var emailPattern = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// Error is a form validation failure. Its message is shown verbatim and
// the form is never submitted.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return "validation failed on " + e.Field + ": " + e.Message
}

// UserMessage returns the text to display next to the form.
func (e *Error) UserMessage() string {
	return e.Message
}

func fail(field, msg string) *Error {
	return &Error{Field: field, Message: msg}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidateRegister checks the registration form. All text fields are
// required and the family size must be positive.
func ValidateRegister(req models.RegisterRequest) error {
	if blank(req.Username) || blank(req.Email) || blank(req.Password) || blank(req.SecretQuestion) || blank(req.Answer) {
		return fail("", MsgAllFieldsRequired)
	}
	if req.FamilySize <= 0 {
		return fail("familySize", MsgFamilySizePositive)
	}
	return nil
}

// ValidateLogin checks the login form.
func ValidateLogin(req models.LoginRequest) error {
	if err := ValidateEmail(req.Email); err != nil {
		return err
	}
	if blank(req.Password) {
		return fail("password", MsgPasswordRequired)
	}
	return nil
}

// ValidateEmail checks that s is present and looks like an address.
func ValidateEmail(s string) error {
	if blank(s) {
		return fail("email", MsgEmailRequired)
	}
	if !emailPattern.MatchString(strings.TrimSpace(s)) {
		return fail("email", MsgEmailInvalid)
	}
	return nil
}

// ValidateForgotPassword checks the password reset form.
func ValidateForgotPassword(req models.ForgotPasswordRequest) error {
	if blank(req.Email) || blank(req.NewPassword) || blank(req.SecretQuestion) || blank(req.Answer) {
		return fail("", MsgAllFieldsRequired)
	}
	return nil
}

// ValidateIngredient checks an ingredient before it is sent to the store.
func ValidateIngredient(ing models.Ingredient) error {
	if blank(ing.Name) || blank(ing.Measurement) || ing.Quantity <= 0 {
		return fail("", MsgIngredientFields)
	}
	return nil
}

// ParseQuantity parses a quantity field from a form.
func ParseQuantity(s string) (float64, error) {
	if blank(s) {
		return 0, fail("quantity", MsgIngredientFields)
	}
	q, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || q <= 0 {
		return 0, fail("quantity", MsgQuantityPositive)
	}
	return q, nil
}

// ParseFamilySize parses and checks a family size field from a form.
func ParseFamilySize(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fail("familySize", MsgFamilySizePositive)
	}
	return n, nil
}

// ValidateFamilySize checks a family size field without keeping the value.
func ValidateFamilySize(s string) error {
	_, err := ParseFamilySize(s)
	return err
}

// NormalizeIngredients trims names and drops blanks, keeping order.
func NormalizeIngredients(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
