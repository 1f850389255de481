package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName            = "mealplanner"
	Version            = "v0.1.0"
	DefaultConfigDir   = "~/.config/mealplanner"
	DefaultAPIURL      = "http://localhost:5000/api"
	DefaultHTTPTimeout = 15 * time.Second
	EnvPrefix          = "MEALPLANNER_"

	// Keyring entries
	KeyringTokenUser    = "token"
	KeyringUsernameUser = "username"
	SessionFileName     = "session.json"

	// Roles sent with recipe queries
	RoleUser      = "user"
	RoleAnonymous = "anonymous"

	// Calendar shape
	DaysPerWeek = 7
	SlotsPerDay = 3

	// Paging
	SearchPageSize         = 12
	RecommendationPageSize = 5
	AnalyticsPageSize      = 10

	// Sandbox defaults
	DefaultSandboxAddr     = "127.0.0.1:5000"
	DefaultSandboxDB       = "~/.config/mealplanner/sandbox.db"
	DefaultTokenTTL        = 24 * time.Hour
	SandboxLockfileName    = "sandbox.lock"
	SandboxExecutableName  = "mealplanner"
	SandboxSchemaName      = "mealplanner"
	SandboxDefaultSecret   = "mealplanner-sandbox-secret"
	SandboxMinSecretLength = 16
)

// Session States
const (
	StateSearch SessionState = iota
	StateIngredients
	StateCalendar
	StateRecommendations
	StateDashboard
	StateAnalytics
	StateAccount
)

// DayNames are indexed by the remote dayOfWeek value (Sunday = 0).
var DayNames = [DaysPerWeek]string{
	"Sunday",
	"Monday",
	"Tuesday",
	"Wednesday",
	"Thursday",
	"Friday",
	"Saturday",
}

// SecretQuestions are the recovery questions offered at registration.
var SecretQuestions = []string{
	"What is your mother’s maiden name?",
	"What was your first pet’s name?",
	"What is your favorite book?",
}
