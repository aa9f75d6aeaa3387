package preferences

import "fittrack/internal/core/model"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// Identity providers.
const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

// Settings defines editable user preferences.
type Settings struct {
	SpokenPrompts bool
	Voice         string
	RememberMe    bool

	StorageBackend   string
	IdentityProvider string
	FirebaseAPIKey   string

	GoogleClientID     string
	GoogleClientSecret string

	Workouts []model.WorkoutSpec
}

// DefaultSettings returns default settings for FitTrack.
func DefaultSettings() Settings {
	return Settings{
		SpokenPrompts:    true,
		RememberMe:       true,
		StorageBackend:   BackendSQLite,
		IdentityProvider: ProviderLocal,
		Workouts:         model.DefaultCatalog(),
	}
}

// Catalog returns the workouts offered on the home screen.
func (settings Settings) Catalog() []model.WorkoutSpec {
	if len(settings.Workouts) == 0 {
		return model.DefaultCatalog()
	}
	return append([]model.WorkoutSpec(nil), settings.Workouts...)
}
