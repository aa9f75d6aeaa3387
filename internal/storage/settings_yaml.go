package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fittrack/internal/core/model"
	"fittrack/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlWorkout struct {
	ID      string `yaml:"id,omitempty"`
	Title   string `yaml:"title"`
	Seconds int    `yaml:"seconds"`
}

type yamlSettings struct {
	SpokenPrompts    *bool         `yaml:"spoken_prompts"`
	Voice            string        `yaml:"voice,omitempty"`
	RememberMe       *bool         `yaml:"remember_me"`
	StorageBackend   string        `yaml:"storage_backend"`
	IdentityProvider string        `yaml:"identity_provider"`
	FirebaseAPIKey   string        `yaml:"firebase_api_key,omitempty"`
	GoogleClientID   string        `yaml:"google_client_id,omitempty"`
	GoogleSecret     string        `yaml:"google_client_secret,omitempty"`
	Workouts         []yamlWorkout `yaml:"workouts"`
}

// SettingsPath returns the settings file location inside configDir.
func SettingsPath(configDir string) string {
	return filepath.Join(configDir, settingsFileName)
}

// LoadSettings reads user preferences from YAML.
// If the file does not exist, default settings are returned.
func LoadSettings(path string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(path string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	spoken := settings.SpokenPrompts
	remember := settings.RememberMe
	fileData := yamlSettings{
		SpokenPrompts:    &spoken,
		Voice:            settings.Voice,
		RememberMe:       &remember,
		StorageBackend:   settings.StorageBackend,
		IdentityProvider: settings.IdentityProvider,
		FirebaseAPIKey:   settings.FirebaseAPIKey,
		GoogleClientID:   settings.GoogleClientID,
		GoogleSecret:     settings.GoogleClientSecret,
	}
	for _, workout := range settings.Workouts {
		fileData.Workouts = append(fileData.Workouts, yamlWorkout{
			ID:      workout.ID,
			Title:   workout.Title,
			Seconds: workout.TotalSeconds,
		})
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o600); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.SpokenPrompts != nil {
		settings.SpokenPrompts = *fileData.SpokenPrompts
	}
	if fileData.RememberMe != nil {
		settings.RememberMe = *fileData.RememberMe
	}
	settings.Voice = fileData.Voice

	switch fileData.StorageBackend {
	case preferences.BackendSQLite, preferences.BackendFile:
		settings.StorageBackend = fileData.StorageBackend
	}
	switch fileData.IdentityProvider {
	case preferences.ProviderLocal, preferences.ProviderFirebase:
		settings.IdentityProvider = fileData.IdentityProvider
	}
	settings.FirebaseAPIKey = fileData.FirebaseAPIKey
	settings.GoogleClientID = fileData.GoogleClientID
	settings.GoogleClientSecret = fileData.GoogleSecret

	var workouts []model.WorkoutSpec
	for index, entry := range fileData.Workouts {
		spec := model.WorkoutSpec{ID: entry.ID, Title: entry.Title, TotalSeconds: entry.Seconds}
		if spec.ID == "" {
			spec.ID = strconv.Itoa(index + 1)
		}
		if spec.Validate() != nil {
			continue
		}
		workouts = append(workouts, spec)
	}
	if len(workouts) > 0 {
		settings.Workouts = workouts
	}
}
