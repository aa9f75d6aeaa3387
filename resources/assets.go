package resources

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
)

const (
	iconDir = "icons/"
	logoDir = "logo/"
)

// Logo files.
const (
	LogoActive = "logo.svg"
	LogoPaused = "logo_paused.svg"
)

//go:embed icons/*.svg
var iconFS embed.FS

//go:embed logo/*.svg
var logoFS embed.FS

var iconCache sync.Map
var logoCache sync.Map

var workoutIcons = map[string]string{
	"push": "push.svg",
	"pull": "pull.svg",
	"leg":  "leg.svg",
}

// WorkoutIcon returns the icon for a workout title, falling back to a star.
func WorkoutIcon(title string) fyne.Resource {
	fileName := "default.svg"
	if fields := strings.Fields(strings.ToLower(title)); len(fields) > 0 {
		if name, ok := workoutIcons[fields[0]]; ok {
			fileName = name
		}
	}
	resource, err := loadResource(iconFS, iconDir+fileName, &iconCache)
	if err != nil {
		panic(err)
	}
	return resource
}

// Logo returns a Fyne resource for the given logo file.
func Logo(fileName string) (fyne.Resource, error) {
	return loadResource(logoFS, logoDir+fileName, &logoCache)
}

// MustLogo returns a Fyne resource or panics on error.
func MustLogo(fileName string) fyne.Resource {
	resource, err := Logo(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}

func loadResource(fs embed.FS, path string, cache *sync.Map) (fyne.Resource, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(path, data)
	cache.Store(path, resource)
	return resource, nil
}
