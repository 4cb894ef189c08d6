// Package config holds client-side preferences and their on-disk
// persistence. These are machine-local settings, not player state; the
// server never sees them.
package config

import (
	"encoding/json"
	"log"

	"github.com/quasilyte/gdata"
)

const settingsItem = "settings"

// Settings is the client configuration persisted between runs.
type Settings struct {
	ServerAddress     string `json:"serverAddress"`
	Username          string `json:"username"`
	ReconnectToken    string `json:"reconnectToken"`
	PredictionEnabled bool   `json:"predictionEnabled"`
}

// Default returns the settings used when nothing is saved yet.
func Default() Settings {
	return Settings{
		ServerAddress:     "localhost:7415",
		Username:          "runner",
		PredictionEnabled: true,
	}
}

var (
	gdataManager     *gdata.Manager
	gdataInitialized bool
)

// InitPersistence initializes the gdata manager for settings storage.
func InitPersistence() error {
	m, err := gdata.Open(gdata.Config{
		AppName: "gridrunner",
	})
	if err != nil {
		log.Printf("Warning: Could not initialize persistence: %v", err)
		return err
	}
	gdataManager = m
	gdataInitialized = true
	return nil
}

// Load reads saved settings from disk, falling back to defaults when
// nothing is stored or the stored blob cannot be parsed.
func Load() Settings {
	if !gdataInitialized || gdataManager == nil {
		return Default()
	}

	data, err := gdataManager.LoadItem(settingsItem)
	if err != nil {
		log.Printf("Warning: Could not load settings: %v", err)
		return Default()
	}
	if data == nil {
		return Default()
	}

	s := Default()
	if err := json.Unmarshal(data, &s); err != nil {
		log.Printf("Warning: Could not parse saved settings: %v", err)
		return Default()
	}
	return s
}

// Save writes settings to disk. A persistence failure is logged, never
// fatal.
func Save(s Settings) error {
	if !gdataInitialized || gdataManager == nil {
		return nil
	}

	data, err := json.Marshal(s)
	if err != nil {
		log.Printf("Warning: Could not serialize settings: %v", err)
		return err
	}

	if err := gdataManager.SaveItem(settingsItem, data); err != nil {
		log.Printf("Warning: Could not save settings: %v", err)
		return err
	}
	return nil
}
