package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"intervaltimer/internal/ui/preferences"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	LeadInSeconds *int     `yaml:"lead_in_seconds"`
	SoundEnabled  *bool    `yaml:"sound_enabled"`
	Volume        *float64 `yaml:"volume"`
	KeepAwake     *bool    `yaml:"keep_awake"`
	Fullscreen    bool     `yaml:"fullscreen"`
	FrameRate     int      `yaml:"frame_rate"`
}

// LoadSettings reads user preferences from YAML in dir.
// If the config file does not exist, default settings are returned.
func LoadSettings(dir string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(SettingsPath(dir))
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

// SaveSettings writes user preferences to YAML in dir.
func SaveSettings(dir string, settings preferences.Settings) error {
	leadIn := int(settings.LeadIn / time.Second)
	fileData := yamlSettings{
		LeadInSeconds: &leadIn,
		SoundEnabled:  &settings.SoundEnabled,
		Volume:        &settings.Volume,
		KeepAwake:     &settings.KeepAwake,
		Fullscreen:    settings.Fullscreen,
		FrameRate:     settings.FrameRate,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := writeFileAtomic(SettingsPath(dir), serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns the settings file location inside dir.
func SettingsPath(dir string) string {
	return filepath.Join(dir, settingsFileName)
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.LeadInSeconds != nil {
		leadIn := time.Duration(*fileData.LeadInSeconds) * time.Second
		if leadIn >= preferences.MinLeadIn && leadIn <= preferences.MaxLeadIn {
			settings.LeadIn = leadIn
		}
	}
	if fileData.SoundEnabled != nil {
		settings.SoundEnabled = *fileData.SoundEnabled
	}
	if fileData.Volume != nil && *fileData.Volume >= 0 && *fileData.Volume <= 1 {
		settings.Volume = *fileData.Volume
	}
	if fileData.KeepAwake != nil {
		settings.KeepAwake = *fileData.KeepAwake
	}
	if fileData.FrameRate >= preferences.MinFrameRate && fileData.FrameRate <= preferences.MaxFrameRate {
		settings.FrameRate = fileData.FrameRate
	}

	settings.Fullscreen = fileData.Fullscreen
}
