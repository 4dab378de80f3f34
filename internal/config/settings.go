package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/konst007/chgk/internal/engine/types"
)

// Settings holds all user-configurable application settings organized by category.
type Settings struct {
	General GeneralSettings `json:"general"`
	Network NetworkSettings `json:"network"`
}

// GeneralSettings contains application behavior settings.
type GeneralSettings struct {
	AutoStart         bool `json:"auto_start"`
	CopyOnFetch       bool `json:"copy_on_fetch"`
	LogRetentionCount int  `json:"log_retention_count"`
}

// NetworkSettings contains network connection parameters.
type NetworkSettings struct {
	EndpointURL      string `json:"endpoint_url"`
	ConnectTimeoutMs int    `json:"connect_timeout_ms"`
	ReadTimeoutMs    int    `json:"read_timeout_ms"`
}

// SettingMeta provides metadata for a single setting (for UI rendering).
type SettingMeta struct {
	Key         string // JSON key name
	Label       string // Human-readable label
	Description string // Help text
	Type        string // "string", "int", "bool"
}

// GetSettingsMetadata returns metadata for all settings organized by category.
func GetSettingsMetadata() map[string][]SettingMeta {
	return map[string][]SettingMeta{
		"General": {
			{Key: "auto_start", Label: "Auto Start", Description: "Fetch a question as soon as the app starts.", Type: "bool"},
			{Key: "copy_on_fetch", Label: "Copy on Fetch", Description: "Copy each fetched question to the clipboard.", Type: "bool"},
			{Key: "log_retention_count", Label: "Log Retention Count", Description: "Number of recent log files to keep.", Type: "int"},
		},
		"Network": {
			{Key: "endpoint_url", Label: "Endpoint URL", Description: "Address serving one random question as XML.", Type: "string"},
			{Key: "connect_timeout_ms", Label: "Connect Timeout", Description: "Milliseconds allowed to establish the connection.", Type: "int"},
			{Key: "read_timeout_ms", Label: "Read Timeout", Description: "Milliseconds a read may wait for data.", Type: "int"},
		},
	}
}

// CategoryOrder returns the order of categories for display.
func CategoryOrder() []string {
	return []string{"General", "Network"}
}

// DefaultSettings returns a new Settings instance with sensible defaults.
func DefaultSettings() *Settings {
	return &Settings{
		General: GeneralSettings{
			AutoStart:         true,
			CopyOnFetch:       false,
			LogRetentionCount: 5,
		},
		Network: NetworkSettings{
			EndpointURL:      types.DefaultEndpoint,
			ConnectTimeoutMs: int(types.DefaultConnectTimeout / time.Millisecond),
			ReadTimeoutMs:    int(types.DefaultReadTimeout / time.Millisecond),
		},
	}
}

// Validate rejects settings the fetch engine cannot use.
func (s *Settings) Validate() error {
	if s.Network.EndpointURL != "" {
		u, err := url.Parse(s.Network.EndpointURL)
		if err != nil {
			return fmt.Errorf("network.endpoint_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("network.endpoint_url: unsupported scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("network.endpoint_url: missing host in %q", s.Network.EndpointURL)
		}
	}
	if s.Network.ConnectTimeoutMs < 0 {
		return fmt.Errorf("network.connect_timeout_ms: must not be negative, got %d", s.Network.ConnectTimeoutMs)
	}
	if s.Network.ReadTimeoutMs < 0 {
		return fmt.Errorf("network.read_timeout_ms: must not be negative, got %d", s.Network.ReadTimeoutMs)
	}
	if s.General.LogRetentionCount < 0 {
		return fmt.Errorf("general.log_retention_count: must not be negative, got %d", s.General.LogRetentionCount)
	}
	return nil
}

// LoadSettings loads settings from disk. Returns defaults if file doesn't exist.
func LoadSettings() (*Settings, error) {
	return LoadSettingsFrom(GetSettingsPath())
}

// LoadSettingsFrom loads settings from path, filling missing fields with defaults.
func LoadSettingsFrom(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// File doesn't exist, return defaults
			return DefaultSettings(), nil
		}
		return nil, err
	}

	settings := DefaultSettings() // Start with defaults to fill any missing fields
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	return settings, nil
}

// SaveSettings saves settings to disk atomically.
func SaveSettings(s *Settings) error {
	return SaveSettingsTo(GetSettingsPath(), s)
}

// SaveSettingsTo writes s to path. Concurrent writers from other processes
// are serialised through a lock file next to it.
func SaveSettingsTo(path string, s *Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock settings: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	// Atomic write: write to temp file, then rename
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tempPath, path)
}

// ToRuntimeConfig creates the fetch engine's RuntimeConfig from user Settings.
// Zero values fall back to engine defaults.
func (s *Settings) ToRuntimeConfig() *types.RuntimeConfig {
	return &types.RuntimeConfig{
		URL:            s.Network.EndpointURL,
		ConnectTimeout: time.Duration(s.Network.ConnectTimeoutMs) * time.Millisecond,
		ReadTimeout:    time.Duration(s.Network.ReadTimeoutMs) * time.Millisecond,
	}
}
