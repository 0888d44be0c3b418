package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// SyncConfig holds synchronization and maintenance configuration
type SyncConfig struct {
	// ============ BASIC SETTINGS ============
	Enabled       bool `json:"enabled"`
	SyncOnStartup bool `json:"sync_on_startup"`

	// ============ SCHEDULING ============
	AutoSyncEnabled  bool `json:"auto_sync_enabled"`
	AutoSyncInterval int  `json:"auto_sync_interval"` // seconds
	HealthInterval   int  `json:"health_interval"`    // seconds, connectivity probe

	// ============ SAFE OPERATION ============
	MaxRetries     int `json:"max_retries"`      // local store retries per operation
	BackoffBaseMs  int `json:"backoff_base_ms"`  // first retry delay, doubles per attempt
	MaxSyncRetries int `json:"max_sync_retries"` // pending-change retryCount ceiling

	// ============ RETENTION ============
	TempRetentionDays    int `json:"temp_retention_days"`    // temporary entities
	PendingRetentionDays int `json:"pending_retention_days"` // pending changes
	DraftRetentionDays   int `json:"draft_retention_days"`   // cached drafts
	ImageRetentionDays   int `json:"image_retention_days"`   // cached images
	MaintenanceHours     int `json:"maintenance_hours"`      // maintenance cycle

	// ============ ALERTING ============
	FailureAlertThreshold int `json:"failure_alert_threshold"` // consecutive failures
	FailureAlertWindowSec int `json:"failure_alert_window_sec"`

	// ============ DUPLICATE DETECTION ============
	// Fields of a commande compared when deciding whether a replayed
	// create already landed remotely. Known false-positive risk for
	// legitimately distinct orders sharing all fields on the same day.
	DuplicateMatchFields []string `json:"duplicate_match_fields"`
}

// LoadSyncConfig loads sync configuration from environment or file
func LoadSyncConfig() *SyncConfig {
	if configPath := os.Getenv("SYNC_CONFIG_PATH"); configPath != "" {
		if cfg, err := loadSyncConfigFromFile(configPath); err == nil {
			return cfg
		}
	}
	return getDefaultSyncConfig()
}

// loadSyncConfigFromFile loads sync config from JSON file
func loadSyncConfigFromFile(path string) (*SyncConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg SyncConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// getDefaultSyncConfig returns default sync configuration
func getDefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		Enabled:       getBoolEnv("SYNC_ENABLED", true),
		SyncOnStartup: getBoolEnv("SYNC_ON_STARTUP", true),

		AutoSyncEnabled:  getBoolEnv("SYNC_AUTO_ENABLED", true),
		AutoSyncInterval: getIntEnv("SYNC_AUTO_INTERVAL", 60),
		HealthInterval:   getIntEnv("SYNC_HEALTH_INTERVAL", 30),

		MaxRetries:     getIntEnv("SYNC_MAX_RETRIES", 2),
		BackoffBaseMs:  getIntEnv("SYNC_BACKOFF_BASE_MS", 100),
		MaxSyncRetries: getIntEnv("SYNC_MAX_SYNC_RETRIES", 3),

		TempRetentionDays:    getIntEnv("SYNC_TEMP_RETENTION_DAYS", 7),
		PendingRetentionDays: getIntEnv("SYNC_PENDING_RETENTION_DAYS", 30),
		DraftRetentionDays:   getIntEnv("SYNC_DRAFT_RETENTION_DAYS", 14),
		ImageRetentionDays:   getIntEnv("SYNC_IMAGE_RETENTION_DAYS", 30),
		MaintenanceHours:     getIntEnv("SYNC_MAINTENANCE_HOURS", 24),

		FailureAlertThreshold: getIntEnv("SYNC_ALERT_THRESHOLD", 5),
		FailureAlertWindowSec: getIntEnv("SYNC_ALERT_WINDOW", 60),

		DuplicateMatchFields: []string{"client_nom", "client_telephone", "date_livraison"},
	}
}

// Helper functions for environment variables

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
