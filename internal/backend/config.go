package backend

import (
	"errors"
	"fmt"
	"time"

	"sbuboard/internal/config"
)

// Config holds what a factory needs to build any backend.
type Config struct {
	Type Type

	// rpc
	BaseURL            string
	APIKey             string
	AttendanceFunction string
	CompletionFunction string
	RPS                float64
	Burst              int
	Timeout            time.Duration

	// sqlite
	SQLiteDBPath string

	// memory
	SeedDir string

	// sheets
	SpreadsheetID   string
	CredentialsJSON string
	CredentialsFile string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	t := Type(appConfig.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: t,

		BaseURL:            appConfig.SupabaseURL,
		APIKey:             appConfig.SupabaseAnonKey,
		AttendanceFunction: appConfig.AttendanceRPC,
		CompletionFunction: appConfig.CompletionRPC,
		RPS:                appConfig.RPCRateLimit,
		Burst:              appConfig.RPCBurst,
		Timeout:            appConfig.FetchTimeout,

		SQLiteDBPath: appConfig.SQLiteDBPath,
		SeedDir:      appConfig.SeedDir,

		SpreadsheetID:   appConfig.GoogleSpreadsheetID,
		CredentialsJSON: appConfig.GoogleServiceAccountJSON,
		CredentialsFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate checks the settings the selected backend needs.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case RPCBackend:
		if c.BaseURL == "" {
			return errors.New("base URL is required for rpc backend")
		}
		if c.APIKey == "" {
			return errors.New("API key is required for rpc backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.SpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
	case MemoryBackend:
		// SeedDir defaults to "data"
	}

	return nil
}
