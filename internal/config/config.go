package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backend names accepted by DATA_BACKEND
const (
	BackendRPC    = "rpc"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendSheets = "sheets"
)

var validBackends = []string{BackendRPC, BackendMemory, BackendSQLite, BackendSheets}

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Remote aggregation service
	SupabaseURL     string
	SupabaseAnonKey string
	AttendanceRPC   string
	CompletionRPC   string
	RPCRateLimit    float64
	RPCBurst        int
	FetchTimeout    time.Duration

	// Per-query cache
	CacheMaxEntries      int
	CacheTTL             time.Duration
	CacheCleanupInterval time.Duration

	// Database
	SQLiteDBPath string

	// Memory backend
	SeedDir string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Slides
	DeckFile      string
	SlideInterval time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string // prefix; each consumer appends a per-process suffix

	// Periodic refetch of the leaderboards on screen (0 = off)
	RefreshInterval time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DataBackend: getEnv("DATA_BACKEND", BackendMemory),

		SupabaseURL:     strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
		SupabaseAnonKey: getEnv("SUPABASE_ANON_KEY", ""),
		AttendanceRPC:   getEnv("ATTENDANCE_RPC", "get_attendance_sbu_leaderboard"),
		CompletionRPC:   getEnv("COMPLETION_RPC", "get_brag_document_sbu_completeness"),
		RPCRateLimit:    getEnvFloat("RPC_RATE_LIMIT", 5),
		RPCBurst:        getEnvInt("RPC_BURST", 10),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 15*time.Second),

		CacheMaxEntries:      getEnvInt("CACHE_MAX_ENTRIES", 128),
		CacheTTL:             getEnvDuration("CACHE_TTL", 0),
		CacheCleanupInterval: getEnvDuration("CACHE_CLEANUP_INTERVAL", 10*time.Minute),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/sbuboard.db"),
		SeedDir:      getEnv("SEED_DIR", "data"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		DeckFile:      getEnv("DECK_FILE", ""),
		SlideInterval: getEnvDuration("SLIDE_INTERVAL", 10*time.Second),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "sbuboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "leaderboard_refresh"),

		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 0),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate data backend
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case BackendRPC:
		if c.SupabaseURL == "" {
			errors = append(errors, "SUPABASE_URL is required when using rpc backend")
		} else if u, err := url.Parse(c.SupabaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errors = append(errors, fmt.Sprintf("invalid SUPABASE_URL '%s': must be an absolute http(s) URL", c.SupabaseURL))
		}
		if c.SupabaseAnonKey == "" {
			errors = append(errors, "SUPABASE_ANON_KEY is required when using rpc backend")
		}
		if c.AttendanceRPC == "" || c.CompletionRPC == "" {
			errors = append(errors, "ATTENDANCE_RPC and COMPLETION_RPC cannot be empty")
		}
		if c.RPCRateLimit <= 0 {
			errors = append(errors, fmt.Sprintf("invalid rpc rate limit %v: must be positive", c.RPCRateLimit))
		}
		if c.RPCBurst < 1 {
			errors = append(errors, fmt.Sprintf("invalid rpc burst %d: must be at least 1", c.RPCBurst))
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0o755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasFile && c.GoogleServiceAccountJSON == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_FILE or GOOGLE_SERVICE_ACCOUNT_JSON must be provided for sheets backend")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.FetchTimeout < 0 {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: cannot be negative", c.FetchTimeout))
	}
	if c.CacheMaxEntries < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: cannot be negative", c.CacheMaxEntries))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: cannot be negative", c.CacheTTL))
	}

	if c.RefreshInterval < 0 {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: cannot be negative", c.RefreshInterval))
	} else if c.RefreshInterval > 0 && c.RefreshInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid refresh interval %v: must be at least 1 minute", c.RefreshInterval))
	}

	if c.SlideInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid slide interval %v: must be at least 1 second", c.SlideInterval))
	} else if c.SlideInterval > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid slide interval %v: must be at most 1 hour", c.SlideInterval))
	}

	if c.DeckFile != "" {
		if _, err := os.Stat(c.DeckFile); err != nil {
			errors = append(errors, fmt.Sprintf("deck file '%s' is not readable: %v", c.DeckFile, err))
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// AMQPEnabled reports whether refresh notifications are configured
func (c *Config) AMQPEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
