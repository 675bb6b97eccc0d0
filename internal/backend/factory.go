package backend

import (
	"context"
	"fmt"
	"net/http"

	"sbuboard/internal/config"
	applog "sbuboard/internal/log"
	"sbuboard/internal/sources/google"
	"sbuboard/internal/sources/memory"
	"sbuboard/internal/sources/rpc"
	"sbuboard/internal/sources/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// FromConfig builds the backend selected by the application config.
func FromConfig(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*Result, error) {
	bc, err := FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return NewFactory(logger).Create(ctx, bc)
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case RPCBackend:
		return f.createRPCBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createRPCBackend(config Config) (*Result, error) {
	opts := rpc.Options{
		BaseURL:            config.BaseURL,
		APIKey:             config.APIKey,
		AttendanceFunction: config.AttendanceFunction,
		CompletionFunction: config.CompletionFunction,
		RPS:                config.RPS,
		Burst:              config.Burst,
		Logger:             f.logger,
	}
	if config.Timeout > 0 {
		opts.HTTPClient = &http.Client{Timeout: config.Timeout}
	}
	client, err := rpc.New(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rpc client: %w", err)
	}

	f.logger.Info("Initialized rpc backend",
		"base_url", config.BaseURL,
		"attendance_function", opts.AttendanceFunction,
		"completion_function", opts.CompletionFunction)

	return &Result{
		Reader: client,
		Cleanup: func() error {
			client.Close()
			return nil
		},
	}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*Result, error) {
	repo, err := sqlite.NewRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &Result{
		Reader:  repo,
		Writer:  repo,
		Ping:    repo.Ping,
		Cleanup: repo.Close,
	}, nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*Result, error) {
	cli, err := google.New(ctx, google.Options{
		SpreadsheetID:   config.SpreadsheetID,
		CredentialsJSON: config.CredentialsJSON,
		CredentialsFile: config.CredentialsFile,
		Logger:          f.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")

	return &Result{Reader: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*Result, error) {
	dataDir := config.SeedDir
	if dataDir == "" {
		dataDir = "data"
	}

	store, err := memory.NewFromFiles(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory seed: %w", err)
	}

	f.logger.Info("Initialized memory backend", "data_directory", dataDir)

	return &Result{Reader: store, Writer: store}, nil
}
