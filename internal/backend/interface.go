package backend

import (
	"context"

	"sbuboard/internal/sources"
)

// CleanupFunc releases resources held by a backend.
type CleanupFunc func() error

// Result contains the leaderboard source and optional hooks around it.
type Result struct {
	Reader sources.Reader
	// Writer is nil for read-only backends (rpc, sheets).
	Writer sources.Writer
	// Ping reports readiness; nil means always ready.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Close runs Cleanup when one is set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	Create(ctx context.Context, config Config) (*Result, error)
}

// Type identifies a leaderboard source.
type Type string

const (
	RPCBackend    Type = "rpc"
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
	SheetsBackend Type = "sheets"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case RPCBackend, MemoryBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Types returns all valid backend types
func Types() []Type {
	return []Type{RPCBackend, MemoryBackend, SQLiteBackend, SheetsBackend}
}
