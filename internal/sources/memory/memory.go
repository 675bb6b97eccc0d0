package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"sbuboard/internal/core"
)

// SeedFile is the file NewFromFiles looks for inside the seed directory.
const SeedFile = "leaderboards.json"

// Store is an in-memory leaderboard source keyed by period.
type Store struct {
	mu         sync.RWMutex
	attendance map[string][]core.AttendanceRecord
	completion map[string][]core.CompletionRecord
}

type seed struct {
	Attendance []struct {
		core.DateRange
		Records []core.AttendanceRecord `json:"records"`
	} `json:"attendance"`
	Completion []struct {
		core.Period
		Records []core.CompletionRecord `json:"records"`
	} `json:"completion"`
}

func New() *Store {
	return &Store{
		attendance: make(map[string][]core.AttendanceRecord),
		completion: make(map[string][]core.CompletionRecord),
	}
}

// NewFromFiles seeds a store from base/leaderboards.json. A missing file
// yields an empty store; a malformed one is an error.
func NewFromFiles(base string) (*Store, error) {
	s := New()
	data, err := os.ReadFile(filepath.Join(base, SeedFile))
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var sd seed
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", SeedFile, err)
	}
	for _, a := range sd.Attendance {
		s.attendance[a.DateRange.Key()] = a.Records
	}
	for _, c := range sd.Completion {
		s.completion[c.Period.Key()] = c.Records
	}
	return s, nil
}

// ReadAttendance returns a copy of the records stored for the range.
func (s *Store) ReadAttendance(_ context.Context, r core.DateRange) ([]core.AttendanceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.attendance[r.Key()]), nil
}

// ReadCompletion returns a copy of the records stored for the period.
func (s *Store) ReadCompletion(_ context.Context, p core.Period) ([]core.CompletionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.completion[p.Key()]), nil
}

// ReplaceAttendance stores records for the range.
func (s *Store) ReplaceAttendance(_ context.Context, r core.DateRange, records []core.AttendanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance[r.Key()] = clone(records)
	return nil
}

// ReplaceCompletion stores records for the period.
func (s *Store) ReplaceCompletion(_ context.Context, p core.Period, records []core.CompletionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completion[p.Key()] = clone(records)
	return nil
}

func clone[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return slices.Clone(in)
}
