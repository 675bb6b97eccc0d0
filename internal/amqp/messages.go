package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	applog "sbuboard/internal/log"
)

// RefreshMessage asks every dashboard to refetch a leaderboard. An empty Key
// refetches every period currently shown for the domain.
type RefreshMessage struct {
	Domain    string    `json:"domain"`
	Key       string    `json:"key,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRefreshMessage creates a refresh message stamped with the current time.
// Domain aliases such as "brag" are stored under their canonical name.
func NewRefreshMessage(domain, key string) *RefreshMessage {
	if canonical, ok := applog.CanonicalDomain(domain); ok {
		domain = canonical
	}
	return &RefreshMessage{
		Domain:    domain,
		Key:       key,
		Timestamp: time.Now(),
	}
}

// Validate rejects messages for unknown leaderboards
func (m *RefreshMessage) Validate() error {
	switch m.Domain {
	case applog.DomainAttendance, applog.DomainCompletion:
		return nil
	}
	return fmt.Errorf("unknown leaderboard domain %q", m.Domain)
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON decodes and validates a message
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
