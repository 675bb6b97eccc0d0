// Package slides builds the rotating leaderboard deck: which slides are shown,
// for which periods, how they rotate and what each one renders.
package slides

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"sbuboard/internal/core"
)

// Kind identifies one of the four slide layouts.
type Kind string

const (
	KindBragPodium          Kind = "brag-podium"
	KindAttendancePodium    Kind = "attendance-podium"
	KindBragRemaining       Kind = "brag-remaining"
	KindAttendanceRemaining Kind = "attendance-remaining"
)

const DefaultInterval = 10 * time.Second

// Slide is one entry of the deck. Name overrides the navigation label.
type Slide struct {
	Kind Kind   `yaml:"kind" validate:"required,oneof=brag-podium attendance-podium brag-remaining attendance-remaining"`
	Name string `yaml:"name,omitempty" validate:"max=64"`
}

// Deck is the dashboard layout. Both leaderboards are shown for a single
// attendance range and completion month.
type Deck struct {
	Attendance core.DateRange `yaml:"attendance"`
	Completion core.Period    `yaml:"completion"`
	Interval   time.Duration  `yaml:"interval" validate:"gte=1s,lte=1h"`
	Slides     []Slide        `yaml:"slides" validate:"min=1,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultDeck is the stock four-slide rotation.
func DefaultDeck() Deck {
	return Deck{
		Attendance: core.DateRange{Start: "2025-01-01", End: "2025-05-30"},
		Completion: core.Period{Year: 2025, Month: 5},
		Interval:   DefaultInterval,
		Slides: []Slide{
			{Kind: KindBragPodium},
			{Kind: KindAttendancePodium},
			{Kind: KindBragRemaining},
			{Kind: KindAttendanceRemaining},
		},
	}
}

// ParseDeck reads a YAML deck. Omitted fields keep their DefaultDeck values.
func ParseDeck(r io.Reader) (Deck, error) {
	deck := DefaultDeck()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&deck); err != nil && !errors.Is(err, io.EOF) {
		return Deck{}, fmt.Errorf("parse deck: %w", err)
	}
	if err := deck.Validate(); err != nil {
		return Deck{}, err
	}
	return deck, nil
}

// LoadDeck reads and validates the deck at path.
func LoadDeck(path string) (Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Deck{}, fmt.Errorf("read deck: %w", err)
	}
	return ParseDeck(bytes.NewReader(data))
}

func (d Deck) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("invalid deck: %w", err)
	}
	return nil
}

// Label is the navigation label of the slide.
func (s Slide) Label() string {
	if s.Name != "" {
		return s.Name
	}
	switch s.Kind {
	case KindBragPodium:
		return "Brag Documents"
	case KindAttendancePodium:
		return "Attendance"
	case KindBragRemaining:
		return "Brag Rankings"
	case KindAttendanceRemaining:
		return "Attendance Rankings"
	default:
		return string(s.Kind)
	}
}
