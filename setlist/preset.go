package setlist

import (
	"fmt"
	"strings"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/metronome/utils"
)

var (
	// ErrNotFound is returned for unknown preset or setlist ids.
	ErrNotFound = fmt.Errorf("not found")
	// ErrInvalidPreset is returned for presets or setlists that cannot be saved.
	ErrInvalidPreset = fmt.Errorf("invalid preset")
)

// Preset is a named tempo.
type Preset struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	BPM  float64 `json:"bpm"`
}

func (p Preset) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.WithStackTrace(fmt.Errorf("%w: name is required", ErrInvalidPreset))
	}
	if p.BPM < utils.MinTempo || p.BPM > utils.MaxTempo {
		return errors.WithStackTrace(fmt.Errorf("%w: bpm %v is outside [%v, %v]", ErrInvalidPreset, p.BPM, utils.MinTempo, utils.MaxTempo))
	}
	return nil
}

// Setlist is an ordered sequence of presets. The same preset may appear
// more than once.
type Setlist struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Presets []Preset `json:"presets"`
}

// Len returns the number of entries in the setlist.
func (s Setlist) Len() int {
	return len(s.Presets)
}

func notFound(kind, id string) error {
	return errors.WithStackTrace(fmt.Errorf("%s %q: %w", kind, id, ErrNotFound))
}
