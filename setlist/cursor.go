package setlist

import (
	"fmt"
	"sync"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/metronome/logger"
	"github.com/robmorgan/metronome/utils"
	"github.com/sirupsen/logrus"
)

// Player is the playback control a cursor drives.
type Player interface {
	SetTempo(bpm float64) error
	Start() error
	Stop() error
	IsPlaying() bool
}

// Position is where the cursor stands in the active setlist.
type Position struct {
	SetlistID   string `json:"setlist_id"`
	SetlistName string `json:"setlist_name"`
	Index       int    `json:"index"`
	Count       int    `json:"count"`
	Preset      Preset `json:"preset"`
	// Playing is true when the player was started from this preset.
	Playing bool `json:"playing"`
}

// Cursor walks through a setlist and pushes each selected preset's tempo
// into the player.
type Cursor struct {
	mu        sync.Mutex
	library   *Library
	player    Player
	setlistID string
	index     int
	active    bool

	// preset the player was last started from
	playingID string
}

func NewCursor(library *Library, player Player) *Cursor {
	return &Cursor{library: library, player: player}
}

// Activate selects entry index of a setlist and applies its tempo.
func (c *Cursor) Activate(setlistID string, index int) (Position, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selectEntry(setlistID, index)
}

// Current returns the selected entry.
func (c *Cursor) Current() (Position, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return Position{}, errors.WithStackTrace(fmt.Errorf("no active setlist: %w", ErrNotFound))
	}
	s, err := c.library.Setlist(c.setlistID)
	if err != nil {
		return Position{}, err
	}
	if s.Len() == 0 {
		return Position{}, errors.WithStackTrace(fmt.Errorf("setlist %q is empty: %w", s.Name, ErrNotFound))
	}
	return c.position(s, c.index%s.Len()), nil
}

// Next selects the following entry, wrapping to the first.
func (c *Cursor) Next() (Position, error) {
	return c.step(1)
}

// Prev selects the previous entry, wrapping to the last.
func (c *Cursor) Prev() (Position, error) {
	return c.step(-1)
}

func (c *Cursor) step(delta int) (Position, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return Position{}, errors.WithStackTrace(fmt.Errorf("no active setlist: %w", ErrNotFound))
	}
	s, err := c.library.Setlist(c.setlistID)
	if err != nil {
		return Position{}, err
	}
	n := s.Len()
	if n == 0 {
		return Position{}, errors.WithStackTrace(fmt.Errorf("setlist %q is empty: %w", s.Name, ErrNotFound))
	}
	return c.selectEntry(c.setlistID, ((c.index+delta)%n+n)%n)
}

// PlayPreset plays entry index of a setlist. Asking for the preset that is
// already playing stops playback instead.
func (c *Cursor) PlayPreset(setlistID string, index int) (Position, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, err := c.library.Setlist(setlistID)
	if err != nil {
		return Position{}, err
	}
	if index < 0 || index >= s.Len() {
		return Position{}, errors.WithStackTrace(fmt.Errorf("entry %d of setlist %q: %w", index, s.Name, ErrNotFound))
	}

	if c.player.IsPlaying() && c.playingID == s.Presets[index].ID {
		if err := c.player.Stop(); err != nil {
			return Position{}, err
		}
		c.playingID = ""
		c.setlistID, c.index, c.active = setlistID, index, true
		return c.position(s, index), nil
	}

	pos, err := c.selectEntry(setlistID, index)
	if err != nil {
		return Position{}, err
	}
	if !c.player.IsPlaying() {
		if err := c.player.Start(); err != nil {
			return Position{}, err
		}
	}
	c.playingID = pos.Preset.ID
	pos.Playing = true
	return pos, nil
}

func (c *Cursor) selectEntry(setlistID string, index int) (Position, error) {
	s, err := c.library.Setlist(setlistID)
	if err != nil {
		return Position{}, err
	}
	if index < 0 || index >= s.Len() {
		return Position{}, errors.WithStackTrace(fmt.Errorf("entry %d of setlist %q: %w", index, s.Name, ErrNotFound))
	}

	p := s.Presets[index]
	if err := c.player.SetTempo(utils.ClampTempo(p.BPM)); err != nil {
		return Position{}, err
	}
	c.setlistID, c.index, c.active = setlistID, index, true
	if c.playingID != p.ID {
		c.playingID = ""
	}

	logger.GetProjectLogger().WithFields(logrus.Fields{
		"setlist": s.Name,
		"index":   index,
		"preset":  p.Name,
		"tempo":   p.BPM,
	}).Info("Selected preset")
	return c.position(s, index), nil
}

func (c *Cursor) position(s Setlist, index int) Position {
	p := s.Presets[index]
	return Position{
		SetlistID:   s.ID,
		SetlistName: s.Name,
		Index:       index,
		Count:       s.Len(),
		Preset:      p,
		Playing:     c.playingID != "" && c.playingID == p.ID && c.player.IsPlaying(),
	}
}
