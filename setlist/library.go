package setlist

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/metronome/logger"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
)

type setlistRecord struct {
	id        string
	name      string
	presetIDs []string
}

// Library stores presets and setlists in memory. Listings come back in the
// order items were first saved.
type Library struct {
	mu           sync.RWMutex
	presets      map[string]Preset
	presetOrder  []string
	setlists     map[string]*setlistRecord
	setlistOrder []string
	newID        func() string
}

func NewLibrary() *Library {
	return &Library{
		presets:  make(map[string]Preset),
		setlists: make(map[string]*setlistRecord),
		newID:    uuid.NewString,
	}
}

// Presets returns every preset.
func (l *Library) Presets() []Preset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Preset, 0, len(l.presetOrder))
	for _, id := range l.presetOrder {
		out = append(out, l.presets[id])
	}
	return out
}

// Preset looks up a preset by id.
func (l *Library) Preset(id string) (Preset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	p, ok := l.presets[id]
	if !ok {
		return Preset{}, notFound("preset", id)
	}
	return p, nil
}

// SavePreset creates or replaces a preset. A preset without an id gets a new one.
func (l *Library) SavePreset(p Preset) (Preset, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.validate(); err != nil {
		return Preset{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if p.ID == "" {
		p.ID = l.newID()
	}
	l.putPreset(p)

	logger.GetProjectLogger().WithFields(logrus.Fields{"preset": p.ID, "bpm": p.BPM}).Debug("Saved preset")
	return p, nil
}

func (l *Library) putPreset(p Preset) {
	if _, exists := l.presets[p.ID]; !exists {
		l.presetOrder = append(l.presetOrder, p.ID)
	}
	l.presets[p.ID] = p
}

// DeletePreset removes a preset and every setlist entry pointing at it.
func (l *Library) DeletePreset(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.presets[id]; !ok {
		return notFound("preset", id)
	}
	delete(l.presets, id)
	if i := slices.Index(l.presetOrder, id); i >= 0 {
		l.presetOrder = slices.Delete(l.presetOrder, i, i+1)
	}

	for _, s := range l.setlists {
		kept := s.presetIDs[:0]
		for _, pid := range s.presetIDs {
			if pid != id {
				kept = append(kept, pid)
			}
		}
		s.presetIDs = kept
	}
	return nil
}

// Setlists returns every setlist with its presets resolved.
func (l *Library) Setlists() []Setlist {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Setlist, 0, len(l.setlistOrder))
	for _, id := range l.setlistOrder {
		out = append(out, l.resolve(l.setlists[id]))
	}
	return out
}

// Setlist looks up a setlist by id.
func (l *Library) Setlist(id string) (Setlist, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s, ok := l.setlists[id]
	if !ok {
		return Setlist{}, notFound("setlist", id)
	}
	return l.resolve(s), nil
}

func (l *Library) resolve(s *setlistRecord) Setlist {
	presets := make([]Preset, 0, len(s.presetIDs))
	for _, pid := range s.presetIDs {
		presets = append(presets, l.presets[pid])
	}
	return Setlist{ID: s.id, Name: s.name, Presets: presets}
}

// SaveSetlist creates or replaces a setlist and its order. Presets the
// library does not know yet are added; known presets are left unchanged.
func (l *Library) SaveSetlist(s Setlist) (Setlist, error) {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		return Setlist{}, errors.WithStackTrace(fmt.Errorf("%w: setlist name is required", ErrInvalidPreset))
	}
	for i, p := range s.Presets {
		if err := p.validate(); err != nil {
			return Setlist{}, errors.WithStackTrace(fmt.Errorf("setlist entry %d: %w", i, err))
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if s.ID == "" {
		s.ID = l.newID()
	}

	ids := make([]string, 0, len(s.Presets))
	for _, p := range s.Presets {
		if p.ID == "" {
			p.ID = l.newID()
		}
		if _, exists := l.presets[p.ID]; !exists {
			l.putPreset(p)
		}
		ids = append(ids, p.ID)
	}

	rec, exists := l.setlists[s.ID]
	if !exists {
		rec = &setlistRecord{id: s.ID}
		l.setlists[s.ID] = rec
		l.setlistOrder = append(l.setlistOrder, s.ID)
	}
	rec.name = s.Name
	rec.presetIDs = ids

	logger.GetProjectLogger().WithFields(logrus.Fields{"setlist": s.ID, "presets": len(ids)}).Debug("Saved setlist")
	return l.resolve(rec), nil
}

// DeleteSetlist removes a setlist. Its presets stay in the library.
func (l *Library) DeleteSetlist(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.setlists[id]; !ok {
		return notFound("setlist", id)
	}
	delete(l.setlists, id)
	if i := slices.Index(l.setlistOrder, id); i >= 0 {
		l.setlistOrder = slices.Delete(l.setlistOrder, i, i+1)
	}
	return nil
}
