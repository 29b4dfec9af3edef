package fixture

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/metronome/utils"
)

// Fixture is a patched light.
type Fixture struct {
	Name     string
	Universe int

	// The DMX starting address
	Address int

	Profile Profile

	intensity   float64
	color       colorful.Color
	needsUpdate bool
}

// NewFixture creates a dark, white fixture.
func NewFixture(name string, universe, address int, profile Profile) *Fixture {
	return &Fixture{
		Name:     name,
		Universe: universe,
		Address:  address,
		Profile:  profile,
		color:    colorful.Color{R: 1, G: 1, B: 1},
	}
}

// SetIntensity sets the dimmer level in [0,1].
func (f *Fixture) SetIntensity(level float64) {
	level = utils.Clamp(level, 0, 1)
	if level != f.intensity {
		f.intensity = level
		f.needsUpdate = true
	}
}

func (f *Fixture) Intensity() float64 {
	return f.intensity
}

func (f *Fixture) SetColor(c colorful.Color) {
	if c != f.color {
		f.color = c
		f.needsUpdate = true
	}
}

func (f *Fixture) Color() colorful.Color {
	return f.color
}

// NeedsUpdate returns true if the fixture changed since it was last rendered.
func (f *Fixture) NeedsUpdate() bool {
	return f.needsUpdate
}

// HasUpdated marks the fixture as rendered.
func (f *Fixture) HasUpdated() {
	f.needsUpdate = false
}

// Render writes the fixture's channels into the DMX state.
func (f *Fixture) Render(state *DMXState) error {
	hasDimmer := f.Profile.HasChannel(ChannelTypeIntensity)

	ops := make([]dmxOperation, 0, len(f.Profile.Channels))
	for channelType, offset := range f.Profile.Channels {
		value, ok := channelValue(channelType, f.color, f.intensity, hasDimmer)
		if !ok {
			continue
		}
		ops = append(ops, dmxOperation{
			universe: f.Universe,
			channel:  f.Address + offset - 1,
			value:    int(value),
		})
	}

	if err := state.set(ops...); err != nil {
		return err
	}
	f.HasUpdated()
	return nil
}
