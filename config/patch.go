package config

import (
	"fmt"

	"github.com/robmorgan/metronome/fixture"
)

// PatchedFixture stores config info for a dmx fixture
type PatchedFixture struct {
	Name     string `yaml:"name"`
	Address  int    `yaml:"address"`
	Universe int    `yaml:"universe"`
	Profile  string `yaml:"profile"`
}

// Validate checks the patch against the known profiles.
func (p PatchedFixture) Validate(profiles map[string]fixture.Profile) error {
	prof, ok := profiles[p.Profile]
	if !ok {
		return fmt.Errorf("fixture %q uses unknown profile %q", p.Name, p.Profile)
	}
	if p.Universe < 1 {
		return fmt.Errorf("fixture %q has invalid universe %d", p.Name, p.Universe)
	}
	last := p.Address + prof.ChannelCount() - 1
	if p.Address < 1 || last > fixture.UniverseSize {
		return fmt.Errorf("fixture %q does not fit in the universe at address %d", p.Name, p.Address)
	}
	return nil
}

// PatchFixtures returns the default rig: the two front pars either side of
// the practice space.
func PatchFixtures() []PatchedFixture {
	return []PatchedFixture{
		// left middle par
		{
			Name:     "left_middle_par",
			Address:  115,
			Universe: 1,
			Profile:  "shehds-par",
		},
		// right middle par
		{
			Name:     "right_middle_par",
			Address:  139,
			Universe: 1,
			Profile:  "shehds-par",
		},
	}
}
