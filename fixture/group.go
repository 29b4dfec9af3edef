package fixture

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Group struct {
	Fixtures map[string]*Fixture
}

// Create a new Group object with reasonable defaults for real usage.
func NewGroup() *Group {
	return &Group{
		Fixtures: make(map[string]*Fixture),
	}
}

func (fg *Group) GetFixture(id string) (*Fixture, error) {
	if fixture, found := fg.Fixtures[id]; found {
		return fixture, nil
	}
	return nil, fmt.Errorf("the fixture group does not contain a fixture with the id: %s", id)
}

func (fg *Group) AddFixture(id string, fixture *Fixture) {
	fg.Fixtures[id] = fixture
}

// HasFixtures returns true if there are fixtures in the group
func (fg *Group) HasFixtures() bool {
	return len(fg.Fixtures) > 0
}

// Count returns the number of fixtures in the group
func (fg *Group) Count() int {
	return len(fg.Fixtures)
}

// Names returns the fixture ids in sorted order.
func (fg *Group) Names() []string {
	names := maps.Keys(fg.Fixtures)
	slices.Sort(names)
	return names
}

// Each calls fn for every fixture in name order and stops at the first error.
func (fg *Group) Each(fn func(f *Fixture) error) error {
	for _, name := range fg.Names() {
		if err := fn(fg.Fixtures[name]); err != nil {
			return err
		}
	}
	return nil
}
