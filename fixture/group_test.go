package fixture

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureInMultipleGroups(t *testing.T) {
	t.Parallel()

	fix := NewFixture("fix1", 1, 138, testPar)

	// add the fixture to two fixture groups
	fg1 := NewGroup()
	fg2 := NewGroup()
	fg1.AddFixture("fix1", fix)
	fg2.AddFixture("left_par", fix)

	fix1, err := fg1.GetFixture("fix1")
	require.NoError(t, err)
	fix1.SetIntensity(0.6)

	fix2, err := fg2.GetFixture("left_par")
	require.NoError(t, err)
	assert.Equal(t, 0.6, fix2.Intensity())

	_, err = fg2.GetFixture("fix1")
	assert.Error(t, err)
}

func TestGroupNamesAreSorted(t *testing.T) {
	t.Parallel()

	g := NewGroup()
	assert.False(t, g.HasFixtures())

	for _, name := range []string{"right", "centre", "left"} {
		g.AddFixture(name, NewFixture(name, 1, 1, testRGB))
	}
	assert.Equal(t, 3, g.Count())
	assert.Equal(t, []string{"centre", "left", "right"}, g.Names())

	visited := []string{}
	require.NoError(t, g.Each(func(f *Fixture) error {
		visited = append(visited, f.Name)
		return nil
	}))
	assert.Equal(t, g.Names(), visited)
}
