package fixture

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/metronome/engine/scale"
)

// ParseColor parses a "#rrggbb" colour.
func ParseColor(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return c, nil
}

// channelValue encodes one channel of a fixture showing color at level.
// Fixtures without a dimmer channel get their colour scaled instead.
func channelValue(channelType string, c colorful.Color, level float64, hasDimmer bool) (byte, bool) {
	c = c.Clamped()
	if !hasDimmer {
		c = colorful.Color{R: c.R * level, G: c.G * level, B: c.B * level}
	}

	switch channelType {
	case ChannelTypeIntensity:
		return scale.ToDMX(level), true
	case ChannelTypeRed:
		return scale.ToDMX(c.R), true
	case ChannelTypeGreen:
		return scale.ToDMX(c.G), true
	case ChannelTypeBlue:
		return scale.ToDMX(c.B), true
	}
	return 0, false
}
