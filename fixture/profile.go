package fixture

const (
	ChannelTypeIntensity = "channel:type:intensity"
	ChannelTypeStrobe    = "channel:type:strobe"

	ChannelTypeRed   = "channel:type:red"
	ChannelTypeGreen = "channel:type:green"
	ChannelTypeBlue  = "channel:type:blue"
	ChannelTypeWhite = "channel:type:white"

	ChannelTypeMotorPosition = "channel:type:motor:position"
	ChannelTypeMotorSpeed    = "channel:type:motor:speed"

	ChannelTypeFunctionSelect = "channel:type:function:select"
	ChannelTypeFunctionSpeed  = "channel:type:function:speed"

	ChannelTypeUnknown = "channel:type:unknown"
)

// Profile holds info for a fixture profile including the channel mappings.
type Profile struct {
	Name string

	// The fixture channels, relative to the start address (1-based)
	Channels map[string]int
}

// ChannelCount returns the number of DMX channels the profile occupies.
func (p Profile) ChannelCount() int {
	highest := 0
	for _, offset := range p.Channels {
		if offset > highest {
			highest = offset
		}
	}
	return highest
}

// HasChannel reports whether the profile has a channel of the given type.
func (p Profile) HasChannel(channelType string) bool {
	_, ok := p.Channels[channelType]
	return ok
}
