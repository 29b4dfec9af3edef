package config

import "github.com/robmorgan/metronome/fixture"

func initializeFixtureProfiles() map[string]fixture.Profile {
	out := map[string]fixture.Profile{
		"shehds-par": {
			Name: "Shehds LED Flat PAR 12x3W RGBW",
			Channels: map[string]int{
				fixture.ChannelTypeIntensity:      1,
				fixture.ChannelTypeRed:            2,
				fixture.ChannelTypeGreen:          3,
				fixture.ChannelTypeBlue:           4,
				fixture.ChannelTypeWhite:          5,
				fixture.ChannelTypeStrobe:         6,
				fixture.ChannelTypeFunctionSelect: 7,
				fixture.ChannelTypeUnknown:        8,
			},
		},
		"shehds-led-bar-beam-8x12w": {
			Name: "Shehds LED Bar Beam 8x12W RGBW",
			// 9 channel mode
			Channels: map[string]int{
				fixture.ChannelTypeMotorPosition:  1,
				fixture.ChannelTypeMotorSpeed:     2,
				fixture.ChannelTypeFunctionSelect: 3,
				fixture.ChannelTypeFunctionSpeed:  4,
				fixture.ChannelTypeIntensity:      5,
				fixture.ChannelTypeRed:            6,
				fixture.ChannelTypeGreen:          7,
				fixture.ChannelTypeBlue:           8,
				fixture.ChannelTypeWhite:          9,
			},
		},
		"generic-rgb": {
			Name: "Generic 3 channel RGB",
			Channels: map[string]int{
				fixture.ChannelTypeRed:   1,
				fixture.ChannelTypeGreen: 2,
				fixture.ChannelTypeBlue:  3,
			},
		},
		"generic-dimmer": {
			Name: "Generic dimmer",
			Channels: map[string]int{
				fixture.ChannelTypeIntensity: 1,
			},
		},
	}

	return out
}
