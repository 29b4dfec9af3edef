package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gruntwork-io/go-commons/errors"
	"github.com/robmorgan/metronome/effect"
	"github.com/robmorgan/metronome/fixture"
	"github.com/robmorgan/metronome/rhythm"
	"github.com/robmorgan/metronome/utils"
	"gopkg.in/yaml.v3"
)

// MetronomeConfig represents options that configure the global behavior of the program
type MetronomeConfig struct {
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Audio     AudioConfig     `yaml:"audio"`
	API       APIConfig       `yaml:"api"`
	OSC       OSCConfig       `yaml:"osc"`
	DMX       DMXConfig       `yaml:"dmx"`

	LogLevel string `yaml:"log_level"`
	// LogFile receives log output while the terminal UI owns the screen.
	LogFile string `yaml:"log_file"`

	// The fixture profiles
	FixtureProfiles map[string]fixture.Profile `yaml:"-"`
}

type SchedulerConfig struct {
	// Lookahead is how often the scheduling tick fires.
	Lookahead time.Duration `yaml:"lookahead"`
	// ScheduleAhead is how far past the device clock beats are committed.
	ScheduleAhead time.Duration `yaml:"schedule_ahead"`
	StartOffset   time.Duration `yaml:"start_offset"`
	BeatsPerBar   int           `yaml:"beats_per_bar"`
	Tempo         float64       `yaml:"tempo"`
	SuspendOnStop bool          `yaml:"suspend_on_stop"`
}

type AudioConfig struct {
	SampleRate  int           `yaml:"sample_rate"`
	Buffer      time.Duration `yaml:"buffer"`
	Frequency   float64       `yaml:"frequency"`
	Peak        float64       `yaml:"peak"`
	Floor       float64       `yaml:"floor"`
	Attack      time.Duration `yaml:"attack"`
	Decay       time.Duration `yaml:"decay"`
	Release     time.Duration `yaml:"release"`
	AttackCurve string        `yaml:"attack_curve"`
}

type APIConfig struct {
	Port int `yaml:"port"`
}

type OSCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
}

type DMXConfig struct {
	Enabled    bool          `yaml:"enabled"`
	OLAAddress string        `yaml:"ola_address"`
	Frame      time.Duration `yaml:"frame"`
	// Decay is how long a fixture takes to fade out after a beat.
	Decay         time.Duration    `yaml:"decay"`
	DownbeatColor string           `yaml:"downbeat_color"`
	BeatColor     string           `yaml:"beat_color"`
	Fixtures      []PatchedFixture `yaml:"fixtures"`
}

// NewMetronomeConfig creates a config with reasonable defaults for real usage.
func NewMetronomeConfig() MetronomeConfig {
	return MetronomeConfig{
		Scheduler: SchedulerConfig{
			Lookahead:     25 * time.Millisecond,
			ScheduleAhead: 100 * time.Millisecond,
			StartOffset:   50 * time.Millisecond,
			BeatsPerBar:   4,
			Tempo:         utils.DefaultTempo,
		},
		Audio: AudioConfig{
			SampleRate:  44100,
			Buffer:      10 * time.Millisecond,
			Frequency:   1000,
			Peak:        0.2,
			Floor:       0.001,
			Attack:      5 * time.Millisecond,
			Decay:       45 * time.Millisecond,
			Release:     10 * time.Millisecond,
			AttackCurve: "linear",
		},
		API: APIConfig{Port: 3000},
		OSC: OSCConfig{
			Host:    "127.0.0.1",
			Port:    9000,
			Address: "/metronome/beat",
		},
		DMX: DMXConfig{
			OLAAddress:    "localhost:9010",
			Frame:         40 * time.Millisecond,
			Decay:         200 * time.Millisecond,
			DownbeatColor: "#ff2d00",
			BeatColor:     "#ffffff",
			Fixtures:      PatchFixtures(),
		},
		LogLevel:        "info",
		FixtureProfiles: initializeFixtureProfiles(),
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (MetronomeConfig, error) {
	cfg := NewMetronomeConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.WithStackTrace(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.WithStackTrace(fmt.Errorf("parse config %s: %w", path, err))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the config for values the program cannot run with.
func (c MetronomeConfig) Validate() error {
	s := c.Scheduler
	if s.Lookahead <= 0 {
		return fmt.Errorf("scheduler.lookahead must be positive, got %s", s.Lookahead)
	}
	if s.Tempo < utils.MinTempo || s.Tempo > utils.MaxTempo {
		return fmt.Errorf("scheduler.tempo must be within [%v, %v], got %v", utils.MinTempo, utils.MaxTempo, s.Tempo)
	}
	if s.BeatsPerBar < 1 {
		return fmt.Errorf("scheduler.beats_per_bar must be at least 1, got %d", s.BeatsPerBar)
	}
	if s.StartOffset < 0 {
		return fmt.Errorf("scheduler.start_offset must not be negative, got %s", s.StartOffset)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.Buffer <= 0 {
		return fmt.Errorf("audio.buffer must be positive, got %s", c.Audio.Buffer)
	}
	// the device pulls a whole buffer at once, so a shorter window can miss beats
	if s.ScheduleAhead <= 2*c.Audio.Buffer {
		return fmt.Errorf("scheduler.schedule_ahead (%s) must exceed twice audio.buffer (%s)", s.ScheduleAhead, c.Audio.Buffer)
	}
	if c.Audio.Frequency <= 0 {
		return fmt.Errorf("audio.frequency must be positive, got %v", c.Audio.Frequency)
	}
	if _, err := c.Envelope(); err != nil {
		return err
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port %d is out of range", c.API.Port)
	}
	if c.OSC.Enabled && (c.OSC.Port <= 0 || c.OSC.Port > 65535) {
		return fmt.Errorf("osc.port %d is out of range", c.OSC.Port)
	}
	// the terminal indicator uses the beat colours even without lights
	if _, err := fixture.ParseColor(c.DMX.DownbeatColor); err != nil {
		return err
	}
	if _, err := fixture.ParseColor(c.DMX.BeatColor); err != nil {
		return err
	}
	if c.DMX.Enabled {
		if c.DMX.Frame <= 0 {
			return fmt.Errorf("dmx.frame must be positive, got %s", c.DMX.Frame)
		}
		for _, f := range c.DMX.Fixtures {
			if err := f.Validate(c.FixtureProfiles); err != nil {
				return err
			}
		}
	}
	return nil
}

// SchedulerOptions maps the scheduler section onto the metronome options.
func (c MetronomeConfig) SchedulerOptions() rhythm.Options {
	return rhythm.Options{
		Tempo:         c.Scheduler.Tempo,
		BeatsPerBar:   c.Scheduler.BeatsPerBar,
		Lookahead:     c.Scheduler.Lookahead,
		ScheduleAhead: c.Scheduler.ScheduleAhead,
		StartOffset:   c.Scheduler.StartOffset,
		SuspendOnStop: c.Scheduler.SuspendOnStop,
	}
}

// Envelope builds the click envelope from the audio section.
func (c MetronomeConfig) Envelope() (effect.Envelope, error) {
	curve, err := effect.CurveByName(c.Audio.AttackCurve)
	if err != nil {
		return effect.Envelope{}, err
	}
	env := effect.Envelope{
		Peak:        c.Audio.Peak,
		Floor:       c.Audio.Floor,
		Attack:      c.Audio.Attack.Seconds(),
		Decay:       c.Audio.Decay.Seconds(),
		Release:     c.Audio.Release.Seconds(),
		AttackCurve: curve,
	}
	if err := env.Validate(); err != nil {
		return effect.Envelope{}, err
	}
	return env, nil
}
