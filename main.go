package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/faiface/beep"
	"github.com/gruntwork-io/go-commons/errors"
	"github.com/nickysemenza/gola"
	"github.com/robmorgan/metronome/api"
	"github.com/robmorgan/metronome/audio"
	"github.com/robmorgan/metronome/config"
	"github.com/robmorgan/metronome/fixture"
	"github.com/robmorgan/metronome/logger"
	"github.com/robmorgan/metronome/oscsync"
	"github.com/robmorgan/metronome/rhythm"
	"github.com/robmorgan/metronome/setlist"
	"github.com/robmorgan/metronome/tui"
	"github.com/robmorgan/metronome/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
)

var (
	configPath string
	tempoFlag  string
	withAPI    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "metronome",
	Short: "A practice metronome with presets and setlists",
	Long: `metronome plays a sample-accurate click at the selected tempo and keeps a
beat indicator in step with it. Presets and setlists can be managed over a
small REST API, and beats can be forwarded to OSC receivers and DMX lights.

Examples:
  metronome play --tempo 96bpm
  metronome play --api
  metronome serve --config metronome.yaml`,
	SilenceUsage: true,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Run the metronome in the terminal",
	RunE:  runPlay,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the metronome headless, controlled over the REST API",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&tempoFlag, "tempo", "t", "", "starting tempo, e.g. 120 or 96bpm")
	playCmd.Flags().BoolVar(&withAPI, "api", false, "also serve the REST API while the terminal UI runs")

	rootCmd.AddCommand(playCmd, serveCmd)
}

// app holds everything a run shares: the audio device, the scheduler and
// the preset library.
type app struct {
	cfg       config.MetronomeConfig
	metronome *rhythm.Metronome
	library   *setlist.Library
	cursor    *setlist.Cursor
}

func loadConfig() (config.MetronomeConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if tempoFlag != "" {
		bpm, err := utils.ParseTempo(tempoFlag)
		if err != nil {
			return cfg, err
		}
		cfg.Scheduler.Tempo = bpm
	}
	if err := logger.SetLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func newApp(cfg config.MetronomeConfig) (*app, error) {
	env, err := cfg.Envelope()
	if err != nil {
		return nil, err
	}

	device := audio.NewContext(audio.Speaker{}, beep.SampleRate(cfg.Audio.SampleRate), cfg.Audio.Buffer)
	click, err := audio.NewClick(device, cfg.Audio.Frequency, env)
	if err != nil {
		return nil, err
	}

	m, err := rhythm.NewMetronome(clock.RealClock{}, device, click, cfg.SchedulerOptions())
	if err != nil {
		return nil, err
	}

	library := setlist.NewLibrary()
	return &app{
		cfg:       cfg,
		metronome: m,
		library:   library,
		cursor:    setlist.NewCursor(library, m),
	}, nil
}

// startSinks runs the optional beat consumers: OSC forwarding and DMX lights.
func (a *app) startSinks(ctx context.Context, g *errgroup.Group) {
	logger := logger.GetProjectLogger()

	if a.cfg.OSC.Enabled {
		fwd := oscsync.NewForwarder(a.cfg.OSC.Host, a.cfg.OSC.Port, a.cfg.OSC.Address)
		l := a.metronome.Subscribe()
		g.Go(func() error { return fwd.Run(ctx, l) })
	}

	if a.cfg.DMX.Enabled {
		logger.Info("Connecting to OLA...")
		client, err := gola.New(a.cfg.DMX.OLAAddress)
		if err != nil {
			logger.Errorf("could not connect to OLA: %v", err)
			return
		}

		group := fixture.NewGroup()
		for _, p := range a.cfg.DMX.Fixtures {
			group.AddFixture(p.Name, fixture.NewFixture(p.Name, p.Universe, p.Address, a.cfg.FixtureProfiles[p.Profile]))
		}

		colors, err := beatColors(a.cfg)
		if err != nil {
			logger.WithError(err).Error("Could not configure DMX colours")
			return
		}
		state := fixture.NewDMXState()
		flasher := fixture.NewFlasher(group, state, a.cfg.DMX.Frame, a.cfg.DMX.Decay, colors.Downbeat, colors.Beat)

		l := a.metronome.Subscribe()
		g.Go(func() error { return flasher.Run(ctx, clock.RealClock{}, a.cfg.DMX.Frame, l) })
		g.Go(func() error { return fixture.SendDMXWorker(ctx, client, clock.RealClock{}, a.cfg.DMX.Frame, state) })
	}
}

// beatColors parses the downbeat and beat colours shared by the terminal
// indicator and the lights.
func beatColors(cfg config.MetronomeConfig) (tui.Colors, error) {
	downbeat, err := fixture.ParseColor(cfg.DMX.DownbeatColor)
	if err != nil {
		return tui.Colors{}, err
	}
	beat, err := fixture.ParseColor(cfg.DMX.BeatColor)
	if err != nil {
		return tui.Colors{}, err
	}
	return tui.Colors{Downbeat: downbeat, Beat: beat}, nil
}

func (a *app) startAPI(ctx context.Context, g *errgroup.Group) {
	srv := api.NewServer(a.metronome, a.library, a.cursor)
	g.Go(func() error { return srv.Run(ctx, a.cfg.API.Port) })
}

// wait collects the workers and tears the audio device down.
func (a *app) wait(g *errgroup.Group) error {
	err := g.Wait()
	if closeErr := a.metronome.Close(); closeErr != nil {
		logger.GetProjectLogger().WithError(closeErr).Warn("Could not release audio device")
	}
	if err != nil && !errors.IsError(err, context.Canceled) {
		return err
	}
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// the terminal belongs to the UI
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return errors.WithStackTrace(err)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger.SetOutput(io.Discard)
	}

	colors, err := beatColors(cfg)
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	g, ctx := errgroup.WithContext(ctx)
	a.startSinks(ctx, g)
	if withAPI {
		a.startAPI(ctx, g)
	}

	uiErr := tui.Run(a.metronome, a.cursor, colors)

	cancel()
	if err := a.wait(g); err != nil {
		return err
	}
	return uiErr
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	a.startSinks(ctx, g)
	a.startAPI(ctx, g)

	logger.GetProjectLogger().Info("Metronome serving, press ctrl+c to exit")
	return a.wait(g)
}
