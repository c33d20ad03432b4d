// Package settings loads runtime configuration for the wayfarer commands from an
// optional key=value file and WAYFARER_* environment variables.
package settings

import (
	"os"

	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var ErrInvalidSettings = eris.New("invalid settings")

type Settings struct {
	LogLevel     string `config:"WAYFARER_LOG_LEVEL"`
	ScenarioPath string `config:"WAYFARER_SCENARIO"`
	// TickRate is the demo's frames per second. The stress run is unpaced and ignores it.
	TickRate int `config:"WAYFARER_TICK_RATE"`

	StressEntities int     `config:"WAYFARER_STRESS_ENTITIES"`
	StressSeconds  float64 `config:"WAYFARER_STRESS_SECONDS"`
	// StressLoopRatio is the share of stress followers that loop forever.
	StressLoopRatio float64 `config:"WAYFARER_STRESS_LOOP_RATIO"`

	WindowWidth  int `config:"WAYFARER_WINDOW_WIDTH"`
	WindowHeight int `config:"WAYFARER_WINDOW_HEIGHT"`
}

// Defaults returns the settings used when nothing overrides them.
func Defaults() Settings {
	return Settings{
		LogLevel:        "info",
		TickRate:        60,
		StressEntities:  10000,
		StressSeconds:   10,
		StressLoopRatio: 0.5,
		WindowWidth:     1280,
		WindowHeight:    720,
	}
}

// Load applies the file at path (skipped when path is empty) and then the environment
// on top of Defaults.
func Load(path string) (Settings, error) {
	s := Defaults()

	builder := config.FromEnv()
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return s, eris.Wrapf(err, "settings file %s", path)
		}
		builder = config.From(path).FromEnv()
	}
	if err := builder.To(&s); err != nil {
		return s, eris.Wrap(err, "load settings")
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks ranges and the log level name.
func (s Settings) Validate() error {
	if _, err := zerolog.ParseLevel(s.LogLevel); err != nil {
		return eris.Wrapf(ErrInvalidSettings, "log level %q", s.LogLevel)
	}
	if s.TickRate <= 0 {
		return eris.Wrapf(ErrInvalidSettings, "tick rate must be positive, got %d", s.TickRate)
	}
	if s.StressEntities < 0 {
		return eris.Wrapf(ErrInvalidSettings, "stress entities must not be negative, got %d", s.StressEntities)
	}
	if s.StressSeconds <= 0 {
		return eris.Wrapf(ErrInvalidSettings, "stress duration must be positive, got %v", s.StressSeconds)
	}
	if s.StressLoopRatio < 0 || s.StressLoopRatio > 1 {
		return eris.Wrapf(ErrInvalidSettings, "loop ratio must be within [0, 1], got %v", s.StressLoopRatio)
	}
	if s.WindowWidth <= 0 || s.WindowHeight <= 0 {
		return eris.Wrapf(ErrInvalidSettings, "window size %dx%d", s.WindowWidth, s.WindowHeight)
	}
	return nil
}

// Logger builds a console logger at the configured level.
func (s Settings) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(s.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// FrameSeconds is the frame interval implied by TickRate.
func (s Settings) FrameSeconds() float64 {
	return 1 / float64(s.TickRate)
}
