package eraconsole

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Minimum window size accepted by LoadConfig.
const (
	MinScreenWidth  = 800
	MinScreenHeight = 600
)

// Environment overrides applied by LoadConfig.
const (
	EnvFontPath = "ERACONSOLE_FONT_PATH"
	EnvLogFile  = "ERACONSOLE_LOG_FILE"
)

// Config is the persisted console configuration.
type Config struct {
	WindowTitle     string  `toml:"window_title"`
	FontPath        string  `toml:"font_path"`
	FontSize        float64 `toml:"font_size"`
	ScreenWidth     int     `toml:"screen_width"`
	ScreenHeight    int     `toml:"screen_height"`
	LineHeight      int     `toml:"line_height"`
	InputAreaHeight int     `toml:"input_area_height"`
	MaxHistory      int     `toml:"max_history"`
	WheelStep       int     `toml:"wheel_step"`
	PageStep        int     `toml:"page_step"`
	WrapAccounting  string  `toml:"wrap_accounting"` // "nominal" or "rows"
	LogFile         string  `toml:"log_file"`        // session transcript; empty disables it
	DiagnosticsLog  string  `toml:"diagnostics_log"` // logrus output; empty keeps stderr
	EventsDir       string  `toml:"events_dir"`
	AssetsDir       string  `toml:"assets_dir"`
	Debug           bool    `toml:"debug"`

	Source string `toml:"-"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		WindowTitle:     "ERA Console",
		FontPath:        "./font/default.ttf",
		FontSize:        24,
		ScreenWidth:     2000,
		ScreenHeight:    1200,
		LineHeight:      30,
		InputAreaHeight: 40,
		MaxHistory:      DefaultMaxHistory,
		WheelStep:       WheelStep,
		PageStep:        PageStep,
		WrapAccounting:  WrapNominal.String(),
		LogFile:         "./logs/game_log.txt",
		EventsDir:       "./events",
		AssetsDir:       "./img",
	}
}

// ContentHeight returns the height of the scrolling content area.
func (c Config) ContentHeight() int {
	return c.ScreenHeight - c.InputAreaHeight - 2*MarginTop
}

// Validate fills zero values with defaults and raises the screen size to the
// minimum. It returns one warning per adjusted field.
func (c *Config) Validate() []string {
	def := DefaultConfig()
	var warnings []string
	fill := func(name string, v *int, d int) {
		if *v <= 0 {
			warnings = append(warnings, fmt.Sprintf("%s missing, using %d", name, d))
			*v = d
		}
	}
	fill("screen_width", &c.ScreenWidth, def.ScreenWidth)
	fill("screen_height", &c.ScreenHeight, def.ScreenHeight)
	fill("line_height", &c.LineHeight, def.LineHeight)
	fill("input_area_height", &c.InputAreaHeight, def.InputAreaHeight)
	fill("max_history", &c.MaxHistory, def.MaxHistory)
	fill("wheel_step", &c.WheelStep, def.WheelStep)
	fill("page_step", &c.PageStep, def.PageStep)
	if c.FontSize <= 0 {
		warnings = append(warnings, fmt.Sprintf("font_size missing, using %g", def.FontSize))
		c.FontSize = def.FontSize
	}
	if c.ScreenWidth < MinScreenWidth || c.ScreenHeight < MinScreenHeight {
		warnings = append(warnings, fmt.Sprintf("screen %dx%d too small, raised to the %dx%d minimum",
			c.ScreenWidth, c.ScreenHeight, MinScreenWidth, MinScreenHeight))
		c.ScreenWidth = max(c.ScreenWidth, MinScreenWidth)
		c.ScreenHeight = max(c.ScreenHeight, MinScreenHeight)
	}
	if _, err := ParseWrapAccounting(c.WrapAccounting); err != nil {
		warnings = append(warnings, err.Error())
		c.WrapAccounting = def.WrapAccounting
	}
	return warnings
}

// LoadConfig reads a TOML config. A missing file is created with the
// defaults. Keys absent from the file keep their default values. The
// returned config is always usable: on a parse error it holds the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, errors.New("eraconsole: config path is empty")
	}
	cfg.Source = path
	log := Named("config")

	content, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := SaveConfig(path, cfg); err != nil {
			log.WithError(err).Warn("could not write default config")
		} else {
			log.WithField("path", path).Info("created default config")
		}
	case err != nil:
		return cfg, fmt.Errorf("eraconsole: read config: %w", err)
	default:
		if err := toml.Unmarshal(content, &cfg); err != nil {
			def := DefaultConfig()
			def.Source = path
			applyEnv(&def)
			return def, fmt.Errorf("eraconsole: parse config %s: %w", path, err)
		}
	}

	for _, w := range cfg.Validate() {
		log.Warn(w)
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if env := strings.TrimSpace(os.Getenv(EnvFontPath)); env != "" {
		cfg.FontPath = env
	}
	if env := strings.TrimSpace(os.Getenv(EnvLogFile)); env != "" {
		cfg.LogFile = env
	}
}

// SaveConfig writes cfg as TOML, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if path == "" {
		return errors.New("eraconsole: config path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
