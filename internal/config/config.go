package config

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchelldurbincs/FogOfWar/internal/fow"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration for the application
type Config struct {
	Fog     FogConfig     `mapstructure:"fog"`
	Map     MapConfig     `mapstructure:"map"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
	Bench   BenchConfig   `mapstructure:"bench"`
	Monitor MonitorConfig `mapstructure:"monitor"`
}

// FogConfig mirrors fow.Settings in configuration friendly types
type FogConfig struct {
	Type            string        `mapstructure:"type"`
	Opacity         OpacityConfig `mapstructure:"opacity"`
	Color           [4]int        `mapstructure:"color"`
	Blur            BlurConfig    `mapstructure:"blur"`
	EasingSteps     int           `mapstructure:"easing_steps"`
	Upscale         string        `mapstructure:"upscale"`
	NoFogOfWar      bool          `mapstructure:"no_fog_of_war"`
	RevealMap       bool          `mapstructure:"reveal_map"`
	ReplayRevealMap bool          `mapstructure:"replay_reveal_map"`
	TileSize        int           `mapstructure:"tile_size"`
	Workers         int           `mapstructure:"workers"`
	LegacyTable     []int         `mapstructure:"legacy_table"`
	// LegacySheet is a PNG sprite sheet; empty means generated sprites
	LegacySheet string `mapstructure:"legacy_sheet"`
}

// OpacityConfig holds the fog alpha per vision level
type OpacityConfig struct {
	Explored int `mapstructure:"explored"`
	Revealed int `mapstructure:"revealed"`
	Unseen   int `mapstructure:"unseen"`
}

// BlurConfig holds the gaussian sigma per upscale type
type BlurConfig struct {
	Simple     float64 `mapstructure:"simple"`
	Bilinear   float64 `mapstructure:"bilinear"`
	Iterations int     `mapstructure:"iterations"`
}

// MapConfig holds world generation settings
type MapConfig struct {
	Width          int     `mapstructure:"width"`
	Height         int     `mapstructure:"height"`
	Players        int     `mapstructure:"players"`
	UnitsPerPlayer int     `mapstructure:"units_per_player"`
	SightRadius    int     `mapstructure:"sight_radius"`
	MoveChance     float64 `mapstructure:"move_chance"`
	Seed           int64   `mapstructure:"seed"`
	Allies         [][]int `mapstructure:"allies"`
}

// UIConfig holds viewer settings
type UIConfig struct {
	Window        WindowConfig `mapstructure:"window"`
	TicksPerStep  int          `mapstructure:"ticks_per_step"`
	OverviewTile  int          `mapstructure:"overview_tile"`
	VisionPlayer  int          `mapstructure:"vision_player"`
	ShowStageTime bool         `mapstructure:"show_stage_time"`
}

// WindowConfig holds window settings
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BenchConfig holds headless benchmark settings
type BenchConfig struct {
	Ticks       int    `mapstructure:"ticks"`
	ViewWidth   int    `mapstructure:"view_width"`
	ViewHeight  int    `mapstructure:"view_height"`
	FrameBudget int    `mapstructure:"frame_budget_ms"`
	DumpPNG     string `mapstructure:"dump_png"`
	ASCII       bool   `mapstructure:"ascii"`
}

// MonitorConfig controls the background goroutine monitor. An interval of
// zero leaves it stopped; leak checks after fork-join stages still run.
type MonitorConfig struct {
	GoroutineInterval int `mapstructure:"goroutine_interval_ms"`
	GoroutineAlert    int `mapstructure:"goroutine_alert"`
}

var (
	// Global config instance, swapped whole on reload
	cfg atomic.Pointer[Config]
	v   *viper.Viper
	// mu serializes viper access between callers and the file watcher
	mu sync.Mutex
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	d := fow.DefaultSettings()

	// Fog defaults
	v.SetDefault("fog.type", d.Type.String())
	v.SetDefault("fog.opacity.explored", int(d.ExploredOpacity))
	v.SetDefault("fog.opacity.revealed", int(d.RevealedOpacity))
	v.SetDefault("fog.opacity.unseen", int(d.UnseenOpacity))
	v.SetDefault("fog.color", []int{int(d.FogColor.R), int(d.FogColor.G), int(d.FogColor.B), int(d.FogColor.A)})
	v.SetDefault("fog.blur.simple", d.BlurRadius[fow.UpscaleSimple])
	v.SetDefault("fog.blur.bilinear", d.BlurRadius[fow.UpscaleBilinear])
	v.SetDefault("fog.blur.iterations", d.BlurIterations)
	v.SetDefault("fog.easing_steps", d.EasingSteps)
	v.SetDefault("fog.upscale", d.Upscale.String())
	v.SetDefault("fog.no_fog_of_war", false)
	v.SetDefault("fog.reveal_map", false)
	v.SetDefault("fog.replay_reveal_map", false)
	v.SetDefault("fog.tile_size", d.TileSize)
	v.SetDefault("fog.workers", 0)
	v.SetDefault("fog.legacy_table", d.LegacyTable[:])
	v.SetDefault("fog.legacy_sheet", "")

	// World defaults
	v.SetDefault("map.width", 64)
	v.SetDefault("map.height", 48)
	v.SetDefault("map.players", 4)
	v.SetDefault("map.units_per_player", 4)
	v.SetDefault("map.sight_radius", 5)
	v.SetDefault("map.move_chance", 0.5)
	v.SetDefault("map.seed", 0)
	v.SetDefault("map.allies", [][]int{})

	// UI defaults
	v.SetDefault("ui.window.width", 1280)
	v.SetDefault("ui.window.height", 800)
	v.SetDefault("ui.window.title", "Fog of War")
	v.SetDefault("ui.ticks_per_step", 15)
	v.SetDefault("ui.overview_tile", 4)
	v.SetDefault("ui.vision_player", 0)
	v.SetDefault("ui.show_stage_time", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Bench defaults
	v.SetDefault("bench.ticks", 600)
	v.SetDefault("bench.view_width", 40)
	v.SetDefault("bench.view_height", 25)
	v.SetDefault("bench.frame_budget_ms", 16)
	v.SetDefault("bench.dump_png", "")
	v.SetDefault("bench.ascii", false)

	// Monitor defaults
	v.SetDefault("monitor.goroutine_interval_ms", 30000)
	v.SetDefault("monitor.goroutine_alert", 1000)
}

// Init initializes the configuration
func Init(configPath string) error {
	mu.Lock()
	defer mu.Unlock()
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/fogofwar")
	}

	v.SetEnvPrefix("FOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A specific file that is missing falls back to defaults
		if configPath == "" && !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg.Store(c)
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if c := cfg.Load(); c != nil {
		return c
	}
	// Initialize with defaults if not already initialized
	if err := Init(""); err != nil {
		panic("failed to initialize config with defaults: " + err.Error())
	}
	return cfg.Load()
}

// Default returns the built-in defaults without touching the global config.
func Default() *Config {
	dv := viper.New()
	setViperDefaults(dv)
	c := &Config{}
	if err := dv.Unmarshal(c); err != nil {
		panic("invalid config defaults: " + err.Error())
	}
	return c
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()
	envFile := fmt.Sprintf("config.%s.yaml", env)
	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}
	return reload()
}

// Set allows runtime config updates. Invalid values are rejected and the
// previous config stays in effect.
func Set(key string, value interface{}) error {
	mu.Lock()
	defer mu.Unlock()
	old := v.Get(key)
	v.Set(key, value)
	if err := reload(); err != nil {
		v.Set(key, old)
		return err
	}
	return nil
}

func reload() error {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return err
	}
	cfg.Store(c)
	return nil
}

// GetString gets a string value from config
func GetString(key string) string {
	mu.Lock()
	defer mu.Unlock()
	return v.GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	mu.Lock()
	defer mu.Unlock()
	return v.GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	mu.Lock()
	defer mu.Unlock()
	return v.GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	mu.Lock()
	defer mu.Unlock()
	return v.GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. onChange runs on
// the watcher goroutine with the new config; invalid edits are logged and
// ignored.
func WatchConfig(onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		mu.Lock()
		err := reload()
		mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Str("file", e.Name).Msg("Ignoring invalid config change")
			return
		}
		log.Info().Str("file", e.Name).Str("op", e.Op.String()).Msg("Config reloaded")
		if onChange != nil {
			onChange(cfg.Load())
		}
	})
	v.WatchConfig()
}

// Settings converts the fog section to fow.Settings.
func (f FogConfig) Settings() (fow.Settings, error) {
	s := fow.DefaultSettings()

	t, err := fow.ParseFogType(f.Type)
	if err != nil {
		return s, err
	}
	s.Type = t

	if s.ExploredOpacity, err = fow.OpacityToByte(f.Opacity.Explored); err != nil {
		return s, fmt.Errorf("fog.opacity.explored: %w", err)
	}
	if s.RevealedOpacity, err = fow.OpacityToByte(f.Opacity.Revealed); err != nil {
		return s, fmt.Errorf("fog.opacity.revealed: %w", err)
	}
	if s.UnseenOpacity, err = fow.OpacityToByte(f.Opacity.Unseen); err != nil {
		return s, fmt.Errorf("fog.opacity.unseen: %w", err)
	}

	var rgba [4]uint8
	for i, ch := range f.Color {
		if ch < 0 || ch > 255 {
			return s, fmt.Errorf("%w: fog.color[%d] must be between 0 and 255", ErrInvalidConfig, i)
		}
		rgba[i] = uint8(ch)
	}
	s.FogColor = color.RGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}

	s.BlurRadius[fow.UpscaleSimple] = f.Blur.Simple
	s.BlurRadius[fow.UpscaleBilinear] = f.Blur.Bilinear
	s.BlurIterations = f.Blur.Iterations
	s.EasingSteps = f.EasingSteps

	switch strings.ToLower(f.Upscale) {
	case "bilinear", "":
		s.Upscale = fow.UpscaleBilinear
	case "simple":
		s.Upscale = fow.UpscaleSimple
	default:
		return s, fmt.Errorf("%w: fog.upscale %q", ErrInvalidConfig, f.Upscale)
	}

	s.NoFogOfWar = f.NoFogOfWar
	s.RevealMap = f.RevealMap
	s.ReplayRevealMap = f.ReplayRevealMap
	s.TileSize = f.TileSize
	s.Workers = f.Workers

	if len(f.LegacyTable) != 0 {
		if len(f.LegacyTable) != len(s.LegacyTable) {
			return s, fmt.Errorf("%w: fog.legacy_table needs %d entries, got %d",
				ErrInvalidConfig, len(s.LegacyTable), len(f.LegacyTable))
		}
		copy(s.LegacyTable[:], f.LegacyTable)
	}

	return s, s.Validate()
}

// AllyPairs converts map.allies to player pairs.
func (m MapConfig) AllyPairs() ([][2]int, error) {
	pairs := make([][2]int, 0, len(m.Allies))
	for i, a := range m.Allies {
		if len(a) != 2 {
			return nil, fmt.Errorf("%w: map.allies[%d] must name two players", ErrInvalidConfig, i)
		}
		pairs = append(pairs, [2]int{a[0], a[1]})
	}
	return pairs, nil
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if _, err := c.Fog.Settings(); err != nil {
		return fmt.Errorf("fog: %w", err)
	}

	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return fmt.Errorf("%w: map dimensions must be positive", ErrInvalidConfig)
	}
	if c.Map.Players < 1 || c.Map.Players > 16 {
		return fmt.Errorf("%w: map.players must be between 1 and 16", ErrInvalidConfig)
	}
	if c.Map.UnitsPerPlayer < 1 {
		return fmt.Errorf("%w: map.units_per_player must be positive", ErrInvalidConfig)
	}
	if c.Map.SightRadius < 1 {
		return fmt.Errorf("%w: map.sight_radius must be positive", ErrInvalidConfig)
	}
	if c.Map.MoveChance < 0 || c.Map.MoveChance > 1 {
		return fmt.Errorf("%w: map.move_chance must be between 0 and 1", ErrInvalidConfig)
	}
	pairs, err := c.Map.AllyPairs()
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if p[0] < 0 || p[0] >= c.Map.Players || p[1] < 0 || p[1] >= c.Map.Players {
			return fmt.Errorf("%w: map.allies pair %v names an unknown player", ErrInvalidConfig, p)
		}
	}

	if c.UI.Window.Width <= 0 || c.UI.Window.Height <= 0 {
		return fmt.Errorf("%w: ui.window dimensions must be positive", ErrInvalidConfig)
	}
	if c.UI.TicksPerStep <= 0 {
		return fmt.Errorf("%w: ui.ticks_per_step must be positive", ErrInvalidConfig)
	}
	if c.UI.OverviewTile <= 0 || c.UI.OverviewTile%4 != 0 {
		return fmt.Errorf("%w: ui.overview_tile must be a positive multiple of 4", ErrInvalidConfig)
	}
	if c.UI.VisionPlayer < 0 || c.UI.VisionPlayer >= c.Map.Players {
		return fmt.Errorf("%w: ui.vision_player must be a valid player index", ErrInvalidConfig)
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "console", "plain", "json":
	default:
		return fmt.Errorf("%w: logging.format must be console, plain or json", ErrInvalidConfig)
	}

	if c.Bench.Ticks <= 0 {
		return fmt.Errorf("%w: bench.ticks must be positive", ErrInvalidConfig)
	}
	if c.Bench.ViewWidth <= 0 || c.Bench.ViewHeight <= 0 {
		return fmt.Errorf("%w: bench view dimensions must be positive", ErrInvalidConfig)
	}
	if c.Bench.FrameBudget < 0 {
		return fmt.Errorf("%w: bench.frame_budget_ms must be non-negative", ErrInvalidConfig)
	}
	if c.Monitor.GoroutineInterval < 0 {
		return fmt.Errorf("%w: monitor.goroutine_interval_ms must be non-negative", ErrInvalidConfig)
	}
	if c.Monitor.GoroutineAlert <= 0 {
		return fmt.Errorf("%w: monitor.goroutine_alert must be positive", ErrInvalidConfig)
	}
	return nil
}
