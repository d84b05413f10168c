package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

const (
	EnvLogLevel = "ANIMA_LOG_LEVEL"
	EnvAssetDir = "ANIMA_ASSET_DIR"
)

type LoggingConfig struct {
	Level      string `toml:"level" yaml:"level"`
	Prefix     string `toml:"prefix" yaml:"prefix"`
	File       string `toml:"file" yaml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
	Compress   bool   `toml:"compress" yaml:"compress"`
}

type AssetsConfig struct {
	// TextureDir is the root searched for texture file names.
	TextureDir string `toml:"texture_dir" yaml:"texture_dir"`
	// Watch enables live reload of changed textures.
	Watch bool `toml:"watch" yaml:"watch"`
	// FlipY flips decoded images vertically.
	FlipY bool `toml:"flip_y" yaml:"flip_y"`
}

// TexturesConfig holds the sampler state given to newly loaded textures.
type TexturesConfig struct {
	MinFilter string `toml:"min_filter" yaml:"min_filter"`
	MagFilter string `toml:"mag_filter" yaml:"mag_filter"`
	WrapU     string `toml:"wrap_u" yaml:"wrap_u"`
	WrapV     string `toml:"wrap_v" yaml:"wrap_v"`
}

type EngineConfig struct {
	// MaxFrames stops the loop after that many frames. Zero runs until cancelled.
	MaxFrames uint64 `toml:"max_frames" yaml:"max_frames"`
	// TargetFPS paces the loop. Zero runs unpaced.
	TargetFPS int `toml:"target_fps" yaml:"target_fps"`
}

type Config struct {
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
	Assets   AssetsConfig   `toml:"assets" yaml:"assets"`
	Textures TexturesConfig `toml:"textures" yaml:"textures"`
	Engine   EngineConfig   `toml:"engine" yaml:"engine"`
}

var (
	validFilters = []string{"nearest", "linear"}
	validWraps   = []string{"repeat", "mirrored_repeat", "clamp_to_edge"}
)

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
		Assets: AssetsConfig{
			TextureDir: "assets/textures",
		},
		Textures: TexturesConfig{
			MinFilter: "linear",
			MagFilter: "linear",
			WrapU:     "repeat",
			WrapV:     "repeat",
		},
		Engine: EngineConfig{
			TargetFPS: 60,
		},
	}
}

// LoadConfig reads the file at path on top of the defaults. The format is
// picked from the extension. An empty path only applies the defaults and the
// environment. A .env file in the working directory is loaded if present;
// variables already set in the environment win over it.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			err = toml.Unmarshal(data, cfg)
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		default:
			return nil, fmt.Errorf("config %s: %w", path, ErrUnsupportedFormat)
		}
		if err != nil {
			return nil, fmt.Errorf("decoding config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := os.LookupEnv(EnvAssetDir); ok && v != "" {
		c.Assets.TextureDir = v
	}
}

func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	checks := []struct {
		name, value string
		valid       []string
	}{
		{"textures.min_filter", c.Textures.MinFilter, validFilters},
		{"textures.mag_filter", c.Textures.MagFilter, validFilters},
		{"textures.wrap_u", c.Textures.WrapU, validWraps},
		{"textures.wrap_v", c.Textures.WrapV, validWraps},
	}
	for _, ch := range checks {
		if !slices.Contains(ch.valid, ch.value) {
			return fmt.Errorf("%w: %s %q", ErrInvalidConfig, ch.name, ch.value)
		}
	}
	if c.Engine.TargetFPS < 0 {
		return fmt.Errorf("%w: engine.target_fps %d", ErrInvalidConfig, c.Engine.TargetFPS)
	}
	return nil
}
