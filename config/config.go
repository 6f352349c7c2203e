// Package config loads settings and sets up the shared logger and Supabase
// client.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port     int            `yaml:"port" validate:"min=1,max=65535"`
	LogLevel string         `yaml:"log_level" validate:"oneof=debug info warn error"`
	Store    StoreConfig    `yaml:"store"`
	Supabase SupabaseConfig `yaml:"supabase"`
	Render   RenderConfig   `yaml:"render"`
	Editor   EditorConfig   `yaml:"editor"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver" validate:"oneof=sqlite supabase memory"`
	SQLitePath string `yaml:"sqlite_path" validate:"required_if=Driver sqlite"`
}

type SupabaseConfig struct {
	URL        string `yaml:"url"`
	ServiceKey string `yaml:"service_key"`
}

type RenderConfig struct {
	// GRPCAddr of the remote pipeline; empty renders locally with ffmpeg.
	GRPCAddr  string `yaml:"grpc_addr"`
	Workers   int    `yaml:"workers" validate:"min=1"`
	QueueSize int    `yaml:"queue_size" validate:"min=1"`
	OutputDir string `yaml:"output_dir" validate:"required"`
	// ProbeOnOpen runs ffprobe on the source when a session opens without a
	// stored duration.
	ProbeOnOpen bool `yaml:"probe_on_open"`
}

type EditorConfig struct {
	DefaultClipSeconds float64 `yaml:"default_clip_seconds" validate:"gte=1"`
	FallbackPadSeconds float64 `yaml:"fallback_pad_seconds" validate:"gt=0"`
	LongPressMS        int     `yaml:"long_press_ms" validate:"min=1"`
	TouchJitterPX      float64 `yaml:"touch_jitter_px" validate:"gt=0"`
	TickIntervalMS     int     `yaml:"tick_interval_ms" validate:"min=1"`
}

func (e EditorConfig) LongPress() time.Duration {
	return time.Duration(e.LongPressMS) * time.Millisecond
}

func Default() Config {
	return Config{
		Port:     8080,
		LogLevel: "info",
		Store:    StoreConfig{Driver: "sqlite", SQLitePath: "data/clipdeck.db"},
		Render:   RenderConfig{Workers: 4, QueueSize: 100, OutputDir: "renders"},
		Editor: EditorConfig{
			DefaultClipSeconds: 60,
			FallbackPadSeconds: 3,
			LongPressMS:        500,
			TouchJitterPX:      10,
			TickIntervalMS:     100,
		},
	}
}

// Load reads path over the defaults (a missing path is allowed when empty),
// applies environment overrides and validates.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"CLIPDECK_LOG_LEVEL":   &c.LogLevel,
		"CLIPDECK_STORE":       &c.Store.Driver,
		"CLIPDECK_SQLITE_PATH": &c.Store.SQLitePath,
		"SUPABASE_URL":         &c.Supabase.URL,
		"SUPABASE_SERVICE_KEY": &c.Supabase.ServiceKey,
		"CLIPDECK_RENDER_ADDR": &c.Render.GRPCAddr,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup("CLIPDECK_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CLIPDECK_PORT: %w", err)
		}
		c.Port = port
	}
	return nil
}

var validate = validator.New()

// Validate checks field ranges and the credentials the chosen store needs.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed on '%s'", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Store.Driver == "supabase" && (c.Supabase.URL == "" || c.Supabase.ServiceKey == "") {
		return fmt.Errorf("invalid config: %w", ErrSupabaseCredentials)
	}
	return nil
}
