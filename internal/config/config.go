// Package config loads the application settings from defaults, an optional
// TOML file and MULTIVIEW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	envPrefix = "MULTIVIEW"
	appName   = "multiview"
)

// Keys
const (
	KeyLogLevel         = "log.level"
	KeyBackend          = "backend"
	KeyIdleTimeout      = "controls.idle_timeout"
	KeyWheelStep        = "controls.wheel_step"
	KeyDefaultQuality   = "playback.default_quality"
	KeyDefaultVolume    = "playback.default_volume"
	KeyStartMuted       = "playback.start_muted"
	KeyMPVBinary        = "mpv.binary"
	KeyMPVSocketDir     = "mpv.socket_dir"
	KeyMPVArgs          = "mpv.args"
	KeyLayoutDBPath     = "layout.db_path"
	KeyResolverBaseURL  = "resolver.base_url"
	KeyResolverToken    = "resolver.token"
	KeyMediaKeysEnabled = "mediakeys.enabled"
)

// Backend names
const (
	BackendMPV    = "mpv"
	BackendMemory = "memory"
)

// EnvKeyReplacer maps configuration keys to environment variable names
var EnvKeyReplacer = strings.NewReplacer(".", "_")

func defaults() map[string]any {
	return map[string]any{
		KeyLogLevel:         "info",
		KeyBackend:          BackendMPV,
		KeyIdleTimeout:      2 * time.Second,
		KeyWheelStep:        12,
		KeyDefaultQuality:   domain.QualityHigh.String(),
		KeyDefaultVolume:    100,
		KeyStartMuted:       false,
		KeyMPVBinary:        "mpv",
		KeyMPVSocketDir:     os.TempDir(),
		KeyMPVArgs:          []string{},
		KeyLayoutDBPath:     "~/.local/share/multiview/layout.db",
		KeyResolverBaseURL:  "",
		KeyResolverToken:    "",
		KeyMediaKeysEnabled: true,
	}
}

// AppConfig holds application configuration
type AppConfig struct {
	v        *viper.Viper
	quality  domain.QualityTier
	logLevel zapcore.Level
}

// Load builds the configuration. configFile may be empty, in which case
// $XDG_CONFIG_HOME/multiview/config.toml is read when it exists. overrides
// take precedence over every other source.
func Load(configFile string, overrides map[string]any) (*AppConfig, error) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	c := &AppConfig{v: v}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *AppConfig) validate() error {
	var err error
	if c.quality, err = domain.ParseQualityTier(c.v.GetString(KeyDefaultQuality)); err != nil {
		return fmt.Errorf("%s: %w", KeyDefaultQuality, err)
	}
	if c.logLevel, err = zapcore.ParseLevel(c.v.GetString(KeyLogLevel)); err != nil {
		return fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	switch b := c.Backend(); b {
	case BackendMPV, BackendMemory:
	default:
		return fmt.Errorf("%s: unknown backend %q", KeyBackend, b)
	}
	if c.v.GetDuration(KeyIdleTimeout) <= 0 {
		return fmt.Errorf("%s must be positive", KeyIdleTimeout)
	}
	if c.v.GetInt(KeyWheelStep) <= 0 {
		return fmt.Errorf("%s must be positive", KeyWheelStep)
	}
	return nil
}

// File returns the config file that was read, empty when none was
func (c *AppConfig) File() string {
	return c.v.ConfigFileUsed()
}

// GetIdleTimeout returns how long controls stay visible without pointer activity
func (c *AppConfig) GetIdleTimeout() time.Duration {
	return c.v.GetDuration(KeyIdleTimeout)
}

// GetWheelStep returns the mouse-wheel delta that maps to one volume step
func (c *AppConfig) GetWheelStep() int {
	return c.v.GetInt(KeyWheelStep)
}

// GetDefaultSettings returns the window settings for windows without a saved layout
func (c *AppConfig) GetDefaultSettings() domain.WindowSettings {
	s := domain.DefaultWindowSettings()
	s.Quality = c.quality
	s.Volume = domain.ClampVolume(c.v.GetInt(KeyDefaultVolume))
	s.IsMuted = c.v.GetBool(KeyStartMuted)
	return s
}

// GetSubscriptionToken returns the token passed to the stream resolver
func (c *AppConfig) GetSubscriptionToken() string {
	return c.v.GetString(KeyResolverToken)
}

// LogLevel returns the minimum enabled log level
func (c *AppConfig) LogLevel() zapcore.Level {
	return c.logLevel
}

// Backend returns the media backend name
func (c *AppConfig) Backend() string {
	return strings.ToLower(c.v.GetString(KeyBackend))
}

// MPVBinary returns the mpv executable
func (c *AppConfig) MPVBinary() string {
	return c.v.GetString(KeyMPVBinary)
}

// MPVSocketDir returns the directory for mpv IPC sockets
func (c *AppConfig) MPVSocketDir() string {
	return expandPath(c.v.GetString(KeyMPVSocketDir))
}

// MPVArgs returns extra mpv command line arguments
func (c *AppConfig) MPVArgs() []string {
	return c.v.GetStringSlice(KeyMPVArgs)
}

// LayoutDBPath returns the SQLite database holding saved layouts
func (c *AppConfig) LayoutDBPath() string {
	return expandPath(c.v.GetString(KeyLayoutDBPath))
}

// ResolverBaseURL returns the stream service address, empty for direct URLs
func (c *AppConfig) ResolverBaseURL() string {
	return c.v.GetString(KeyResolverBaseURL)
}

// MediaKeysEnabled reports whether desktop media keys are grabbed
func (c *AppConfig) MediaKeysEnabled() bool {
	return c.v.GetBool(KeyMediaKeysEnabled)
}

// expandPath expands environment variables and a leading ~
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}
