package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"waitroom/internal/engine"
)

// ErrInvalidServer is returned for server settings outside their allowed bounds.
var ErrInvalidServer = errors.New("invalid server settings")

// Config struct is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Game     GameConfig     `mapstructure:"game"`
	Terminal TerminalConfig `mapstructure:"terminal"`
}

// ServerConfig holds settings for the HTTP shell.
type ServerConfig struct {
	Port      string `mapstructure:"port"`
	Mode      string `mapstructure:"mode"`
	RateLimit int    `mapstructure:"rate_limit"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// GameConfig holds the trial settings, in milliseconds where timed.
type GameConfig struct {
	TotalRounds     int     `mapstructure:"total_rounds"`
	FalseTargetRate float64 `mapstructure:"false_target_rate"`
	MinWaitMs       int     `mapstructure:"min_wait_ms"`
	MaxWaitMs       int     `mapstructure:"max_wait_ms"`
	TargetVisibleMs int     `mapstructure:"target_visible_ms"`
	CountdownMs     int     `mapstructure:"countdown_ms"`
	UserID          string  `mapstructure:"user_id"`
}

// TerminalConfig holds settings for the terminal shell.
type TerminalConfig struct {
	Mouse bool `mapstructure:"mouse"`
	Sound bool `mapstructure:"sound"`
}

// Settings converts the game section into engine settings.
func (g GameConfig) Settings() engine.Settings {
	return engine.Settings{
		TotalRounds:     g.TotalRounds,
		FalseTargetRate: g.FalseTargetRate,
		MinWait:         time.Duration(g.MinWaitMs) * time.Millisecond,
		MaxWait:         time.Duration(g.MaxWaitMs) * time.Millisecond,
		TargetVisible:   time.Duration(g.TargetVisibleMs) * time.Millisecond,
		Countdown:       time.Duration(g.CountdownMs) * time.Millisecond,
		UserID:          g.UserID,
	}
}

// setDefaults sets the default values for the configuration.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.rate_limit", 30) // start/reset requests per minute

	// Logging defaults
	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.max_size", 10)   // 10 MB
	v.SetDefault("logging.max_backups", 3) // Keep 3 backups
	v.SetDefault("logging.max_age", 7)     // 7 days
	v.SetDefault("logging.compress", true) // Compress old logs

	// Game defaults
	defaults := engine.DefaultSettings()
	v.SetDefault("game.total_rounds", defaults.TotalRounds)
	v.SetDefault("game.false_target_rate", defaults.FalseTargetRate)
	v.SetDefault("game.min_wait_ms", defaults.MinWait.Milliseconds())
	v.SetDefault("game.max_wait_ms", defaults.MaxWait.Milliseconds())
	v.SetDefault("game.target_visible_ms", defaults.TargetVisible.Milliseconds())
	v.SetDefault("game.countdown_ms", defaults.Countdown.Milliseconds())
	v.SetDefault("game.user_id", defaults.UserID)

	// Terminal defaults
	v.SetDefault("terminal.mouse", true)
	v.SetDefault("terminal.sound", false)
}

// Load reads config.yaml from configDir, layering defaults and WAITROOM_*
// environment variables. A missing file is not an error.
func Load(configDir string) (*Config, *viper.Viper, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	// --- File Configuration ---
	v.AddConfigPath(filepath.Clean(configDir))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Binding ---
	v.SetEnvPrefix("WAITROOM") // e.g., WAITROOM_GAME_TOTAL_ROUNDS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, errors.Wrap(err, "error reading config file")
		}
	}

	conf, err := decode(v)
	if err != nil {
		return nil, nil, err
	}
	return conf, v, nil
}

// Watch reloads the file on change and hands every valid configuration to onChange.
// Invalid game settings are logged and skipped.
func Watch(v *viper.Viper, log *zap.Logger, onChange func(*Config)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		conf, err := decode(v)
		if err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
			return
		}
		onChange(conf)
	})
	v.WatchConfig()
}

func decode(v *viper.Viper) (*Config, error) {
	var conf Config
	if err := v.Unmarshal(&conf); err != nil {
		return nil, errors.Wrap(err, "unable to decode config into struct")
	}
	if conf.Server.RateLimit <= 0 {
		return nil, errors.Wrapf(ErrInvalidServer, "rate limit must be positive, got %d", conf.Server.RateLimit)
	}
	if err := conf.Game.Settings().Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid game section")
	}
	return &conf, nil
}
