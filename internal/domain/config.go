package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Download DownloadConfig `mapstructure:"download"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig contains the admin HTTP API configuration
type ServerConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// TelegramConfig contains Telegram transport configuration.
// Token comes from the BOT_TOKEN environment variable.
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"` // long-poll timeout in seconds
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	BaseDir      string        `mapstructure:"base_dir"`
	DownloadsDir string        `mapstructure:"downloads_dir"`
	ArchivesDir  string        `mapstructure:"archives_dir"`
	FailedDir    string        `mapstructure:"failed_dir"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"` // per attempt, not per batch
	FFmpegBinary string        `mapstructure:"ffmpeg_binary"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
}

// DatabaseConfig contains the user store configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Enabled: true,
			Host:    "localhost",
			Port:    8080,
		},
		Telegram: TelegramConfig{
			PollTimeout: 30,
		},
		Download: DownloadConfig{
			BaseDir:      "$HOME/.yt-courier",
			DownloadsDir: "$HOME/.yt-courier/downloads",
			ArchivesDir:  "$HOME/.yt-courier/playlist_zip",
			FailedDir:    "$HOME/.yt-courier/failed_lists",
			MaxAttempts:  3,
			RetryDelay:   0,
			FetchTimeout: 10 * time.Minute,
			FFmpegBinary: "ffmpeg",
			SessionTTL:   30 * time.Minute,
		},
		Database: DatabaseConfig{
			Path: "$HOME/.yt-courier/users.db",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
