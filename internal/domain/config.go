package domain

import (
	"net"
	"strconv"
	"time"
)

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Spotify      SpotifyConfig      `mapstructure:"spotify"`
	YouTube      YouTubeConfig      `mapstructure:"youtube"`
	Download     DownloadConfig     `mapstructure:"download"`
	Pacing       PacingConfig       `mapstructure:"pacing"`
	History      HistoryConfig      `mapstructure:"history"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Debug           bool          `mapstructure:"debug"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SpotifyConfig contains metadata provider configuration
type SpotifyConfig struct {
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	PageSize      int    `mapstructure:"page_size"`       // playlist listing page size
	AlbumPageSize int    `mapstructure:"album_page_size"` // album track listing page size
	MaxPages      int    `mapstructure:"max_pages"`
}

// YouTubeConfig contains search provider configuration
type YouTubeConfig struct {
	APIKey       string `mapstructure:"api_key"`
	QuerySuffix  string `mapstructure:"query_suffix"`
	IncludeAlbum bool   `mapstructure:"include_album"`
}

// DownloadConfig contains fetch and packaging configuration
type DownloadConfig struct {
	WorkDir         string `mapstructure:"work_dir"`
	YTDLPBinary     string `mapstructure:"ytdlp_binary"`
	FFmpegLocation  string `mapstructure:"ffmpeg_location"`
	DefaultQuality  string `mapstructure:"default_quality"`
	DefaultType     string `mapstructure:"default_type"`
	AudioFormat     string `mapstructure:"audio_format"`
	AudioQuality    string `mapstructure:"audio_quality"`
	ArchiveName     string `mapstructure:"archive_name"`
	AllowOutputPath bool   `mapstructure:"allow_output_path"`
	TagAudio        bool   `mapstructure:"tag_audio"`
}

// PacingConfig controls the delay inserted between tracks of a batch
type PacingConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Jitter   time.Duration `mapstructure:"jitter"`
}

// HistoryConfig contains batch history storage configuration
type HistoryConfig struct {
	DatabasePath string `mapstructure:"database_path"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
	LogsDir    string `mapstructure:"logs_dir"`    // categorized JSON logs
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			Debug:           false,
			CORSOrigins:     []string{"*"},
			ShutdownTimeout: 30 * time.Second,
		},
		Spotify: SpotifyConfig{
			PageSize:      100,
			AlbumPageSize: 50,
			MaxPages:      100,
		},
		YouTube: YouTubeConfig{
			QuerySuffix:  "official full video song",
			IncludeAlbum: true,
		},
		Download: DownloadConfig{
			WorkDir:         "",
			YTDLPBinary:     "yt-dlp",
			DefaultQuality:  string(Quality1080p),
			DefaultType:     string(TypeVideo),
			AudioFormat:     "mp3",
			AudioQuality:    "192K",
			ArchiveName:     "spotify_download.zip",
			AllowOutputPath: false,
			TagAudio:        true,
		},
		Pacing: PacingConfig{
			Interval: 5 * time.Second,
			Jitter:   0,
		},
		History: HistoryConfig{
			DatabasePath: "$HOME/.musicbridge/history.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
			LogsDir:    "$HOME/.musicbridge/logs",
		},
	}
}

// Address returns the host:port the server listens on
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
