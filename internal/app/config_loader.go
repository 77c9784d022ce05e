package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/musicbridge/musicbridge/internal/domain"
	"github.com/spf13/viper"
)

// envAliases binds the credential variable names used by deployments
// alongside the prefixed MUSICBRIDGE_* names.
var envAliases = map[string]string{
	"spotify.client_id":     "SPOTIFY_CLIENT_ID",
	"spotify.client_secret": "SPOTIFY_CLIENT_SECRET",
	"youtube.api_key":       "YOUTUBE_API_KEY",
}

// LoadConfig loads configuration from defaults, file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, domain.DefaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.musicbridge")
		v.AddConfigPath("/etc/musicbridge")
	}

	v.SetEnvPrefix("MUSICBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		prefixed := "MUSICBRIDGE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, d *domain.Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.debug", d.Server.Debug)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("spotify.client_id", d.Spotify.ClientID)
	v.SetDefault("spotify.client_secret", d.Spotify.ClientSecret)
	v.SetDefault("spotify.page_size", d.Spotify.PageSize)
	v.SetDefault("spotify.album_page_size", d.Spotify.AlbumPageSize)
	v.SetDefault("spotify.max_pages", d.Spotify.MaxPages)

	v.SetDefault("youtube.api_key", d.YouTube.APIKey)
	v.SetDefault("youtube.query_suffix", d.YouTube.QuerySuffix)
	v.SetDefault("youtube.include_album", d.YouTube.IncludeAlbum)

	v.SetDefault("download.work_dir", d.Download.WorkDir)
	v.SetDefault("download.ytdlp_binary", d.Download.YTDLPBinary)
	v.SetDefault("download.ffmpeg_location", d.Download.FFmpegLocation)
	v.SetDefault("download.default_quality", d.Download.DefaultQuality)
	v.SetDefault("download.default_type", d.Download.DefaultType)
	v.SetDefault("download.audio_format", d.Download.AudioFormat)
	v.SetDefault("download.audio_quality", d.Download.AudioQuality)
	v.SetDefault("download.archive_name", d.Download.ArchiveName)
	v.SetDefault("download.allow_output_path", d.Download.AllowOutputPath)
	v.SetDefault("download.tag_audio", d.Download.TagAudio)

	v.SetDefault("pacing.interval", d.Pacing.Interval)
	v.SetDefault("pacing.jitter", d.Pacing.Jitter)

	v.SetDefault("history.database_path", d.History.DatabasePath)

	v.SetDefault("notification.enabled", d.Notification.Enabled)
	v.SetDefault("notification.method", d.Notification.Method)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_path", d.Logging.OutputPath)
	v.SetDefault("logging.logs_dir", d.Logging.LogsDir)
}

// expandPaths expands environment variables and ~ in path settings
func expandPaths(config *domain.Config) {
	config.Download.WorkDir = expandPath(config.Download.WorkDir)
	config.Download.FFmpegLocation = expandPath(config.Download.FFmpegLocation)
	config.History.DatabasePath = expandPath(config.History.DatabasePath)
	config.Logging.LogsDir = expandPath(config.Logging.LogsDir)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Spotify.PageSize < 1 || config.Spotify.PageSize > 100 {
		return fmt.Errorf("spotify page size must be between 1 and 100")
	}

	if config.Spotify.AlbumPageSize < 1 || config.Spotify.AlbumPageSize > 50 {
		return fmt.Errorf("spotify album page size must be between 1 and 50")
	}

	if config.Spotify.MaxPages < 1 {
		return fmt.Errorf("spotify max pages must be at least 1")
	}

	if config.Pacing.Interval < 0 || config.Pacing.Jitter < 0 {
		return fmt.Errorf("pacing interval and jitter cannot be negative")
	}

	if _, err := domain.ParseDownloadType(config.Download.DefaultType); err != nil {
		return fmt.Errorf("invalid default download type: %w", err)
	}

	if config.Download.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Download.ArchiveName == "" {
		return fmt.Errorf("archive name not configured")
	}

	if config.History.DatabasePath == "" {
		return fmt.Errorf("history database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// ValidateCredentials checks the provider credentials needed to serve requests
func ValidateCredentials(config *domain.Config) error {
	var missing []string
	if config.Spotify.ClientID == "" {
		missing = append(missing, "SPOTIFY_CLIENT_ID")
	}
	if config.Spotify.ClientSecret == "" {
		missing = append(missing, "SPOTIFY_CLIENT_SECRET")
	}
	if config.YouTube.APIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}
