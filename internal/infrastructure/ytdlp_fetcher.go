package infrastructure

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/lrstanley/go-ytdlp"
	"github.com/musicbridge/musicbridge/internal/domain"
	"go.uber.org/zap"
)

// printAfterMove makes yt-dlp report the final file path on stdout
const printAfterMove = "after_move:filepath"

const maxNameBytes = 200

// YTDLPFetcher implements domain.MediaFetcher using yt-dlp
type YTDLPFetcher struct {
	config *domain.DownloadConfig
	logger *zap.Logger
}

// NewYTDLPFetcher creates a new yt-dlp fetcher
func NewYTDLPFetcher(config *domain.DownloadConfig, logger *zap.Logger) *YTDLPFetcher {
	return &YTDLPFetcher{
		config: config,
		logger: logger,
	}
}

// Fetch downloads one media item into req.Dir and returns the written path
func (f *YTDLPFetcher) Fetch(ctx context.Context, req domain.FetchRequest) (string, error) {
	format := req.Quality.Format()
	if req.Type == domain.TypeAudio {
		format = domain.AudioFormatSelector
	}
	template := filepath.Join(req.Dir, OutputName(req.NameHint)) + ".%(ext)s"

	cmd := ytdlp.New().
		SetExecutable(f.config.YTDLPBinary).
		Format(format).
		Output(template).
		NoPlaylist().
		Print(printAfterMove)

	if req.Type == domain.TypeAudio {
		cmd = cmd.ExtractAudio().
			AudioFormat(f.config.AudioFormat).
			AudioQuality(f.config.AudioQuality)
	}
	if f.config.FFmpegLocation != "" {
		cmd = cmd.FFmpegLocation(f.config.FFmpegLocation)
	}

	if built := cmd.BuildCommand(ctx, req.MediaID.URL()); len(built.Args) > 0 {
		f.logger.Debug("Executing command",
			zap.String("command", ShellEscapeCommand(built.Args[0], built.Args[1:]...)),
			zap.String("type", string(req.Type)))
	}

	result, err := cmd.Run(ctx, req.MediaID.URL())
	if err != nil {
		if result != nil && result.Stderr != "" {
			f.logger.Debug("yt-dlp stderr", zap.String("stderr", result.Stderr))
		}
		return "", fmt.Errorf("yt-dlp failed for %s: %w", req.MediaID, err)
	}

	path, err := ParsePrintedPath(result.Stdout, req.Dir)
	if err != nil {
		return "", fmt.Errorf("failed to locate download of %s: %w", req.MediaID, err)
	}

	f.logger.Debug("Media fetched",
		zap.String("media_id", string(req.MediaID)),
		zap.String("path", path))

	return path, nil
}

// ParsePrintedPath returns the last printed line that names an existing
// file inside dir.
func ParsePrintedPath(stdout, dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	var found string
	scanner := bufio.NewScanner(strings.NewReader(stdout))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !filepath.IsAbs(line) {
			continue
		}
		rel, err := filepath.Rel(absDir, filepath.Clean(line))
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		found = line
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if found == "" {
		return "", domain.ErrFetchOutputMissing
	}

	info, err := os.Stat(found)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetchOutputMissing, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%w: %s is a directory", domain.ErrFetchOutputMissing, found)
	}
	return found, nil
}

// SanitizeName turns a "<artist> - <name>" hint into a safe file stem.
// Applying it twice gives the same result.
func SanitizeName(hint string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == 0:
			return '_'
		case r < 0x20:
			return -1
		}
		return r
	}, hint)

	name = truncateName(strings.Trim(name, " ."), maxNameBytes)
	if name == "" {
		name = "track"
	}
	return name
}

// SuffixName appends suffix to a sanitized stem, shortening the stem so
// the suffix always survives the length limit.
func SuffixName(stem, suffix string) string {
	return truncateName(stem, maxNameBytes-len(suffix)) + suffix
}

// OutputName returns the stem for a yt-dlp output template
func OutputName(hint string) string {
	// % starts a template field
	return strings.ReplaceAll(SanitizeName(hint), "%", "%%")
}

func truncateName(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	name = name[:limit]
	for !utf8.ValidString(name) {
		name = name[:len(name)-1]
	}
	return strings.TrimRight(name, " .")
}
