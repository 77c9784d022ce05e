package main

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	noAutoStart bool
	client      *apiClient
	rootCmd     = &cobra.Command{
		Use:   "musicbridge",
		Short: "musicbridge CLI - download Spotify tracks, albums and playlists as media files",
		Long:  `A command-line client for a musicbridge server: request downloads and browse batch history and logs.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client = newAPIClient(serverURL)
		},
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("MUSICBRIDGE_SERVER", "http://localhost:5000"), "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	downloadCmd.Flags().StringP("output", "o", "spotify_download.zip", "Archive file to write")
	downloadCmd.Flags().StringP("quality", "q", "", "Quality tier (Highest, 1080px, 720px, 480px, 360px, Lowest)")
	downloadCmd.Flags().StringP("type", "t", "", "Download type (video, audio)")
	downloadCmd.Flags().String("output-path", "", "Ask the server to write files into this directory instead of returning an archive")
	historyCmd.Flags().StringP("status", "s", "", "Filter by status (completed, partial, failed)")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of batches to show")
	logsCmd.Flags().StringP("date", "d", "", "Log date (YYYY-MM-DD), default today")
	logsCmd.Flags().String("search", "", "Only show entries containing this text")
	logsCmd.Flags().IntP("limit", "n", 50, "Number of entries to show")

	serverCmd.AddCommand(serverStartCmd, serverStatusCmd)
	rootCmd.AddCommand(downloadCmd, historyCmd, getCmd, statsCmd, deleteCmd, logsCmd, serverCmd)
}

// ensureServer starts a local server unless --no-auto-start
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(client); err != nil {
		fmt.Fprintln(os.Stderr, warnStyle.Render("Warning: "+err.Error()))
	}
}

var downloadCmd = &cobra.Command{
	Use:   "download [spotify-url]",
	Short: "Download a track, album or playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		output, _ := cmd.Flags().GetString("output")
		quality, _ := cmd.Flags().GetString("quality")
		downloadType, _ := cmd.Flags().GetString("type")
		outputPath, _ := cmd.Flags().GetString("output-path")

		fmt.Println(mutedStyle.Render("Downloading " + args[0] + " (this takes a few seconds per track)..."))
		start := time.Now()
		result, err := client.download(downloadRequest{
			URL:        args[0],
			OutputPath: outputPath,
			Quality:    quality,
			Type:       downloadType,
		}, output)
		if err != nil {
			return err
		}

		fmt.Println(successStyle.Render("Download finished"))
		fmt.Println(field("Batch", result.BatchID))
		fmt.Println(field("Fetched", plural(result.Fetched, "track")))
		if result.Failed > 0 {
			fmt.Println(field("Failed", warnStyle.Render(plural(result.Failed, "track"))+mutedStyle.Render("  (musicbridge get "+result.BatchID+")")))
		}
		if result.Exported != nil {
			fmt.Println(field("Exported", outputPath))
			for _, name := range result.Exported {
				fmt.Println(field("", name))
			}
		} else {
			fmt.Println(field("Archive", fmt.Sprintf("%s (%d bytes)", output, result.Bytes)))
		}
		fmt.Println(field("Took", time.Since(start).Round(time.Second)))
		return nil
	},
}

// batchView mirrors the server's batch JSON
type batchView struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	ResourceKind string    `json:"resource_kind"`
	Quality      string    `json:"quality"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	TrackCount   int       `json:"track_count"`
	FetchedCount int       `json:"fetched_count"`
	FailedCount  int       `json:"failed_count"`
	ErrorKind    string    `json:"error_kind"`
	ErrorMessage string    `json:"error_message"`
	ArchiveSize  int64     `json:"archive_size"`
	CreatedAt    time.Time `json:"created_at"`
	FailedTracks []struct {
		Index  int    `json:"index"`
		Name   string `json:"name"`
		Artist string `json:"artist"`
		Stage  string `json:"stage"`
		Error  string `json:"error"`
	} `json:"failed_tracks"`
}

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"list"},
	Short:   "List past batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		query := url.Values{"limit": {strconv.Itoa(limit)}}
		if status != "" {
			query.Set("status", status)
		}

		var batches []batchView
		if err := client.getJSON("/api/v1/batches", query, &batches); err != nil {
			return err
		}
		if len(batches) == 0 {
			fmt.Println(mutedStyle.Render("No batches yet"))
			return nil
		}

		rows := make([][]string, 0, len(batches))
		for _, b := range batches {
			rows = append(rows, []string{
				truncate(b.ID, 8),
				truncate(b.URL, 48),
				b.ResourceKind,
				statusStyle(b.Status).Render(b.Status),
				fmt.Sprintf("%d/%d", b.FetchedCount, b.TrackCount),
				b.CreatedAt.Local().Format("2006-01-02 15:04"),
			})
		}
		fmt.Println(renderTable([]string{"ID", "URL", "KIND", "STATUS", "TRACKS", "CREATED"}, rows))
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show batch details, including failed tracks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		var b batchView
		if err := client.getJSON("/api/v1/batches/"+args[0], nil, &b); err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Batch " + b.ID))
		fmt.Println(field("URL", b.URL))
		fmt.Println(field("Kind", b.ResourceKind))
		fmt.Println(field("Status", statusStyle(b.Status).Render(b.Status)))
		fmt.Println(field("Quality", b.Quality))
		fmt.Println(field("Type", b.Type))
		fmt.Println(field("Tracks", fmt.Sprintf("%d fetched, %d failed, %d total", b.FetchedCount, b.FailedCount, b.TrackCount)))
		if b.ArchiveSize > 0 {
			fmt.Println(field("Archive", fmt.Sprintf("%d bytes", b.ArchiveSize)))
		}
		fmt.Println(field("Created", b.CreatedAt.Local().Format(time.RFC1123)))
		if b.ErrorMessage != "" {
			fmt.Println(field("Error", errorStyle.Render(b.ErrorKind+": "+b.ErrorMessage)))
		}

		if len(b.FailedTracks) > 0 {
			rows := make([][]string, 0, len(b.FailedTracks))
			for _, f := range b.FailedTracks {
				rows = append(rows, []string{strconv.Itoa(f.Index + 1), f.Artist + " - " + f.Name, f.Stage, truncate(f.Error, 60)})
			}
			fmt.Println()
			fmt.Println(renderTable([]string{"#", "TRACK", "STAGE", "ERROR"}, rows))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show batch statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		var stats struct {
			Total        int64 `json:"total"`
			Completed    int64 `json:"completed"`
			Partial      int64 `json:"partial"`
			Failed       int64 `json:"failed"`
			Running      int64 `json:"running"`
			TracksTotal  int64 `json:"tracks_total"`
			TracksFailed int64 `json:"tracks_failed"`
		}
		if err := client.getJSON("/api/v1/batches/stats", nil, &stats); err != nil {
			return err
		}

		fmt.Println(titleStyle.Render("Batch Statistics"))
		fmt.Println(field("Total", stats.Total))
		fmt.Println(field("Completed", successStyle.Render(strconv.FormatInt(stats.Completed, 10))))
		fmt.Println(field("Partial", warnStyle.Render(strconv.FormatInt(stats.Partial, 10))))
		fmt.Println(field("Failed", errorStyle.Render(strconv.FormatInt(stats.Failed, 10))))
		fmt.Println(field("Running", stats.Running))
		fmt.Println(field("Tracks", fmt.Sprintf("%d fetched, %d failed", stats.TracksTotal, stats.TracksFailed)))
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Remove a batch from history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()
		if err := client.delete("/api/v1/batches/" + args[0]); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Batch deleted"))
		return nil
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs [category]",
	Short: "View server logs (batch, error)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ensureServer()

		if len(args) == 0 {
			var resp struct {
				Categories []string `json:"categories"`
			}
			if err := client.getJSON("/api/v1/logs/categories", nil, &resp); err != nil {
				return err
			}
			fmt.Println(titleStyle.Render("Log categories"))
			for _, c := range resp.Categories {
				fmt.Println("  " + c)
			}
			return nil
		}

		date, _ := cmd.Flags().GetString("date")
		search, _ := cmd.Flags().GetString("search")
		limit, _ := cmd.Flags().GetInt("limit")

		path := "/api/v1/logs/" + args[0]
		query := url.Values{"limit": {strconv.Itoa(limit)}}
		if date != "" {
			query.Set("date", date)
		}
		if search != "" {
			path += "/search"
			query.Set("q", search)
		}

		var resp struct {
			Entries []struct {
				Timestamp string                 `json:"timestamp"`
				Level     string                 `json:"level"`
				Message   string                 `json:"message"`
				Fields    map[string]interface{} `json:"fields"`
			} `json:"entries"`
		}
		if err := client.getJSON(path, query, &resp); err != nil {
			return err
		}

		for _, e := range resp.Entries {
			level := mutedStyle
			if e.Level == "error" {
				level = errorStyle
			} else if e.Level == "warn" {
				level = warnStyle
			}
			line := mutedStyle.Render(e.Timestamp) + " " + level.Render(fmt.Sprintf("%-5s", e.Level)) + " " + e.Message
			if id, ok := e.Fields["batch_id"]; ok {
				line += mutedStyle.Render(fmt.Sprintf(" batch=%v", id))
			}
			if msg, ok := e.Fields["error"]; ok {
				line += " " + errorStyle.Render(fmt.Sprint(msg))
			}
			fmt.Println(line)
		}
		return nil
	},
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Manage the local musicbridge server",
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a background server if none is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		if client.healthy() {
			fmt.Println(mutedStyle.Render("Server already running at " + serverURL))
			return nil
		}
		return ensureServerRunning(client)
	},
}

var serverStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether the server answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !client.healthy() {
			return fmt.Errorf("server not reachable at %s", serverURL)
		}
		fmt.Println(successStyle.Render("Server running at " + serverURL))
		return nil
	},
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}
