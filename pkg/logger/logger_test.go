package logger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "debug", Format: "json", OutputPath: path})
	require.NoError(t, err)
	log.Info("Server started", zap.Int("port", 5000))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Server started"`)
	assert.Contains(t, string(data), `"port":5000`)
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Config{Level: "chatty", Format: "json", OutputPath: path})
	require.NoError(t, err)
	log.Debug("hidden")
	log.Info("shown")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestNew_UnwritableOutput(t *testing.T) {
	_, err := New(Config{OutputPath: filepath.Join(t.TempDir(), "missing", "app.log")})
	assert.Error(t, err)
}

func TestMultiLogger_WritesAndReadsBack(t *testing.T) {
	dir := t.TempDir()
	ml, err := NewMultiLogger(MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)

	ml.LogBatchEvent("Batch completed", zap.String("batch_id", "b-1"), zap.Int("fetched", 2))
	ml.LogBatchEvent("Batch failed", zap.String("batch_id", "b-2"))
	ml.LogAppError("Cleanup failed", zap.String("batch_id", "b-2"))
	require.NoError(t, ml.Close())

	reader := NewLogReader(dir)
	entries, err := reader.ReadLogs(CategoryBatch, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Batch completed", entries[0].Message)
	assert.Equal(t, "info", entries[0].Level)
	assert.Equal(t, "batch", entries[0].Category)
	assert.NotEmpty(t, entries[0].Timestamp)
	assert.Equal(t, "b-1", entries[0].Fields["batch_id"])

	last, err := reader.ReadLogs(CategoryBatch, time.Now(), 1)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "Batch failed", last[0].Message)

	errs, err := reader.ReadLogs(CategoryError, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "error", errs[0].Level)
}

func TestMultiLogger_RequiresDir(t *testing.T) {
	_, err := NewMultiLogger(MultiLoggerConfig{})
	assert.Error(t, err)
}

func TestDailyFile_RotatesOnDateChange(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	f := &dailyFile{dir: dir, category: CategoryBatch, now: func() time.Time { return day }}

	_, err := f.Write([]byte("{\"message\":\"first\"}\n"))
	require.NoError(t, err)
	day = day.Add(2 * time.Minute)
	_, err = f.Write([]byte("{\"message\":\"second\"}\n"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	assert.FileExists(t, filepath.Join(dir, "batch-20240301.log"))
	assert.FileExists(t, filepath.Join(dir, "batch-20240302.log"))
}

func TestLogReader_SearchAndMissingFile(t *testing.T) {
	dir := t.TempDir()
	reader := NewLogReader(dir)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	lines := `{"timestamp":"2024-03-01T10:00:00Z","level":"info","message":"Batch completed","batch_id":"abc"}
not json at all
{"timestamp":"2024-03-01T10:05:00Z","level":"info","message":"Batch completed","batch_id":"xyz"}
`
	require.NoError(t, os.WriteFile(reader.LogPath(CategoryBatch, date), []byte(lines), 0644))

	found, err := reader.SearchLogs(CategoryBatch, date, "XYZ", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "xyz", found[0].Fields["batch_id"])

	plain, err := reader.SearchLogs(CategoryBatch, date, "not json", 0)
	require.NoError(t, err)
	require.Len(t, plain, 1)
	assert.Equal(t, "info", plain[0].Level)

	none, err := reader.ReadLogs(CategoryError, date, 10)
	require.NoError(t, err)
	assert.Empty(t, none)

	assert.True(t, IsCategory("batch"))
	assert.False(t, IsCategory("queue"))
}
