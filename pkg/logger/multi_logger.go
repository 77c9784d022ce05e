package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogCategory represents different log categories
type LogCategory string

const (
	CategoryBatch LogCategory = "batch" // batch lifecycle events (JSON)
	CategoryError LogCategory = "error" // application errors (JSON)
)

// Categories lists every category written by MultiLogger
func Categories() []LogCategory {
	return []LogCategory{CategoryBatch, CategoryError}
}

// MultiLoggerConfig contains configuration for multi-output logging
type MultiLoggerConfig struct {
	Level   string // debug, info, warn, error
	LogsDir string // directory for log files
}

// MultiLogger writes each category to its own daily JSON file,
// <logs_dir>/<category>-YYYYMMDD.log.
type MultiLogger struct {
	config  MultiLoggerConfig
	loggers map[LogCategory]*zap.Logger
	files   []*dailyFile
}

// NewMultiLogger creates a new multi-output logger
func NewMultiLogger(config MultiLoggerConfig) (*MultiLogger, error) {
	if config.LogsDir == "" {
		return nil, fmt.Errorf("logs_dir must be specified")
	}
	if err := os.MkdirAll(config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	level, err := zapcore.ParseLevel(config.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	ml := &MultiLogger{
		config:  config,
		loggers: make(map[LogCategory]*zap.Logger),
	}
	ml.loggers[CategoryBatch] = ml.newCategoryLogger(CategoryBatch, level)
	ml.loggers[CategoryError] = ml.newCategoryLogger(CategoryError, zapcore.ErrorLevel)

	return ml, nil
}

func (ml *MultiLogger) newCategoryLogger(category LogCategory, level zapcore.Level) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.CallerKey = ""

	file := &dailyFile{dir: ml.config.LogsDir, category: category, now: time.Now}
	ml.files = append(ml.files, file)

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), file, level)
	return zap.New(core).With(zap.String("category", string(category)))
}

// LogsDir returns the logs directory path
func (ml *MultiLogger) LogsDir() string {
	return ml.config.LogsDir
}

// Batch returns the batch lifecycle logger
func (ml *MultiLogger) Batch() *zap.Logger {
	return ml.loggers[CategoryBatch]
}

// Error returns the error logger
func (ml *MultiLogger) Error() *zap.Logger {
	return ml.loggers[CategoryError]
}

// LogBatchEvent logs a batch lifecycle event with structured data
func (ml *MultiLogger) LogBatchEvent(event string, fields ...zap.Field) {
	ml.Batch().Info(event, fields...)
}

// LogAppError logs an application-level error
func (ml *MultiLogger) LogAppError(msg string, fields ...zap.Field) {
	ml.Error().Error(msg, fields...)
}

// Close flushes and closes all category files
func (ml *MultiLogger) Close() error {
	var lastErr error
	for _, l := range ml.loggers {
		_ = l.Sync()
	}
	for _, f := range ml.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// dailyFile is a WriteSyncer that switches to a new file when the date changes
type dailyFile struct {
	dir      string
	category LogCategory
	now      func() time.Time

	mu   sync.Mutex
	date string
	file *os.File
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	date := d.now().Format("20060102")
	if d.file == nil || date != d.date {
		if d.file != nil {
			d.file.Close()
		}
		path := filepath.Join(d.dir, fmt.Sprintf("%s-%s.log", d.category, date))
		file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			d.file = nil
			return 0, err
		}
		d.file = file
		d.date = date
	}
	return d.file.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}
