package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/musicbridge/musicbridge/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// filterColumns are the batch columns FindAll accepts as equality filters
var filterColumns = map[string]bool{
	"status":        true,
	"url":           true,
	"resource_kind": true,
	"download_type": true,
}

// SQLiteBatchRepository implements BatchRepository using SQLite
type SQLiteBatchRepository struct {
	db *gorm.DB
}

// NewSQLiteBatchRepository creates a new SQLite repository
func NewSQLiteBatchRepository(dbPath string) (*SQLiteBatchRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Batch{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteBatchRepository{db: db}, nil
}

// Create creates a new batch
func (r *SQLiteBatchRepository) Create(batch *domain.Batch) error {
	return r.db.Create(batch).Error
}

// Update updates an existing batch
func (r *SQLiteBatchRepository) Update(batch *domain.Batch) error {
	return r.db.Save(batch).Error
}

// Delete deletes a batch by ID
func (r *SQLiteBatchRepository) Delete(id string) error {
	result := r.db.Delete(&domain.Batch{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrBatchNotFound
	}
	return nil
}

// FindByID finds a batch by ID
func (r *SQLiteBatchRepository) FindByID(id string) (*domain.Batch, error) {
	var batch domain.Batch
	err := r.db.First(&batch, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, err
	}
	return &batch, nil
}

// FindAll finds batches newest first. The "limit" key caps the result;
// other keys must be known columns.
func (r *SQLiteBatchRepository) FindAll(filters map[string]interface{}) ([]*domain.Batch, error) {
	var batches []*domain.Batch
	query := r.db

	for key, value := range filters {
		if key == "limit" {
			if limit, ok := value.(int); ok && limit > 0 {
				query = query.Limit(limit)
			}
			continue
		}
		if !filterColumns[key] {
			return nil, fmt.Errorf("unsupported filter %q", key)
		}
		query = query.Where(fmt.Sprintf("%s = ?", key), value)
	}

	err := query.Order("created_at DESC").Find(&batches).Error
	return batches, err
}

// GetStats returns history statistics
func (r *SQLiteBatchRepository) GetStats() (*domain.BatchStats, error) {
	stats := &domain.BatchStats{}

	if err := r.db.Model(&domain.Batch{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.BatchStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.Batch{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.BatchCompleted:
			stats.Completed = sc.Count
		case domain.BatchPartial:
			stats.Partial = sc.Count
		case domain.BatchFailed:
			stats.Failed = sc.Count
		default:
			stats.Running += sc.Count
		}
	}

	var tracks struct {
		Fetched int64
		Failed  int64
	}
	if err := r.db.Model(&domain.Batch{}).
		Select("COALESCE(SUM(fetched_count), 0) as fetched, COALESCE(SUM(failed_count), 0) as failed").
		Scan(&tracks).Error; err != nil {
		return nil, err
	}
	stats.TracksTotal = tracks.Fetched + tracks.Failed
	stats.TracksFailed = tracks.Failed

	return stats, nil
}

// Ping checks the database connection
func (r *SQLiteBatchRepository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close closes the database connection
func (r *SQLiteBatchRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
