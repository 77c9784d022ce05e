package domain

// BatchRepository defines the interface for batch history persistence
type BatchRepository interface {
	// Create creates a new batch
	Create(batch *Batch) error

	// Update updates an existing batch
	Update(batch *Batch) error

	// Delete deletes a batch by ID
	Delete(id string) error

	// FindByID finds a batch by ID, returning ErrBatchNotFound when absent
	FindByID(id string) (*Batch, error)

	// FindAll finds batches newest first with optional filters (status, limit)
	FindAll(filters map[string]interface{}) ([]*Batch, error)

	// GetStats returns history statistics
	GetStats() (*BatchStats, error)

	// Ping checks the underlying store is reachable
	Ping() error
}
