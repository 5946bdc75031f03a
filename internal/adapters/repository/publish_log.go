package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/attrition-game/atk/internal/core/domain"
)

// FilePublishLog keeps the publish history in a JSON manifest
type FilePublishLog struct {
	manifestPath string
	mu           sync.Mutex
}

func NewFilePublishLog(manifestPath string) *FilePublishLog {
	return &FilePublishLog{
		manifestPath: manifestPath,
	}
}

// Path returns the manifest location
func (r *FilePublishLog) Path() string {
	return r.manifestPath
}

// Append adds a record and rewrites the manifest
func (r *FilePublishLog) Append(ctx context.Context, record domain.PublishRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	records, err := r.load()
	if err != nil {
		return err
	}
	records = append(records, record)

	return r.flush(records)
}

// List returns every record, oldest first. A missing manifest is an empty history.
func (r *FilePublishLog) List(ctx context.Context) ([]domain.PublishRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load()
}

func (r *FilePublishLog) load() ([]domain.PublishRecord, error) {
	data, err := os.ReadFile(r.manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read publish log: %w", err)
	}

	var records []domain.PublishRecord
	if len(data) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse publish log %s: %w", r.manifestPath, err)
	}
	return records, nil
}

func (r *FilePublishLog) flush(records []domain.PublishRecord) error {
	if err := os.MkdirAll(filepath.Dir(r.manifestPath), 0700); err != nil {
		return fmt.Errorf("failed to create publish log directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(r.manifestPath, data, 0600)
}
