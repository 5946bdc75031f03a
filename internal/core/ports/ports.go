package ports

import (
	"context"
	"image"

	"github.com/attrition-game/atk/internal/core/domain"
)

// ReleaseHost defines the port for the remote release-hosting API
type ReleaseHost interface {
	// CreateRelease creates a release record and returns it, including its upload URL
	CreateRelease(ctx context.Context, token string, draft domain.ReleaseDraft) (*domain.Release, error)

	// UploadAsset streams a binary asset to uploadURL (template portion already stripped)
	UploadAsset(ctx context.Context, token string, uploadURL string, upload domain.AssetUpload) (*domain.Asset, error)
}

// ImageStore defines the port for placeholder image persistence
type ImageStore interface {
	// Save writes img under name and returns the path it was written to
	Save(ctx context.Context, name string, img image.Image) (string, error)

	// Load reads a previously saved image
	Load(ctx context.Context, name string) (image.Image, error)
}

// PublishLog records successful publishes locally
type PublishLog interface {
	// Append adds a record to the log
	Append(ctx context.Context, record domain.PublishRecord) error

	// List returns all records, oldest first
	List(ctx context.Context) ([]domain.PublishRecord, error)
}
