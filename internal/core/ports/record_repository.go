package ports

import (
	"context"

	"github.com/pcp-logistica/tracking-portal/internal/core/domain"
)

// RecordRepository persists shipment records in the remote spreadsheet store.
type RecordRepository interface {
	// List returns every record of the sheet. Failures are swallowed: an empty
	// slice means either "no data" or "fetch failed".
	List(ctx context.Context, kind domain.RecordKind) []domain.ShipmentRecord
	// Save upserts a record; the remote side decides insert vs update by ID.
	Save(ctx context.Context, rec domain.ShipmentRecord) error
	// Delete removes a record. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, kind domain.RecordKind, id string) error
}

// UploadInput is a file to be stored by the remote store.
type UploadInput struct {
	FileName string
	MimeType string
	Content  []byte
}

// FileUploader stores a file remotely and returns a URL to view it.
type FileUploader interface {
	Upload(ctx context.Context, in UploadInput) (string, error)
}
