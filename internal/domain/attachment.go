package domain

import "time"

// Attachment is an uploaded document referenced by events and posts.
// Entities hold it by id only; the blob itself is resolved lazily.
type Attachment struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	UploadedAt time.Time `json:"uploaded_at"`
	// BlobRef is an opaque handle into external blob storage.
	BlobRef string `json:"blob_ref,omitempty"`
}
