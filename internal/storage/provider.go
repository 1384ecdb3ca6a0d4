// Package storage defines the data directory abstraction: job documents in,
// selection payloads out.
package storage

import "github.com/LucasGeos/GKG/internal/models"

// Provider is the interface for data directory file operations.
type Provider interface {
	// List returns metadata for every job document under dir (relative to the data root).
	List(dir string) ([]models.JobMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the data root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the data root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the data root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to the data root).
	Move(oldPath, newPath string) error
}
