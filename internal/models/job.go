package models

import "time"

// JobMetadata describes a job document on disk.
type JobMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
