package index

import (
	"log/slog"

	"github.com/LucasGeos/GKG/internal/storage"
)

// JobHandler computes and forgets selections for inbox job documents.
type JobHandler interface {
	// HandleJob computes the selection for the job document at path.
	HandleJob(path string, data []byte) error
	// RemoveJob drops everything derived from the job document at path.
	RemoveJob(path string) error
}

// Sync walks the inbox and brings the cache up to date:
//   - new/changed job documents are handed to h
//   - documents removed from disk are removed through h
func Sync(db SelectionIndex, store storage.Provider, inbox string, logger *slog.Logger, h JobHandler) error {
	metas, err := store.List(inbox)
	if err != nil {
		return err
	}

	checksums, err := db.SourceChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := h.HandleJob(m.Path, data); err != nil {
			logger.Warn("sync: job failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: computed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := h.RemoveJob(p); err != nil {
				logger.Warn("sync: remove failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}
