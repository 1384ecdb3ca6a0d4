package index

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/LucasGeos/GKG/internal/apperr"
	"github.com/LucasGeos/GKG/internal/checksum"
	"github.com/LucasGeos/GKG/internal/document"
	"github.com/LucasGeos/GKG/internal/storage"
)

// EventCallback is called after a watcher-driven change.
// kind is one of "created", "updated", "deleted", "failed".
type EventCallback func(kind string, path string)

// Watcher follows the inbox of a data directory.
type Watcher struct {
	DB       SelectionIndex
	Store    storage.Provider
	DataRoot string // absolute data directory
	Inbox    string // inbox, relative to DataRoot
	Handler  JobHandler
	Logger   *slog.Logger
	OnChange EventCallback
}

// Watch starts an fsnotify watcher on the inbox and processes job document
// events until ctx is cancelled. Documents whose checksum matches the cached
// source are skipped, so the editor save pattern (write then chmod) computes
// once.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes cache
// entries whose files no longer exist on disk.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	inboxAbs := filepath.Join(w.DataRoot, w.Inbox)
	if err := os.MkdirAll(inboxAbs, 0o755); err != nil {
		return err
	}
	if err := addDirsRecursive(fw, inboxAbs); err != nil {
		return err
	}

	w.Logger.Info("watcher: started", slog.String("inbox", inboxAbs))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			w.Logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, absPath); addErr != nil {
						w.Logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						w.Logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					w.handleNewDir(absPath)
					continue
				}
			}

			base := filepath.Base(absPath)
			if base[0] == '.' || !document.IsJobFile(base) {
				continue
			}

			rel, relErr := filepath.Rel(w.DataRoot, absPath)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				w.handle(rel, kind)

			case ev.Op&fsnotify.Remove != 0:
				w.remove(rel)

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the old path only; the new path
				// arrives as a Create if it stays inside the inbox.
				w.remove(rel)
				scheduleReconcile()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) handle(rel, kind string) {
	data, err := w.Store.Read(rel)
	if err != nil {
		w.Logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if w.unchanged(rel, data) {
		return
	}
	if err := w.Handler.HandleJob(rel, data); err != nil {
		w.Logger.Warn("watcher: job failed", slog.String("path", rel), slog.String("error", err.Error()))
		if w.OnChange != nil {
			w.OnChange("failed", rel)
		}
		return
	}
	w.Logger.Debug("watcher: computed", slog.String("path", rel), slog.String("op", kind))
	if w.OnChange != nil {
		w.OnChange(kind, rel)
	}
}

// remove forgets rel. Documents the handler never knew (rejected jobs moved
// out of the inbox) are ignored quietly.
func (w *Watcher) remove(rel string) {
	err := w.Handler.RemoveJob(rel)
	if errors.Is(err, apperr.ErrNotFound) {
		return
	}
	if err != nil {
		w.Logger.Warn("watcher: remove failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	w.Logger.Debug("watcher: removed", slog.String("path", rel))
	if w.OnChange != nil {
		w.OnChange("deleted", rel)
	}
}

func (w *Watcher) unchanged(rel string, data []byte) bool {
	checksums, err := w.DB.SourceChecksums()
	if err != nil {
		return false
	}
	cs, ok := checksums[rel]
	return ok && cs == checksum.Sum(data)
}

// reconcile finds cache sources without a file on disk and removes them,
// and hands on-disk documents that are not cached to the handler.
func (w *Watcher) reconcile() {
	checksums, err := w.DB.SourceChecksums()
	if err != nil {
		w.Logger.Warn("reconcile: source checksums failed", slog.String("error", err.Error()))
		return
	}

	metas, err := w.Store.List(w.Inbox)
	if err != nil {
		w.Logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(metas))
	for _, m := range metas {
		disk[m.Path] = m.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; !ok {
			w.remove(p)
		}
	}

	for p, cs := range disk {
		if checksums[p] == cs {
			continue
		}
		w.handle(p, "created")
	}
}

// handleNewDir processes job documents found in a newly created directory.
func (w *Watcher) handleNewDir(dirPath string) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !document.IsJobFile(path) {
			return nil
		}
		rel, relErr := filepath.Rel(w.DataRoot, path)
		if relErr != nil {
			return nil
		}
		w.handle(filepath.ToSlash(rel), "created")
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
