package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/LucasGeos/GKG/internal/apperr"
	"github.com/LucasGeos/GKG/internal/checksum"
	"github.com/LucasGeos/GKG/internal/storage"
)

// recordingHandler stores a source row per job, the way the selection
// service does, and counts calls.
type recordingHandler struct {
	db *DB

	mu      sync.Mutex
	handled map[string]int
}

func newRecordingHandler(db *DB) *recordingHandler {
	return &recordingHandler{db: db, handled: make(map[string]int)}
}

func (h *recordingHandler) HandleJob(path string, data []byte) error {
	h.mu.Lock()
	h.handled[path]++
	h.mu.Unlock()
	return h.db.UpsertSource(path, checksum.Sum(data), "key:"+path)
}

func (h *recordingHandler) RemoveJob(path string) error {
	cs, err := h.db.SourceChecksums()
	if err != nil {
		return err
	}
	if _, ok := cs[path]; !ok {
		return apperr.ErrNotFound
	}
	_, err = h.db.DeleteSource(path)
	return err
}

func (h *recordingHandler) count(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.handled[path]
}

func hasSource(db *DB, path string) bool {
	cs, _ := db.SourceChecksums()
	_, ok := cs[path]
	return ok
}

// watcherTestEnv sets up a data dir, storage, DB and handler for watcher tests.
func watcherTestEnv(t *testing.T) (string, storage.Provider, *DB, *recordingHandler) {
	t.Helper()
	dataDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dataDir, "inbox"), 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)
	return dataDir, store, db, newRecordingHandler(db)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Watch(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func TestSync_HandlesNewAndRemovesStale(t *testing.T) {
	dataDir, store, db, h := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(dataDir, "inbox", "a.json"), []byte("{}"), 0o644)
	_ = db.UpsertSource("inbox/gone.json", "x", "k")

	if err := Sync(db, store, "inbox", quietLogger(), h); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !hasSource(db, "inbox/a.json") {
		t.Error("new job not handled")
	}
	if hasSource(db, "inbox/gone.json") {
		t.Error("stale source not removed")
	}

	// unchanged documents are skipped on the next pass
	if err := Sync(db, store, "inbox", quietLogger(), h); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n := h.count("inbox/a.json"); n != 1 {
		t.Errorf("handled %d times, want 1", n)
	}
}

func TestWatcher_NewFileHandled(t *testing.T) {
	dataDir, store, db, h := watcherTestEnv(t)

	var mu sync.Mutex
	var events []string
	startWatcher(t, &Watcher{
		DB: db, Store: store, DataRoot: dataDir, Inbox: "inbox", Handler: h, Logger: quietLogger(),
		OnChange: func(kind, path string) {
			mu.Lock()
			events = append(events, kind+":"+path)
			mu.Unlock()
		},
	})

	_ = os.WriteFile(filepath.Join(dataDir, "inbox", "new.json"), []byte("{}"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasSource(db, "inbox/new.json")
	}, "new job not handled by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:inbox/new.json" || e == "updated:inbox/new.json" {
				return true
			}
		}
		return false
	}, "expected created:inbox/new.json callback")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dataDir, store, db, h := watcherTestEnv(t)
	startWatcher(t, &Watcher{DB: db, Store: store, DataRoot: dataDir, Inbox: "inbox", Handler: h, Logger: quietLogger()})

	_ = os.WriteFile(filepath.Join(dataDir, "inbox", "notes.txt"), []byte("x"), 0o644)
	_ = os.WriteFile(filepath.Join(dataDir, "inbox", "r.selection.json"), []byte("{}"), 0o644)
	_ = os.WriteFile(filepath.Join(dataDir, "inbox", "marker.json"), []byte("{}"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasSource(db, "inbox/marker.json")
	}, "marker job not handled")
	if h.count("inbox/notes.txt") != 0 || h.count("inbox/r.selection.json") != 0 {
		t.Error("non-job files were handled")
	}
}

func TestWatcher_NewDirWatched(t *testing.T) {
	dataDir, store, db, h := watcherTestEnv(t)
	startWatcher(t, &Watcher{DB: db, Store: store, DataRoot: dataDir, Inbox: "inbox", Handler: h, Logger: quietLogger()})

	subDir := filepath.Join(dataDir, "inbox", "batch")
	_ = os.MkdirAll(subDir, 0o755)
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(subDir, "deep.yaml"), []byte("name: deep\n"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return hasSource(db, "inbox/batch/deep.yaml")
	}, "job in new subdir not handled by watcher")
}

func TestWatcher_DeleteRemovesSource(t *testing.T) {
	dataDir, store, db, h := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(dataDir, "inbox", "del.json"), []byte("{}"), 0o644)
	_ = Sync(db, store, "inbox", quietLogger(), h)
	if !hasSource(db, "inbox/del.json") {
		t.Fatal("precondition: job should be handled")
	}

	startWatcher(t, &Watcher{DB: db, Store: store, DataRoot: dataDir, Inbox: "inbox", Handler: h, Logger: quietLogger()})

	_ = os.Remove(filepath.Join(dataDir, "inbox", "del.json"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !hasSource(db, "inbox/del.json")
	}, "deleted job still cached")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	dataDir, store, db, h := watcherTestEnv(t)

	_ = os.WriteFile(filepath.Join(dataDir, "inbox", "old.json"), []byte("{}"), 0o644)
	_ = Sync(db, store, "inbox", quietLogger(), h)

	startWatcher(t, &Watcher{DB: db, Store: store, DataRoot: dataDir, Inbox: "inbox", Handler: h, Logger: quietLogger()})

	_ = os.Rename(filepath.Join(dataDir, "inbox", "old.json"), filepath.Join(dataDir, "inbox", "renamed.json"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return !hasSource(db, "inbox/old.json") && hasSource(db, "inbox/renamed.json")
	}, "rename reconciliation failed: old path should be removed and new path handled")
}

func TestWatcher_StopsWithoutLeaks(t *testing.T) {
	dataDir, store, db, h := watcherTestEnv(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	w := &Watcher{DB: db, Store: store, DataRoot: dataDir, Inbox: "inbox", Handler: h, Logger: quietLogger()}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
