// Package testutil provides shared test helpers for setting up data
// directories, databases and sample jobs.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LucasGeos/GKG/internal/document"
	"github.com/LucasGeos/GKG/internal/index"
	"github.com/LucasGeos/GKG/internal/storage"
)

// SampleJobJSON is a small but complete job document.
//
// Variable indexes: nk 1=0, nk 2=1, sk 10=2, ar 20=3, sk+1 30=4, sk-1 40=5,
// f1=6, f2=7. Node 1 is a train transfer, node 3 has no template and node 99
// is not in the subgraph.
const SampleJobJSON = `{
  "name": "sample",
  "subgraph": {
    "vertices": {
      "NK": [{"id": 1}, {"id": 2}],
      "SK": [{"id": 10}],
      "AR": [{"id": 20}],
      "SK_PLUS_ONE": [{"id": 30}],
      "SK_MINUS_ONE": [{"id": 40}],
      "FEATURES": [
        {"id": "f1", "type": "OSM_POINTS", "geometry": [-0.1276, 51.5072]},
        {"id": "f2", "type": "OSM_POLYGONS", "geometry": "POINT (-0.1281 51.5080)"}
      ]
    },
    "edges": {
      "NK_SK_BOUNDS": [{"edge_id": 100, "parent": 1, "child": 10}],
      "NK_AR_ACTIVATES": [{"edge_id": 101, "parent": 1, "child": 20}],
      "NK_SK_PLUS_ONE_BOUNDS": [{"edge_id": 102, "parent": 2, "child": 30}],
      "SK_SK_MINUS_ONE_IN_REGION": [{"edge_id": 103, "parent": 10, "child": 40}],
      "CONTAINS_FEATURE": [
        {"edge_id": 104, "parent": 20, "child": "f1"},
        {"edge_id": 105, "parent": 20, "child": "f2"}
      ]
    }
  },
  "result": {
    "nk_routing_nodes": [
      {"id": 1, "type": "train", "active": "transfer"},
      {"id": 3, "type": "ferry", "active": "traverse"},
      {"id": 2, "type": "intersection", "active": "turn"},
      {"id": 99, "type": "bus", "active": "traverse"}
    ]
  }
}`

// BrokenJobJSON references an SK vertex that does not exist.
const BrokenJobJSON = `{
  "subgraph": {
    "vertices": {"NK": [{"id": 1}]},
    "edges": {"NK_SK_BOUNDS": [{"edge_id": 7, "parent": 1, "child": 404}]}
  },
  "result": {"nk_routing_nodes": [{"id": 1, "type": "bus", "active": "transfer"}]}
}`

// SampleSelected is the number of selected indexes per scale of SampleJobJSON.
var SampleSelected = []int{2, 2, 4, 5, 5}

// SampleJob decodes SampleJobJSON.
func SampleJob(t *testing.T) *document.Job {
	t.Helper()
	job, err := document.DecodeJob("sample.json", []byte(SampleJobJSON))
	if err != nil {
		t.Fatal(err)
	}
	return job
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "gkg-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestData creates a temporary data directory with inbox, output and
// rejected subdirectories and a storage.Provider rooted at it.
func TestData(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dataDir := t.TempDir()
	for _, d := range []string{"inbox", "selections", "rejected"} {
		if err := os.MkdirAll(filepath.Join(dataDir, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.NewFS(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	return dataDir, store
}
