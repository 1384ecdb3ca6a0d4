package selectservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/LucasGeos/GKG/internal/apperr"
	"github.com/LucasGeos/GKG/internal/causalnet"
	"github.com/LucasGeos/GKG/internal/checksum"
	"github.com/LucasGeos/GKG/internal/document"
	"github.com/LucasGeos/GKG/internal/index"
	"github.com/LucasGeos/GKG/internal/journey"
	"github.com/LucasGeos/GKG/internal/metrics"
	"github.com/LucasGeos/GKG/internal/models"
	"github.com/LucasGeos/GKG/internal/selection"
	"github.com/LucasGeos/GKG/internal/storage"
)

// SelectionDetail is the full representation of a cached selection.
type SelectionDetail struct {
	Key       string             `json:"key"`
	RunID     string             `json:"run_id"`
	Name      string             `json:"name"`
	Cached    bool               `json:"cached"`
	Variables int                `json:"variables"`
	Arcs      int                `json:"arcs"`
	Roots     int                `json:"roots"`
	Selected  int                `json:"selected"`
	Sources   []string           `json:"sources"`
	Unmapped  []UnmappedNode     `json:"unmapped,omitempty"`
	Payload   *selection.Payload `json:"payload"`
	CreatedAt time.Time          `json:"created_at"`
}

// SelectionListItem is a lightweight item in a list response.
type SelectionListItem struct {
	Key       string    `json:"key"`
	RunID     string    `json:"run_id"`
	Name      string    `json:"name"`
	Variables int       `json:"variables"`
	Arcs      int       `json:"arcs"`
	Roots     int       `json:"roots"`
	Selected  int       `json:"selected"`
	CreatedAt time.Time `json:"created_at"`
}

// UnmappedNode is a routing node that got no propagation template.
type UnmappedNode struct {
	Position int             `json:"position"`
	ID       models.ID       `json:"id"`
	Type     models.NodeType `json:"type"`
	Active   models.Activity `json:"active"`
}

// ContextEntry is one journey context entry as exposed to clients.
type ContextEntry struct {
	NodeID   models.ID        `json:"node_id"`
	Template journey.Template `json:"template"`
	Findings journey.Matrix   `json:"findings"`
}

// JourneyContext is the client view of a journey context.
type JourneyContext struct {
	Entries  []ContextEntry       `json:"entries"`
	Unmapped []UnmappedNode       `json:"unmapped"`
	Regions  []models.PhaseRegion `json:"regions"`
}

// Dirs names the data directory layout, relative to the storage root.
type Dirs struct {
	Inbox    string
	Output   string
	Rejected string
}

// Service coordinates the selection pipeline, storage and cache.
type Service struct {
	store   storage.Provider
	db      index.SelectionIndex
	dirs    Dirs
	metrics *metrics.Registry
	logger  *slog.Logger
}

// NewService creates a new selection service. reg may be nil.
func NewService(store storage.Provider, db index.SelectionIndex, dirs Dirs, reg *metrics.Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, db: db, dirs: dirs, metrics: reg, logger: logger}
}

// Key returns the cache key of job: the checksum of its canonical form.
func Key(job *document.Job) (string, error) {
	canon, err := document.Canonical(job)
	if err != nil {
		return "", err
	}
	return checksum.Sum(canon), nil
}

// Compute returns the selection of job, from the cache when the same
// subgraph and route were computed before.
func (s *Service) Compute(ctx context.Context, job *document.Job) (*SelectionDetail, error) {
	key, err := Key(job)
	if err != nil {
		return nil, err
	}
	if row, err := s.db.GetSelection(key); err == nil {
		s.metrics.RecordSelection(metrics.StatusCached)
		d, err := s.detailFromRow(row)
		if err != nil {
			return nil, err
		}
		d.Cached = true
		d.Unmapped = unmappedNodes(journey.Build(job.Result.Nodes).Unmapped)
		return d, nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := Select(job)
	elapsed := time.Since(start)
	if err != nil {
		status := metrics.StatusFailed
		if errors.Is(err, causalnet.ErrGraphIntegrity) {
			status = metrics.StatusRejected
		}
		s.metrics.RecordSelection(status)
		s.logger.Warn("selection failed", slog.String("key", key), slog.String("name", job.Name), slog.String("error", err.Error()))
		return nil, fmt.Errorf("selectservice: compute %s: %w", job.Name, err)
	}

	runID := uuid.NewString()
	s.metrics.RecordSelection(metrics.StatusComputed)
	s.metrics.RecordPropagation(elapsed, res.Stats.Activations[:], res.Stats.Merged[:], len(res.Unmapped), len(res.Stats.MissingRoots))
	for _, u := range res.Unmapped {
		s.logger.Debug("routing node has no template",
			slog.String("run_id", runID),
			slog.String("node_id", u.NodeID.String()),
			slog.String("type", string(u.Type)),
			slog.String("active", string(u.Active)))
	}

	payload, err := json.Marshal(res.Payload)
	if err != nil {
		return nil, fmt.Errorf("selectservice: encode payload: %w", err)
	}
	row := index.SelectionRow{
		Key:       key,
		RunID:     runID,
		Name:      job.Name,
		Variables: res.Variables,
		Arcs:      res.Arcs,
		Roots:     res.Stats.Roots,
		Selected:  total(res.Payload.Selected()),
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.UpsertSelection(row); err != nil {
		return nil, err
	}

	s.logger.Info("selection computed",
		slog.String("run_id", runID),
		slog.String("key", key),
		slog.String("name", job.Name),
		slog.Int("variables", res.Variables),
		slog.Int("arcs", res.Arcs),
		slog.Int("roots", res.Stats.Roots),
		slog.Int("selected", row.Selected),
		slog.Duration("duration", elapsed))

	d := detail(row, res.Payload)
	d.Unmapped = unmappedNodes(res.Unmapped)
	d.Sources = []string{}
	return d, nil
}

// GetSelection returns a cached selection.
func (s *Service) GetSelection(_ context.Context, key string) (*SelectionDetail, error) {
	row, err := s.db.GetSelection(key)
	if err != nil {
		return nil, err
	}
	return s.detailFromRow(row)
}

// Page sizes of ListSelections.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ListSelections returns cached selections, newest first. A limit <= 0
// means DefaultListLimit; larger pages are capped at MaxListLimit.
func (s *Service) ListSelections(_ context.Context, limit, offset int) ([]SelectionListItem, int, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	offset = max(offset, 0)
	rows, total, err := s.db.ListSelections(limit, offset)
	if err != nil {
		return nil, 0, err
	}
	items := make([]SelectionListItem, len(rows))
	for i, r := range rows {
		items[i] = SelectionListItem{
			Key:       r.Key,
			RunID:     r.RunID,
			Name:      r.Name,
			Variables: r.Variables,
			Arcs:      r.Arcs,
			Roots:     r.Roots,
			Selected:  r.Selected,
			CreatedAt: r.CreatedAt,
		}
	}
	return items, total, nil
}

// DeleteSelection drops a cached selection.
func (s *Service) DeleteSelection(_ context.Context, key string) error {
	return s.db.DeleteSelection(key)
}

// GeoJSON returns the selected geometries of one scale of a cached selection.
func (s *Service) GeoJSON(ctx context.Context, key string, scale int) ([]byte, error) {
	d, err := s.GetSelection(ctx, key)
	if err != nil {
		return nil, err
	}
	fc, err := d.Payload.GeoJSON(scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return fc.MarshalJSON()
}

// BuildContext derives the journey context of a routing result without
// touching a subgraph.
func (s *Service) BuildContext(_ context.Context, r *models.RoutingResult) *JourneyContext {
	return NewJourneyContext(r)
}

// NewJourneyContext is the client view of journey.Build for r.
func NewJourneyContext(r *models.RoutingResult) *JourneyContext {
	jc := journey.Build(r.Nodes)
	out := &JourneyContext{
		Entries:  make([]ContextEntry, len(jc.Entries)),
		Unmapped: unmappedNodes(jc.Unmapped),
		Regions:  r.PhaseRegions(),
	}
	for i, e := range jc.Entries {
		out.Entries[i] = ContextEntry{NodeID: e.NodeID, Template: e.Template, Findings: *e.Findings}
	}
	if out.Regions == nil {
		out.Regions = []models.PhaseRegion{}
	}
	return out
}

// HandleJob computes the job document at path (relative to the storage
// root), records it as the source of the selection and writes the payload
// to the output directory. Documents that do not decode, or whose subgraph
// fails integrity checks, are moved to the rejected directory.
func (s *Service) HandleJob(p string, data []byte) error {
	job, err := document.DecodeJob(p, data)
	if err == nil {
		var d *SelectionDetail
		d, err = s.Compute(context.Background(), job)
		if err == nil {
			if err := s.db.UpsertSource(p, checksum.Sum(data), d.Key); err != nil {
				return err
			}
			out, err := json.MarshalIndent(d.Payload, "", "  ")
			if err != nil {
				return fmt.Errorf("selectservice: encode payload: %w", err)
			}
			return s.store.Write(s.outputPath(p), out)
		}
	}
	if errors.Is(err, apperr.ErrInvalidInput) || errors.Is(err, causalnet.ErrGraphIntegrity) {
		s.reject(p, err)
	}
	return err
}

// RemoveJob forgets the job document at path and deletes its output file
// once no other document produced the same selection. It returns
// apperr.ErrNotFound when the document was never computed.
func (s *Service) RemoveJob(p string) error {
	checksums, err := s.db.SourceChecksums()
	if err != nil {
		return err
	}
	if _, ok := checksums[p]; !ok {
		return apperr.ErrNotFound
	}
	if _, err := s.db.DeleteSource(p); err != nil {
		return err
	}
	if err := s.store.Delete(s.outputPath(p)); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return nil
}

// SubmitJob validates data as a job document and stores it in the inbox
// under name. The watcher picks it up from there.
func (s *Service) SubmitJob(_ context.Context, name string, data []byte) (string, error) {
	if name == "" || !document.IsJobFile(name) {
		name = uuid.NewString() + ".json"
	}
	name = path.Base(name)
	if _, err := document.DecodeJob(name, data); err != nil {
		return "", err
	}
	dest := path.Join(s.dirs.Inbox, name)
	if _, err := s.store.Read(dest); err == nil {
		return "", fmt.Errorf("selectservice: submit %s: %w", dest, apperr.ErrAlreadyExists)
	}
	if err := s.store.Write(dest, data); err != nil {
		return "", err
	}
	return dest, nil
}

// Ready reports whether the cache is reachable.
func (s *Service) Ready() error {
	return s.db.Ping()
}

func (s *Service) outputPath(jobPath string) string {
	return path.Join(s.dirs.Output, document.Stem(jobPath)+".selection.json")
}

func (s *Service) reject(p string, cause error) {
	dest := path.Join(s.dirs.Rejected, path.Base(p))
	if err := s.store.Move(p, dest); err != nil {
		s.logger.Error("reject job failed", slog.String("path", p), slog.String("error", err.Error()))
		return
	}
	s.logger.Warn("job rejected", slog.String("path", p), slog.String("moved_to", dest), slog.String("error", cause.Error()))
}

func (s *Service) detailFromRow(row *index.SelectionRow) (*SelectionDetail, error) {
	var p selection.Payload
	if err := json.Unmarshal(row.Payload, &p); err != nil {
		return nil, fmt.Errorf("selectservice: decode cached payload %s: %w", row.Key, err)
	}
	d := detail(*row, &p)
	srcs, err := s.db.SourcesFor(row.Key)
	if err != nil {
		return nil, err
	}
	d.Sources = nonNilSlice(srcs)
	return d, nil
}

func detail(row index.SelectionRow, p *selection.Payload) *SelectionDetail {
	return &SelectionDetail{
		Key:       row.Key,
		RunID:     row.RunID,
		Name:      row.Name,
		Variables: row.Variables,
		Arcs:      row.Arcs,
		Roots:     row.Roots,
		Selected:  row.Selected,
		Payload:   p,
		CreatedAt: row.CreatedAt,
	}
}

func unmappedNodes(in []journey.UnmappedContextError) []UnmappedNode {
	out := make([]UnmappedNode, len(in))
	for i, u := range in {
		out[i] = UnmappedNode{Position: u.Position, ID: u.NodeID, Type: u.Type, Active: u.Active}
	}
	return out
}

func total(counts []int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
