package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/LucasGeos/GKG/internal/document"
	"github.com/LucasGeos/GKG/internal/selectservice"
	"github.com/LucasGeos/GKG/internal/sse"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc    *selectservice.Service
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil.
func NewHandler(svc *selectservice.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

func (h *Handler) publish(typ string, data any) {
	if h.broker != nil {
		h.broker.Publish(sse.Event{Type: typ, Data: data})
	}
}

// documentName picks a file name whose extension tells the decoder the
// format of an uploaded body.
func documentName(r *http.Request, stem string) string {
	ct := r.Header.Get("Content-Type")
	if strings.Contains(ct, "yaml") {
		return stem + ".yaml"
	}
	if strings.Contains(ct, "json") {
		return stem + ".json"
	}
	return stem
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return nil, false
	}
	if len(body) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody("body is required"))
		return nil, false
	}
	return body, true
}

// CreateSelection handles POST /api/selections.
//
//	@Summary		Compute the selection of a job document (JSON or YAML)
//	@Tags			selections
//	@Accept			json
//	@Produce		json
//	@Param			name	query		string	false	"Job name"
//	@Success		201		{object}	SelectionDetail
//	@Success		200		{object}	SelectionDetail	"Cached"
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/selections [post]
func (h *Handler) CreateSelection(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("name")
	job, err := document.DecodeJob(documentName(r, "request"), body)
	if err != nil {
		writeError(w, "decode job", err)
		return
	}
	if name != "" {
		job.Name = name
	}

	d, err := h.svc.Compute(r.Context(), job)
	if err != nil {
		h.publish(sse.EventSelectionFailed, map[string]string{"name": job.Name, "error": err.Error()})
		writeError(w, "compute selection", err)
		return
	}
	if d.Cached {
		writeJSON(w, http.StatusOK, d)
		return
	}
	h.publish(sse.EventSelectionComputed, map[string]string{"key": d.Key, "run_id": d.RunID, "name": d.Name})
	writeJSON(w, http.StatusCreated, d)
}

// ListSelections handles GET /api/selections.
//
//	@Summary		List cached selections, newest first
//	@Tags			selections
//	@Produce		json
//	@Param			limit	query		int	false	"Page size"
//	@Param			offset	query		int	false	"Page offset"
//	@Success		200		{object}	SelectionListResponse
//	@Security		BearerAuth
//	@Router			/selections [get]
func (h *Handler) ListSelections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListSelections(r.Context(), limit, offset)
	if err != nil {
		writeError(w, "list selections", err)
		return
	}
	writeJSON(w, http.StatusOK, SelectionListResponse{Selections: items, Total: total})
}

// GetSelection handles GET /api/selections/{key}.
//
//	@Summary		Get a cached selection
//	@Tags			selections
//	@Produce		json
//	@Param			key	path		string	true	"Selection key"
//	@Success		200	{object}	SelectionDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/selections/{key} [get]
func (h *Handler) GetSelection(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetSelection(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, "get selection", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// SelectionGeoJSON handles GET /api/selections/{key}/geojson.
//
//	@Summary		Selected geometries of one conceptual scale
//	@Tags			selections
//	@Produce		json
//	@Param			key		path		string	true	"Selection key"
//	@Param			scale	query		int		true	"Conceptual scale (0-4)"
//	@Success		200		{object}	object
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/selections/{key}/geojson [get]
func (h *Handler) SelectionGeoJSON(w http.ResponseWriter, r *http.Request) {
	scale, err := strconv.Atoi(r.URL.Query().Get("scale"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'scale' must be an integer"))
		return
	}
	data, err := h.svc.GeoJSON(r.Context(), chi.URLParam(r, "key"), scale)
	if err != nil {
		writeError(w, "selection geojson", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// DeleteSelection handles DELETE /api/selections/{key}.
//
//	@Summary		Drop a cached selection
//	@Tags			selections
//	@Param			key	path	string	true	"Selection key"
//	@Success		204	"Selection deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/selections/{key} [delete]
func (h *Handler) DeleteSelection(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.svc.DeleteSelection(r.Context(), key); err != nil {
		writeError(w, "delete selection", err)
		return
	}
	h.publish(sse.EventSelectionRemoved, map[string]string{"key": key})
	w.WriteHeader(http.StatusNoContent)
}

// BuildContext handles POST /api/context.
//
//	@Summary		Journey context of a routing result
//	@Tags			context
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	JourneyContext
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/context [post]
func (h *Handler) BuildContext(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	routing, err := document.DecodeRouting(documentName(r, "routing"), body)
	if err != nil {
		writeError(w, "decode routing", err)
		return
	}
	writeJSON(w, http.StatusOK, h.svc.BuildContext(r.Context(), routing))
}

// Schemes handles GET /api/schemes.
//
//	@Summary		Propagation templates and the node table
//	@Tags			context
//	@Produce		json
//	@Success		200	{object}	SchemesResponse
//	@Security		BearerAuth
//	@Router			/schemes [get]
func (h *Handler) Schemes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, NewSchemesResponse())
}
