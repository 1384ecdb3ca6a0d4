package api

import (
	"io"
	"net/http"

	"github.com/LucasGeos/GKG/internal/selectservice"
)

const maxUploadBytes = 50 << 20 // 50 MB

// JobHandler accepts job documents into the inbox.
type JobHandler struct {
	svc *selectservice.Service
}

// NewJobHandler creates a JobHandler.
func NewJobHandler(svc *selectservice.Service) *JobHandler {
	return &JobHandler{svc: svc}
}

// Upload handles POST /api/jobs (multipart/form-data, field "file").
//
//	@Summary		Upload a job document into the inbox
//	@Tags			jobs
//	@Accept			multipart/form-data
//	@Produce		json
//	@Success		202	{object}	JobUploadResponse
//	@Failure		400	{object}	errResponse
//	@Failure		409	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/jobs [post]
func (h *JobHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	dest, err := h.svc.SubmitJob(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, "submit job", err)
		return
	}
	writeJSON(w, http.StatusAccepted, JobUploadResponse{Path: dest, Size: len(data)})
}
