package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/LucasGeos/GKG/internal/apperr"
	"github.com/LucasGeos/GKG/internal/causalnet"
	"github.com/LucasGeos/GKG/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Error     string            `json:"error" validate:"required"`
	Integrity *integrityDetails `json:"integrity,omitempty"`
}

type integrityDetails struct {
	Category      models.EdgeCategory `json:"category"`
	EdgeID        models.ID           `json:"edge_id"`
	ParentID      models.ID           `json:"parent_id"`
	ChildID       models.ID           `json:"child_id"`
	MissingParent bool                `json:"missing_parent"`
	MissingChild  bool                `json:"missing_child"`
}

func errorBody(msg string) errResponse {
	return errResponse{Error: msg}
}

// writeError maps service errors to status codes. Unexpected errors are
// logged with op and reported as 500.
func writeError(w http.ResponseWriter, op string, err error) {
	var gie *causalnet.GraphIntegrityError
	switch {
	case errors.As(err, &gie):
		body := errorBody(gie.Error())
		body.Integrity = &integrityDetails{
			Category:      gie.Category,
			EdgeID:        gie.EdgeID,
			ParentID:      gie.ParentID,
			ChildID:       gie.ChildID,
			MissingParent: gie.MissingParent,
			MissingChild:  gie.MissingChild,
		}
		writeJSON(w, http.StatusUnprocessableEntity, body)
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
