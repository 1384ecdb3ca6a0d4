package api

import (
	"github.com/LucasGeos/GKG/internal/journey"
	"github.com/LucasGeos/GKG/internal/selectservice"
)

// SelectionDetail is the full selection response type (aliased from the domain layer).
type SelectionDetail = selectservice.SelectionDetail

// SelectionListItem is a lightweight item in a list response (aliased from the domain layer).
type SelectionListItem = selectservice.SelectionListItem

// SelectionListResponse wraps paginated selection listings.
type SelectionListResponse struct {
	Selections []SelectionListItem `json:"selections" validate:"required"`
	Total      int                 `json:"total" example:"42" validate:"required"`
}

// JourneyContext is the response of POST /context.
type JourneyContext = selectservice.JourneyContext

// SchemesResponse lists the propagation templates and the node table.
type SchemesResponse struct {
	Templates map[journey.Template]journey.Matrix `json:"templates" validate:"required"`
	Mappings  []journey.Mapping                   `json:"mappings" validate:"required"`
}

// JobUploadResponse is returned after a job document lands in the inbox.
type JobUploadResponse struct {
	Path string `json:"path" example:"inbox/route.json" validate:"required"`
	Size int    `json:"size" example:"12345" validate:"required"`
}

// NewSchemesResponse builds the schemes payload from the journey package.
func NewSchemesResponse() SchemesResponse {
	resp := SchemesResponse{
		Templates: make(map[journey.Template]journey.Matrix),
		Mappings:  journey.Mappings(),
	}
	for _, t := range journey.Templates() {
		resp.Templates[t] = *journey.Scheme(t)
	}
	return resp
}
