// Package document decodes job documents: a route subgraph plus the routing
// result computed on it, stored as JSON or YAML.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/LucasGeos/GKG/internal/apperr"
	"github.com/LucasGeos/GKG/internal/models"
)

// Format is the encoding of a document.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format implied by the file extension of path.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	default:
		return "", false
	}
}

// IsJobFile reports whether path has a job document extension. Computed
// selection outputs (*.selection.json) are not jobs.
func IsJobFile(path string) bool {
	if strings.HasSuffix(strings.ToLower(path), ".selection.json") {
		return false
	}
	_, ok := FormatOf(path)
	return ok
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Job is one selection request.
type Job struct {
	Name     string               `json:"name,omitempty" yaml:"name,omitempty"`
	Subgraph models.Subgraph      `json:"subgraph" yaml:"subgraph"`
	Result   models.RoutingResult `json:"result" yaml:"result"`
}

// Validate checks the subgraph categories and the routing result.
func (j *Job) Validate() error {
	if err := j.Subgraph.Validate(); err != nil {
		return fmt.Errorf("subgraph: %w", err)
	}
	if err := j.Result.Validate(); err != nil {
		return fmt.Errorf("result: %w", err)
	}
	return nil
}

// DecodeJob decodes and validates a job document. The format is taken from
// the extension of path; a job without a name is named after the file.
func DecodeJob(path string, data []byte) (*Job, error) {
	var job Job
	if err := decode(path, data, &job); err != nil {
		return nil, err
	}
	if job.Name == "" && path != "" {
		job.Name = Stem(path)
	}
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("document: %s: %w: %w", path, apperr.ErrInvalidInput, err)
	}
	return &job, nil
}

// DecodeSubgraph decodes a standalone subgraph document.
func DecodeSubgraph(path string, data []byte) (*models.Subgraph, error) {
	var sub models.Subgraph
	if err := decode(path, data, &sub); err != nil {
		return nil, err
	}
	if err := sub.Validate(); err != nil {
		return nil, fmt.Errorf("document: %s: %w: %w", path, apperr.ErrInvalidInput, err)
	}
	return &sub, nil
}

// DecodeRouting decodes a standalone routing result document.
func DecodeRouting(path string, data []byte) (*models.RoutingResult, error) {
	var r models.RoutingResult
	if err := decode(path, data, &r); err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("document: %s: %w: %w", path, apperr.ErrInvalidInput, err)
	}
	return &r, nil
}

func decode(path string, data []byte, v any) error {
	format, ok := FormatOf(path)
	if !ok {
		// Unnamed uploads: sniff JSON, otherwise try YAML.
		format = FormatYAML
		if t := bytes.TrimSpace(data); len(t) > 0 && (t[0] == '{' || t[0] == '[') {
			format = FormatJSON
		}
	}
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		err = dec.Decode(v)
	case FormatYAML:
		err = yaml.Unmarshal(data, v)
	}
	if err != nil {
		return fmt.Errorf("document: decode %s: %w: %w", path, apperr.ErrInvalidInput, err)
	}
	return nil
}

// Canonical returns a deterministic JSON encoding of the subgraph and route
// of job. Jobs that differ only in name, source format or key order encode
// to equal bytes.
func Canonical(job *Job) ([]byte, error) {
	data, err := json.Marshal(struct {
		Subgraph models.Subgraph      `json:"subgraph"`
		Result   models.RoutingResult `json:"result"`
	}{job.Subgraph, job.Result})
	if err != nil {
		return nil, fmt.Errorf("document: canonical: %w", err)
	}
	return data, nil
}

// Encode writes job in the given format.
func Encode(job *Job, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(job)
	default:
		return json.MarshalIndent(job, "", "  ")
	}
}
