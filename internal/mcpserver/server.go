// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes GKG selection tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/LucasGeos/GKG/internal/document"
	"github.com/LucasGeos/GKG/internal/journey"
	"github.com/LucasGeos/GKG/internal/selectservice"
)

const inputFormatURI = "gkg://input-format"

// Server wraps the MCP server with GKG tools.
type Server struct {
	mcp *server.MCPServer
	svc *selectservice.Service
}

// New creates a new MCP server with all GKG tools registered.
func New(svc *selectservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"GKG",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("compute_selection",
		mcp.WithDescription("Compute the multi-scale feature selection of a job document "+
			"(route subgraph plus routing result). The document MUST follow the input "+
			"contract: read it first via get_input_contract or the "+inputFormatURI+" resource."),
		mcp.WithString("job", mcp.Required(), mcp.Description("Job document, JSON or YAML")),
		mcp.WithString("name", mcp.Description("Optional job name")),
	), s.computeSelection)

	s.mcp.AddTool(mcp.NewTool("get_selection",
		mcp.WithDescription("Read a cached selection by key. With scale, returns the "+
			"selected geometries of that conceptual scale as GeoJSON instead."),
		mcp.WithString("key", mcp.Required(), mcp.Description("Selection key returned by compute_selection")),
		mcp.WithNumber("scale", mcp.Description("Optional conceptual scale 0-4")),
	), s.getSelection)

	s.mcp.AddTool(mcp.NewTool("list_selections",
		mcp.WithDescription("List cached selections, newest first."),
		mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
		mcp.WithNumber("offset", mcp.Description("Page offset")),
	), s.listSelections)

	s.mcp.AddTool(mcp.NewTool("build_context",
		mcp.WithDescription("Map the nodes of a routing result to propagation templates "+
			"and phase regions without a subgraph."),
		mcp.WithString("routing", mcp.Required(), mcp.Description("Routing result document (nk_routing_nodes), JSON or YAML")),
	), s.buildContext)

	s.mcp.AddTool(mcp.NewTool("get_schemes",
		mcp.WithDescription("Returns the propagation templates and the node type/activity table."),
	), s.getSchemes)

	s.mcp.AddTool(mcp.NewTool("submit_job",
		mcp.WithDescription("Validate a job document and drop it into the inbox, where the "+
			"watcher computes it. Pass the document inline as content, or as a url "+
			"(http, https or a base64 data URI)."),
		mcp.WithString("content", mcp.Description("Job document, JSON or YAML")),
		mcp.WithString("url", mcp.Description("Where to fetch the job document from")),
		mcp.WithString("filename", mcp.Description("Inbox file name (.json, .yaml or .yml)")),
	), s.submitJob)

	s.mcp.AddTool(mcp.NewTool("get_input_contract",
		mcp.WithDescription("Returns the GKG job document contract. "+
			"Call this before computing or submitting jobs."),
	), s.getInputContract)

	s.mcp.AddResource(
		mcp.NewResource(inputFormatURI, "Job Document Contract",
			mcp.WithResourceDescription("Format of the subgraph and routing result documents GKG accepts."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readInputFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) computeSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("job")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	job, err := document.DecodeJob("", []byte(body))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if name := req.GetString("name", ""); name != "" {
		job.Name = name
	}
	d, err := s.svc.Compute(ctx, job)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func (s *Server) getSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key, err := req.RequireString("key")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if scale := req.GetInt("scale", -1); scale >= 0 {
		data, err := s.svc.GeoJSON(ctx, key, scale)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}
	d, err := s.svc.GetSelection(ctx, key)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("selection %s: %v", key, err)), nil
	}
	return jsonResult(d)
}

func (s *Server) listSelections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, total, err := s.svc.ListSelections(ctx, req.GetInt("limit", 0), req.GetInt("offset", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"selections": items, "total": total})
}

func (s *Server) buildContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	body, err := req.RequireString("routing")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := document.DecodeRouting("", []byte(body))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.BuildContext(ctx, r))
}

func (s *Server) getSchemes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates := make(map[journey.Template]journey.Matrix)
	for _, t := range journey.Templates() {
		templates[t] = *journey.Scheme(t)
	}
	return jsonResult(map[string]any{
		"templates": templates,
		"mappings":  journey.Mappings(),
	})
}

func (s *Server) submitJob(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	rawURL := req.GetString("url", "")
	filename := req.GetString("filename", "")

	var data []byte
	switch {
	case content != "":
		data = []byte(content)
	case rawURL != "":
		var ext string
		var err error
		data, ext, err = fetchJob(ctx, rawURL)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if filename == "" {
			filename = filenameFromURL(rawURL, ext)
		}
	default:
		return mcp.NewToolResultError("one of content or url is required"), nil
	}
	if len(data) > maxJobSize {
		return mcp.NewToolResultError(fmt.Sprintf("job too large: %d bytes (max %d)", len(data), maxJobSize)), nil
	}
	if filename != "" {
		filename = sanitizeFilename(filename)
	}

	dest, err := s.svc.SubmitJob(ctx, filename, data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("queued: %s", dest)), nil
}

func (s *Server) getInputContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(InputFormatContract), nil
}

func (s *Server) readInputFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      inputFormatURI,
			MIMEType: "text/markdown",
			Text:     InputFormatContract,
		},
	}, nil
}
