// Package mcp exposes skill search as Model Context Protocol tools so an
// agent can query its own skills over stdio.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/skillsearch"
	"github.com/deepnoodle-ai/skillsearch/log"
	"github.com/deepnoodle-ai/skillsearch/remote"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "skill-search"

// Tool names.
const (
	ToolSearchLocal  = "search_local_skills"
	ToolListLocal    = "list_local_skills"
	ToolSearchRemote = "search_remote_skills"
	ToolRefresh      = "refresh_skills"
	ToolCacheStatus  = "cache_status"
)

// ErrRemoteDisabled is reported by the remote search tool when no client is
// configured.
var ErrRemoteDisabled = errors.New("remote search is not configured")

// Remote searches the skills.sh registry. *remote.Client satisfies it.
type Remote interface {
	Search(ctx context.Context, query string, limit int) ([]remote.Skill, error)
}

type handlers struct {
	searcher *skillsearch.Searcher
	repo     *skillsearch.Repository
	remote   Remote
	logger   log.Logger
}

// NewServer returns an MCP server with the skill search tools registered.
// A nil remote leaves the remote search tool registered but failing. Tool
// calls log to logger; nil discards.
func NewServer(searcher *skillsearch.Searcher, repo *skillsearch.Repository, rc Remote, version string, logger log.Logger) *server.MCPServer {
	s := server.NewMCPServer(ServerName, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	h := &handlers{searcher: searcher, repo: repo, remote: rc, logger: log.OrNull(logger)}

	s.AddTool(mcp.NewTool(ToolSearchLocal,
		mcp.WithDescription("Search the skills installed for AI agents on this machine. "+
			"Matches names, descriptions and tags, tolerating typos. Returns a JSON array, best match first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text query, e.g. \"log\" or \"database migrations\"")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.searchLocal)

	s.AddTool(mcp.NewTool(ToolListLocal,
		mcp.WithDescription("List every locally installed skill, including internal ones, as a JSON array."),
		mcp.WithString("agent", mcp.Description("Only list the skills of this agent id, e.g. \"claude-code\"")),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.listLocal)

	s.AddTool(mcp.NewTool(ToolSearchRemote,
		mcp.WithDescription("Search the public skills.sh registry. Returns a JSON array."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Free-text query")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(true),
	), h.searchRemote)

	s.AddTool(mcp.NewTool(ToolRefresh,
		mcp.WithDescription("Forget the cached skill list and scan the filesystem again."),
	), h.refresh)

	s.AddTool(mcp.NewTool(ToolCacheStatus,
		mcp.WithDescription("Report whether the skill list is cached and how many skills it holds."),
		mcp.WithReadOnlyHintAnnotation(true),
	), h.cacheStatus)

	return s
}

// ServeStdio runs s on stdin and stdout until the input is closed. logger is
// attached to every request context so log.Ctx resolves to it.
func ServeStdio(s *server.MCPServer, logger log.Logger) error {
	logger = log.OrNull(logger)
	return server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return log.WithLogger(ctx, logger)
	}))
}

func (h *handlers) searchLocal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	skills, err := h.searcher.Search(ctx, query)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("local search failed", err), nil
	}
	h.logger.Debug("mcp local search", "query", query, "results", len(skills))
	return jsonResult(skills)
}

func (h *handlers) listLocal(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agent := req.GetString("agent", "")
	var (
		skills any
		err    error
	)
	if agent == "" {
		skills, err = h.repo.Scan(ctx)
	} else {
		skills, err = h.repo.SkillsForAgent(ctx, agent)
	}
	if err != nil {
		return mcp.NewToolResultErrorFromErr("listing skills failed", err), nil
	}
	return jsonResult(skills)
}

func (h *handlers) searchRemote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if h.remote == nil {
		return mcp.NewToolResultError(ErrRemoteDisabled.Error()), nil
	}
	limit := req.GetInt("limit", remote.DefaultLimit)
	skills, err := h.remote.Search(ctx, query, limit)
	if err != nil {
		h.logger.Warn("mcp remote search failed", "query", query, "error", err)
		return mcp.NewToolResultErrorFromErr("remote search failed", err), nil
	}
	return jsonResult(skills)
}

func (h *handlers) refresh(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.repo.Invalidate()
	skills, err := h.repo.Scan(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("rescan failed", err), nil
	}
	h.logger.Debug("mcp rescan", "skills", len(skills))
	return mcp.NewToolResultText(fmt.Sprintf("Rescanned: %d skills found.", len(skills))), nil
}

type cacheStatus struct {
	Cached bool `json:"cached"`
	Skills int  `json:"skills"`
}

func (h *handlers) cacheStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skills, ok := h.repo.Snapshot()
	return jsonResult(cacheStatus{Cached: ok, Skills: len(skills)})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
