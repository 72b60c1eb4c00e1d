// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"
	"log/slog"

	"github.com/huangsam/gitwalk/core"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// selectionOptions are the commit selection parameters shared by list_commits and walk_churn.
func selectionOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("repo_path", mcp.Description("Path to the Git working copy (defaults to the configured repository).")),
		mcp.WithString("since", mcp.Description("Only commits on or after this date (RFC3339 or YYYY-MM-DD).")),
		mcp.WithString("until", mcp.Description("Only commits on or before this date (RFC3339 or YYYY-MM-DD).")),
		mcp.WithString("author", mcp.Description("Case-insensitive substring of the author name.")),
		mcp.WithString("include", mcp.Description("Comma-separated globs; a commit must touch a matching path.")),
		mcp.WithString("exclude", mcp.Description("Comma-separated globs; paths matching these are ignored.")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of commits.")),
	}
}

// NewMCPServer initializes and configures the gitwalk MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager, logger *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer(
		"Gitwalk Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		logger:  contract.OrDefault(logger),
	}

	s.AddTool(mcp.NewTool("list_commits",
		append([]mcp.ToolOption{
			mcp.WithDescription("List non-merge commits newest first, with the files each one changed."),
		}, selectionOptions()...)...,
	), h.handleListCommits)

	s.AddTool(mcp.NewTool("diff_revisions",
		mcp.WithDescription("Per-file added and deleted line counts between two revisions."),
		mcp.WithString("left", mcp.Description("The older revision."), mcp.Required()),
		mcp.WithString("right", mcp.Description("The newer revision."), mcp.Required()),
		mcp.WithString("repo_path", mcp.Description("Path to the Git working copy.")),
	), h.handleDiffRevisions)

	s.AddTool(mcp.NewTool("show_file",
		mcp.WithDescription("Return a file's content at a revision, or its unified diff against another revision."),
		mcp.WithString("rev", mcp.Description("Revision to read the file at."), mcp.Required()),
		mcp.WithString("path", mcp.Description("Repository-relative file path."), mcp.Required()),
		mcp.WithString("against", mcp.Description("Older revision to diff against instead of returning content.")),
		mcp.WithString("repo_path", mcp.Description("Path to the Git working copy.")),
	), h.handleShowFile)

	s.AddTool(mcp.NewTool("earliest_revision",
		mcp.WithDescription("Return the root commit of HEAD's history."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git working copy.")),
	), h.handleEarliestRevision)

	s.AddTool(mcp.NewTool("walk_churn",
		append([]mcp.ToolOption{
			mcp.WithDescription("Check out each selected commit in turn and report line churn and working tree size. Moves the working copy and restores the default branch afterwards."),
		}, selectionOptions()...)...,
	), h.handleWalkChurn)

	return s
}

// StartMCPServer serves the gitwalk tools over stdio until the client disconnects.
func StartMCPServer(ctx context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr, core.LoggerFromContext(ctx))
	return server.ServeStdio(s)
}
