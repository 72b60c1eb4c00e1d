package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/huangsam/gitwalk/core"
	"github.com/huangsam/gitwalk/internal/contract"
	"github.com/huangsam/gitwalk/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	logger  *slog.Logger
}

// prepare clones the base config and applies repo_path.
func (h *toolHandler) prepare(ctx context.Context, request mcp.CallToolRequest) (context.Context, *contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid repo_path: %w", err)
		}
		cfg.RepoPath = abs
	}
	logger := h.logger.With("tool", request.Params.Name)
	return core.ContextWithLogger(ctx, logger), cfg, nil
}

// prepareSelection is prepare plus the commit selection parameters.
func (h *toolHandler) prepareSelection(ctx context.Context, request mcp.CallToolRequest) (context.Context, *contract.Config, error) {
	ctx, cfg, err := h.prepare(ctx, request)
	if err != nil {
		return nil, nil, err
	}
	err = contract.RevalidateSelection(cfg,
		request.GetString("since", ""),
		request.GetString("until", ""),
		request.GetString("author", ""),
		request.GetString("include", ""),
		request.GetString("exclude", ""),
		request.GetInt("limit", 0),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid selection parameters: %w", err)
	}
	return ctx, cfg, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleListCommits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg, err := h.prepareSelection(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	commits, err := core.GetLogResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing commits failed: %v", err)), nil
	}
	return jsonResult(commits)
}

func (h *toolHandler) handleDiffRevisions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	left, err := request.RequireString("left")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	right, err := request.RequireString("right")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctx, cfg, err := h.prepare(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	entries, err := core.GetDiffResults(ctx, cfg, h.mgr, left, right)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("diff failed: %v", err)), nil
	}
	if entries == nil {
		entries = []schema.FileDiffEntry{}
	}
	return jsonResult(map[string]any{"left": left, "right": right, "files": entries})
}

func (h *toolHandler) handleShowFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rev, err := request.RequireString("rev")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ctx, cfg, err := h.prepare(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if against := request.GetString("against", ""); against != "" {
		diff, err := core.GetContentDiffResults(ctx, cfg, h.mgr, path, against, rev)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("content diff failed: %v", err)), nil
		}
		return jsonResult(map[string]any{"path": path, "from": against, "to": rev, "diff": diff})
	}

	content, err := core.GetShowResults(ctx, cfg, h.mgr, rev, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("show failed: %v", err)), nil
	}
	return jsonResult(map[string]any{"path": path, "rev": rev, "size": len(content), "content": string(content)})
}

func (h *toolHandler) handleEarliestRevision(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg, err := h.prepare(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	root, err := core.GetRootResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("root lookup failed: %v", err)), nil
	}
	return jsonResult(map[string]string{"root": root})
}

func (h *toolHandler) handleWalkChurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx, cfg, err := h.prepareSelection(ctx, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	results, err := core.GetWalkResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}
