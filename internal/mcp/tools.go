package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/samber/lo"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/dshills/fpml-mcp/internal/generator"
	"github.com/dshills/fpml-mcp/internal/indexer"
	"github.com/dshills/fpml-mcp/internal/storage"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeTagNotFound   = -32001 // Tag is not in the index
	ErrorCodeNotApplicable = -32005 // Root is unknown or not a top-level message element
)

// suggestionCount is how many near matches accompany a tag-not-found error
const suggestionCount = 3

// handleLookupTag handles the lookup_tag tool invocation
func (s *Server) handleLookupTag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	tag, err := requireString(args, "tag")
	if err != nil {
		return nil, err
	}

	result := s.index.Lookup(tag)
	if !result.Found {
		// a miss is an answer, not a failure
		return mcp.NewToolResultText(formatJSON(map[string]interface{}{
			"found":       false,
			"tag":         tag,
			"status":      result.Status(),
			"suggestions": s.index.Suggest(tag, suggestionCount),
		})), nil
	}

	return mcp.NewToolResultText(formatJSON(result.Summary)), nil
}

// handleGenerateTemplate handles the generate_template tool invocation
func (s *Server) handleGenerateTemplate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	root, err := requireString(args, "root")
	if err != nil {
		return nil, err
	}

	maxDepth, err := getIntDefault(args, "max_depth", s.config.MaxDepth)
	if err != nil {
		return nil, err
	}
	if maxDepth < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_depth must be >= 0", map[string]interface{}{
			"param": "max_depth",
			"value": maxDepth,
		})
	}

	doc, err := s.generator.Template(root, maxDepth)
	if err != nil {
		return s.generationFailure(root, err)
	}

	return mcp.NewToolResultText(formatJSON(s.documentResponse(root, doc))), nil
}

// handleGenerateMinimal handles the generate_minimal tool invocation
func (s *Server) handleGenerateMinimal(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	root, err := requireString(args, "root")
	if err != nil {
		return nil, err
	}

	namespace, err := getStringDefault(args, "namespace", "")
	if err != nil {
		return nil, err
	}

	doc, err := s.generator.Minimal(root, namespace)
	if err != nil {
		return s.generationFailure(root, err)
	}

	return mcp.NewToolResultText(formatJSON(s.documentResponse(root, doc))), nil
}

// handleListTags handles the list_tags tool invocation
func (s *Server) handleListTags(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		// list_tags has no required parameters
		args = map[string]interface{}{}
	}

	topLevelOnly, err := getBoolDefault(args, "top_level_only", false)
	if err != nil {
		return nil, err
	}
	prefix, err := getStringDefault(args, "prefix", "")
	if err != nil {
		return nil, err
	}
	limit, err := getIntDefault(args, "limit", 0)
	if err != nil {
		return nil, err
	}
	if limit < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be >= 0", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	names := s.index.Names()
	if topLevelOnly {
		names = s.index.TopLevel()
	}
	if prefix != "" {
		names = lo.Filter(names, func(name string, _ int) bool {
			return strings.HasPrefix(name, prefix)
		})
	}

	total := len(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	response := map[string]interface{}{
		"count":     len(names),
		"total":     total,
		"truncated": len(names) < total,
		"tags":      names,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := map[string]interface{}{
		"source":     s.config.Source,
		"loaded":     s.index.Err() == nil,
		"statistics": s.index.Stats(),
		"build_mode": storage.BuildMode,
	}
	if err := s.index.Err(); err != nil {
		response["load_error"] = err.Error()
	}

	embeddings := map[string]interface{}{
		"available": false,
	}
	if s.store != nil {
		count, err := s.store.CountEmbeddings(ctx)
		if err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
				"error": err.Error(),
			})
		}
		embeddings["available"] = count > 0
		embeddings["count"] = count

		run, err := s.store.LatestRun(ctx)
		switch {
		case err == nil:
			embeddings["latest_run"] = map[string]interface{}{
				"id":         run.ID,
				"provider":   run.Provider,
				"model":      run.Model,
				"dimension":  run.Dimension,
				"count":      run.Count,
				"created_at": run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			}
		case errors.Is(err, storage.ErrNotFound):
			// no runs recorded yet
		default:
			return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	response["embeddings"] = embeddings

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// documentResponse wraps a generated document with its well-formedness check
func (s *Server) documentResponse(root, doc string) map[string]interface{} {
	response := map[string]interface{}{
		"root":     root,
		"document": doc,
	}
	name, err := generator.CheckWellFormed(doc)
	response["well_formed"] = err == nil
	if err != nil {
		s.logger.Warn("generated document is not well-formed", zap.String("root", root), zap.Error(err))
		response["well_formed_error"] = err.Error()
	} else {
		response["document_element"] = name
	}
	return response
}

// generationFailure reports generator failures as tool errors carrying an MCP
// error code. Unexpected failures are returned as protocol errors.
func (s *Server) generationFailure(root string, err error) (*mcp.CallToolResult, error) {
	var (
		notFound   *generator.RootNotFoundError
		cycle      *generator.CycleError
		depthLimit *generator.DepthLimitError
	)
	switch {
	case errors.As(err, &notFound):
		return toolError(ErrorCodeTagNotFound, err.Error(), map[string]interface{}{
			"root":        root,
			"suggestions": s.index.Suggest(root, suggestionCount),
		}), nil
	case errors.Is(err, generator.ErrNotApplicable):
		return toolError(ErrorCodeNotApplicable, err.Error(), map[string]interface{}{
			"root": root,
			"suggestions": indexer.FindSimilar(root, s.index.TopLevel(),
				&indexer.FuzzyMatchOptions{MaxSuggestions: suggestionCount}),
		}), nil
	case errors.As(err, &cycle):
		return toolError(ErrorCodeInternalError, err.Error(), map[string]interface{}{
			"root": root,
			"path": cycle.Path,
		}), nil
	case errors.As(err, &depthLimit):
		return toolError(ErrorCodeInternalError, err.Error(), map[string]interface{}{
			"root":  root,
			"tag":   depthLimit.Tag,
			"limit": depthLimit.Limit,
		}), nil
	default:
		s.logger.Error("generation failed", zap.String("root", root), zap.Error(err))
		return nil, newMCPError(ErrorCodeInternalError, "generation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Helper functions

// toolError builds an isError tool result whose JSON body carries the code, message and data
func toolError(code int, message string, data interface{}) *mcp.CallToolResult {
	result := mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"code":    code,
		"message": message,
		"data":    data,
	}))
	result.IsError = true
	return result
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// requireString extracts a non-empty string parameter
func requireString(args map[string]interface{}, key string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing",
		})
	}
	val, err := cast.ToStringE(raw)
	if err != nil || val == "" {
		return "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "empty or not a string",
		})
	}
	return val, nil
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) (bool, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return defaultValue, nil
	}
	val, err := cast.ToBoolE(raw)
	if err != nil {
		return false, invalidParam(key, raw, err)
	}
	return val, nil
}

// getIntDefault extracts an integer parameter with a default value.
// JSON numbers arrive as float64; numeric strings are accepted too.
func getIntDefault(args map[string]interface{}, key string, defaultValue int) (int, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return defaultValue, nil
	}
	val, err := cast.ToIntE(raw)
	if err != nil {
		return 0, invalidParam(key, raw, err)
	}
	return val, nil
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) (string, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return defaultValue, nil
	}
	val, err := cast.ToStringE(raw)
	if err != nil {
		return "", invalidParam(key, raw, err)
	}
	return val, nil
}

func invalidParam(key string, value interface{}, err error) error {
	return newMCPError(ErrorCodeInvalidParams, "invalid "+key, map[string]interface{}{
		"param":  key,
		"value":  value,
		"reason": err.Error(),
	})
}
