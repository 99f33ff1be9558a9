package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"toolscout/internal/domain"
)

// Recommender is the subset of the recommendation engine the MCP surface
// needs.
type Recommender interface {
	Recommend(ctx context.Context, query string) (domain.RecommendationResult, error)
}

// Server exposes the recommendation engine as an MCP tool over stdio so
// agent hosts can call it directly.
type Server struct {
	recommender Recommender
	logger      *zap.Logger
	version     string
}

func New(recommender Recommender, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if version == "" {
		version = "dev"
	}
	return &Server{
		recommender: recommender,
		logger:      logger.Named("mcp"),
		version:     version,
	}
}

// Run serves the MCP protocol on stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "toolscout",
		Version: s.version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})

	recommendTool := RecommendTool()
	server.AddTool(&recommendTool, s.recommendHandler())

	s.logger.Info("mcp server starting (stdio transport)")
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RecommendTool returns the MCP tool definition for toolscout.recommend_tools.
func RecommendTool() mcp.Tool {
	return mcp.Tool{
		Name:        "toolscout.recommend_tools",
		Description: "Recommend integration tools for a workflow need. Provide a natural-language description of what you want to automate or integrate; returns a ranked list of matching tools from the live catalog with relevance scores and reasoning, or a message when nothing matches confidently.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Description of the workflow or integration need, e.g. \"I need to verify email addresses before importing leads\".",
				},
			},
			"required": []string{"query"},
		},
	}
}

type recommendArguments struct {
	Query string `json:"query"`
}

func (s *Server) recommendHandler() mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args recommendArguments
		if raw := json.RawMessage(req.Params.Arguments); len(raw) > 0 {
			if err := json.Unmarshal(raw, &args); err != nil {
				return errorResult(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
		}

		result, err := s.recommender.Recommend(ctx, args.Query)
		if err != nil {
			s.logger.Warn("recommendation failed", zap.Error(err))
			return errorResult(err.Error()), nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			return nil, err
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		}, nil
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: message}},
		IsError: true,
	}
}
