package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/session"
	"github.com/sandevgo/docchat/pkg/log"
)

type Ingester interface {
	IngestFile(ctx context.Context, ref, namespace string) (core.IngestResult, error)
}

type Pipeline interface {
	Ask(ctx context.Context, s *session.Session, question string, sink core.TokenSink) (chat.TurnResult, error)
	Search(ctx context.Context, namespace, query string, k int) ([]core.ScoredChunk, error)
}

// Server publishes ingestion, search and question answering as MCP tools.
// The chat_id argument selects both the session and the vector namespace.
type Server struct {
	sessions *session.Registry
	pipeline Pipeline
	ingester Ingester
	defaultK int

	mcp *server.MCPServer
}

func NewServer(sessions *session.Registry, pipeline Pipeline, ingester Ingester, defaultK int) *Server {
	if defaultK <= 0 {
		defaultK = chat.DefaultTopK
	}

	s := &Server{
		sessions: sessions,
		pipeline: pipeline,
		ingester: ingester,
		defaultK: defaultK,
		mcp: server.NewMCPServer(
			core.AppName,
			core.AppVersion,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// MCP exposes the underlying server, mainly for in-process clients.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// Serve speaks JSON-RPC over the given streams until ctx is done or in closes.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx = log.WithComponent(ctx, "mcp")
	log.FromCtx(ctx).Info().Msg("mcp server listening on stdio")
	err := server.NewStdioServer(s.mcp).Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcpproto.NewTool("ingest_file",
		mcpproto.WithDescription("Load a local file or http(s) URL into a chat's document index, replacing nothing already stored."),
		mcpproto.WithString("chat_id", mcpproto.Required(), mcpproto.Description("Chat whose index receives the document")),
		mcpproto.WithString("path", mcpproto.Required(), mcpproto.Description("File path or URL")),
	), s.handleIngest)

	s.mcp.AddTool(mcpproto.NewTool("search_document",
		mcpproto.WithDescription("Return the chunks of a chat's documents most similar to a query."),
		mcpproto.WithString("chat_id", mcpproto.Required(), mcpproto.Description("Chat whose index is searched")),
		mcpproto.WithString("query", mcpproto.Required(), mcpproto.Description("Free text query")),
		mcpproto.WithNumber("k", mcpproto.Description("Number of chunks to return")),
	), s.handleSearch)

	s.mcp.AddTool(mcpproto.NewTool("ask_document",
		mcpproto.WithDescription("Ask a question about a chat's documents. Follow-up questions use the chat's history."),
		mcpproto.WithString("chat_id", mcpproto.Required(), mcpproto.Description("Chat to continue")),
		mcpproto.WithString("question", mcpproto.Required(), mcpproto.Description("Question in natural language")),
	), s.handleAsk)
}

func (s *Server) handleIngest(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	chatID, err := req.RequireString("chat_id")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	path, err := req.RequireString("path")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	res, err := s.ingester.IngestFile(ctx, path, chatID)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("chat", chatID).Msg("mcp ingest failed")
		return mcpproto.NewToolResultError(fmt.Sprintf("ingest %s: %v", path, err)), nil
	}
	return mcpproto.NewToolResultText(fmt.Sprintf("Stored %d chunks from %s in chat %s.", res.ChunkCount, path, chatID)), nil
}

func (s *Server) handleSearch(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	chatID, err := req.RequireString("chat_id")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	query, err := req.RequireString("query")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	k := req.GetInt("k", s.defaultK)
	if k <= 0 {
		return mcpproto.NewToolResultError("k must be positive"), nil
	}

	hits, err := s.pipeline.Search(ctx, chatID, query, k)
	if err != nil {
		return mcpproto.NewToolResultError(fmt.Sprintf("search: %v", err)), nil
	}
	return jsonResult(hits)
}

func (s *Server) handleAsk(ctx context.Context, req mcpproto.CallToolRequest) (*mcpproto.CallToolResult, error) {
	chatID, err := req.RequireString("chat_id")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	question, err := req.RequireString("question")
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}
	if strings.TrimSpace(question) == "" {
		return mcpproto.NewToolResultError(core.ErrEmptyQuestion.Error()), nil
	}

	sess, err := s.sessions.Get(ctx, chatID)
	if err != nil {
		return mcpproto.NewToolResultError(err.Error()), nil
	}

	// Tool results are not streamed; fragments are only collected by the session.
	res, err := s.pipeline.Ask(ctx, sess, question, core.TokenSinkFunc(func(string) {}))
	if err != nil {
		return mcpproto.NewToolResultError(fmt.Sprintf("ask: %v", err)), nil
	}
	return jsonResult(res)
}

func jsonResult(v any) (*mcpproto.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcpproto.NewToolResultText(string(data)), nil
}
