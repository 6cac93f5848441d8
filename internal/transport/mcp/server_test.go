package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/session"
)

type fakeIngester struct {
	refs       []string
	namespaces []string
	err        error
}

func (f *fakeIngester) IngestFile(ctx context.Context, ref, namespace string) (core.IngestResult, error) {
	f.refs = append(f.refs, ref)
	f.namespaces = append(f.namespaces, namespace)
	if f.err != nil {
		return core.IngestResult{}, f.err
	}
	return core.IngestResult{ChunkCount: 3}, nil
}

type fakePipeline struct {
	searchNS string
	searchK  int
	asked    []string
	askErr   error
}

func (f *fakePipeline) Ask(ctx context.Context, s *session.Session, question string, sink core.TokenSink) (chat.TurnResult, error) {
	f.asked = append(f.asked, s.ID()+":"+question)
	if f.askErr != nil {
		return chat.TurnResult{}, f.askErr
	}
	sink.OnToken("42")
	return chat.TurnResult{
		Answer:     "42",
		Standalone: question,
		Sources: []core.ScoredChunk{
			{Chunk: core.Chunk{Content: "the answer is 42", Metadata: core.ChunkMetadata{Source: "guide.txt"}}, Score: 0.9},
		},
	}, nil
}

func (f *fakePipeline) Search(ctx context.Context, namespace, query string, k int) ([]core.ScoredChunk, error) {
	f.searchNS = namespace
	f.searchK = k
	return []core.ScoredChunk{
		{Chunk: core.Chunk{Content: query, Metadata: core.ChunkMetadata{Source: "guide.txt"}}, Score: 1},
	}, nil
}

func newClient(t *testing.T, srv *Server) *client.Client {
	t.Helper()
	ctx := context.Background()

	c, err := client.NewInProcessClient(srv.MCP())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Start(ctx))

	req := mcpproto.InitializeRequest{}
	req.Params.ProtocolVersion = mcpproto.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcpproto.Implementation{Name: "test", Version: "0"}
	_, err = c.Initialize(ctx, req)
	require.NoError(t, err)
	return c
}

func call(t *testing.T, c *client.Client, name string, args map[string]any) (string, bool) {
	t.Helper()
	req := mcpproto.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcpproto.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestServer_ListsTools(t *testing.T) {
	c := newClient(t, NewServer(session.NewRegistry(nil, 10), &fakePipeline{}, &fakeIngester{}, 2))

	res, err := c.ListTools(context.Background(), mcpproto.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"ingest_file", "search_document", "ask_document"}, names)
}

func TestServer_IngestFile(t *testing.T) {
	ing := &fakeIngester{}
	c := newClient(t, NewServer(session.NewRegistry(nil, 10), &fakePipeline{}, ing, 2))

	text, isErr := call(t, c, "ingest_file", map[string]any{"chat_id": "c1", "path": "/tmp/guide.txt"})
	assert.False(t, isErr)
	assert.Contains(t, text, "Stored 3 chunks")
	assert.Equal(t, []string{"/tmp/guide.txt"}, ing.refs)
	assert.Equal(t, []string{"c1"}, ing.namespaces)

	ing.err = core.ErrEmptyDocument
	text, isErr = call(t, c, "ingest_file", map[string]any{"chat_id": "c1", "path": "/tmp/empty.txt"})
	assert.True(t, isErr)
	assert.Contains(t, text, "empty document")
}

func TestServer_MissingArguments(t *testing.T) {
	c := newClient(t, NewServer(session.NewRegistry(nil, 10), &fakePipeline{}, &fakeIngester{}, 2))

	tests := []struct {
		tool string
		args map[string]any
	}{
		{"ingest_file", map[string]any{"chat_id": "c1"}},
		{"search_document", map[string]any{"query": "x"}},
		{"ask_document", map[string]any{"chat_id": "c1"}},
		{"ask_document", map[string]any{"chat_id": "c1", "question": "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			_, isErr := call(t, c, tt.tool, tt.args)
			assert.True(t, isErr)
		})
	}
}

func TestServer_SearchDefaultsK(t *testing.T) {
	p := &fakePipeline{}
	c := newClient(t, NewServer(session.NewRegistry(nil, 10), p, &fakeIngester{}, 4))

	text, isErr := call(t, c, "search_document", map[string]any{"chat_id": "c1", "query": "revenue"})
	require.False(t, isErr)
	assert.Equal(t, "c1", p.searchNS)
	assert.Equal(t, 4, p.searchK)

	var hits []core.ScoredChunk
	require.NoError(t, json.Unmarshal([]byte(text), &hits))
	require.Len(t, hits, 1)
	assert.Equal(t, "revenue", hits[0].Content)

	_, isErr = call(t, c, "search_document", map[string]any{"chat_id": "c1", "query": "revenue", "k": 1})
	require.False(t, isErr)
	assert.Equal(t, 1, p.searchK)

	_, isErr = call(t, c, "search_document", map[string]any{"chat_id": "c1", "query": "revenue", "k": 0})
	assert.True(t, isErr)
}

func TestServer_AskDocument(t *testing.T) {
	p := &fakePipeline{}
	reg := session.NewRegistry(nil, 10)
	c := newClient(t, NewServer(reg, p, &fakeIngester{}, 2))

	text, isErr := call(t, c, "ask_document", map[string]any{"chat_id": "c7", "question": "what is it?"})
	require.False(t, isErr)

	var res chat.TurnResult
	require.NoError(t, json.Unmarshal([]byte(text), &res))
	assert.Equal(t, "42", res.Answer)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "guide.txt", res.Sources[0].Metadata.Source)
	assert.Equal(t, []string{"c7:what is it?"}, p.asked)

	_, ok := reg.Peek("c7")
	assert.True(t, ok)

	p.askErr = errors.Join(core.ErrGenerationInterrupted, context.DeadlineExceeded)
	text, isErr = call(t, c, "ask_document", map[string]any{"chat_id": "c7", "question": "again?"})
	assert.True(t, isErr)
	assert.Contains(t, text, "generation interrupted")
}
