package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContextWithLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	ctx, cleanup := NewContextWithLogger(context.Background(), Options{JSON: true, Writer: &buf})

	FromCtx(WithComponent(ctx, "ingest")).Info().Str("chat_id", "c1").Msg("indexed")
	cleanup()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "ingest", entry["component"])
	assert.Equal(t, "c1", entry["chat_id"])
	assert.Equal(t, "indexed", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestNewContextWithLogger_DebugLevel(t *testing.T) {
	var buf bytes.Buffer
	ctx, cleanup := NewContextWithLogger(context.Background(), Options{JSON: true, Writer: &buf})
	FromCtx(ctx).Debug().Msg("hidden")
	cleanup()
	assert.Empty(t, buf.String())

	buf.Reset()
	ctx, cleanup = NewContextWithLogger(context.Background(), Options{Debug: true, JSON: true, Writer: &buf})
	FromCtx(ctx).Debug().Msg("shown")
	cleanup()
	assert.Contains(t, buf.String(), "shown")
}
