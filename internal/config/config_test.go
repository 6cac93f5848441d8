package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	rag, err := Parse[RAGConfig]()
	require.NoError(t, err)
	assert.Equal(t, 1000, rag.ChunkSize)
	assert.Equal(t, 200, rag.ChunkOverlap)
	assert.Equal(t, 2, rag.TopK)
	assert.Equal(t, 30*time.Second, rag.CondenseTimeout)
	assert.Equal(t, 60*time.Second, rag.GenerationTimeout)

	emb, err := Parse[EmbeddingConfig]()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, emb.Timeout)
	assert.Equal(t, 8191, emb.MaxInputTokens)

	vs, err := Parse[VectorStoreConfig]()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", vs.Backend)
	assert.Equal(t, 10*time.Second, vs.QueryTimeout)

	app, err := Parse[AppConfig]()
	require.NoError(t, err)
	assert.Equal(t, "gpt-3.5-turbo", app.Model)

	httpCfg, err := Parse[HTTPConfig]()
	require.NoError(t, err)
	assert.Equal(t, ":8080", httpCfg.Addr)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("DOCCHAT_CHUNK_SIZE", "500")
	t.Setenv("DOCCHAT_TOP_K", "4")
	t.Setenv("DOCCHAT_GENERATION_IDLE_TIMEOUT", "2m")

	rag, err := Parse[RAGConfig]()
	require.NoError(t, err)
	assert.Equal(t, 500, rag.ChunkSize)
	assert.Equal(t, 4, rag.TopK)
	assert.Equal(t, 2*time.Minute, rag.GenerationTimeout)
}

func TestParse_Malformed(t *testing.T) {
	t.Setenv("DOCCHAT_CHUNK_SIZE", "big")
	_, err := Parse[RAGConfig]()
	assert.Error(t, err)
}

func TestRuntimePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOCCHAT_RUNTIME_PATH", dir)

	assert.Equal(t, dir, GetRuntimePath())
	app, err := Parse[AppConfig]()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "docchat.db"), app.GetDatabasePath())
	assert.Equal(t, filepath.Join(dir, ".env"), app.GetEnvPath())
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOCCHAT_RUNTIME_PATH", dir)

	_, err := LoadEnvFile()
	require.NoError(t, err, "missing file is not an error")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DOCCHAT_TOP_K=7\n"), 0o600))
	t.Setenv("DOCCHAT_TOP_K", "")
	os.Unsetenv("DOCCHAT_TOP_K")

	_, err = LoadEnvFile()
	require.NoError(t, err)
	assert.Equal(t, "7", os.Getenv("DOCCHAT_TOP_K"))
}
