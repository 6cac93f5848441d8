package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector_Cosine(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector
		want float32
	}{
		{name: "identical", a: Vector{1, 2, 3}, b: Vector{1, 2, 3}, want: 1},
		{name: "orthogonal", a: Vector{1, 0}, b: Vector{0, 1}, want: 0},
		{name: "opposite", a: Vector{1, 1}, b: Vector{-1, -1}, want: -1},
		{name: "scaled", a: Vector{1, 2}, b: Vector{2, 4}, want: 1},
		{name: "zero vector", a: Vector{0, 0}, b: Vector{1, 1}, want: 0},
		{name: "dimension mismatch", a: Vector{1}, b: Vector{1, 1}, want: 0},
		{name: "empty", a: Vector{}, b: Vector{}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.Cosine(tt.b), 1e-6)
		})
	}
}

func TestChunkID(t *testing.T) {
	c := Chunk{Content: "x", Metadata: ChunkMetadata{Source: "a.txt", Offset: 800}}

	id := ChunkID("chat-1", c)
	assert.Equal(t, id, ChunkID("chat-1", c), "stable across calls")
	assert.Equal(t, id, ChunkID("chat-1", Chunk{Content: "changed", Metadata: c.Metadata}), "content does not affect identity")
	assert.NotEqual(t, id, ChunkID("chat-2", c))
	assert.NotEqual(t, id, ChunkID("chat-1", Chunk{Metadata: ChunkMetadata{Source: "a.txt", Offset: 0}}))
	assert.Equal(t, "explicit", ChunkID("chat-1", Chunk{ID: "explicit"}))
}
