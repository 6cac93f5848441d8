package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sandevgo/docchat/internal/core"
)

func TestCondensePrompt(t *testing.T) {
	history := core.ChatHistory{
		{Question: "What is the doc about?", Answer: "It discusses Y."},
		{Question: "Who wrote it?", Answer: "Z."},
	}
	prompt := CondensePrompt("What is X?", history)

	assert.Contains(t, prompt, "rephrase the follow up question to be a standalone question")
	assert.Contains(t, prompt, "Human: What is the doc about?\nAssistant: It discusses Y.\nHuman: Who wrote it?\nAssistant: Z.")
	assert.Contains(t, prompt, "Follow Up Input: What is X?\nStandalone question:")
}

func TestAnswerPrompt(t *testing.T) {
	chunks := []core.ScoredChunk{
		{Chunk: core.Chunk{Content: "first part", Metadata: core.ChunkMetadata{Source: "a.txt"}}},
		{Chunk: core.Chunk{Content: "second part"}},
	}

	prompt := AnswerPrompt("What is X?", chunks)
	assert.Contains(t, prompt, "Question: What is X?")
	assert.Contains(t, prompt, "[1] source: a.txt\nfirst part\n\n[2] source: unknown\nsecond part")
	assert.Contains(t, prompt, `just say "Hmm, I'm not sure."`)
	assert.Contains(t, prompt, "Answer in Markdown:")

	empty := AnswerPrompt("What is X?", nil)
	assert.Contains(t, empty, "No part of the document matched")
	assert.Contains(t, empty, "Do not answer from your own knowledge")
	assert.Contains(t, empty, "Question: What is X?")
	assert.NotContains(t, empty, "{context}")
}

func TestSanitizeQuestion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  What is X?  ", want: "What is X?"},
		{in: "line one\nline two", want: "line one line two"},
		{in: "windows\r\nbreak", want: "windows break"},
		{in: "\n\t \n", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeQuestion(tt.in), "input %q", tt.in)
	}
}
