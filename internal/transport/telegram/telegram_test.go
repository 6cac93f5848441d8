package telegram

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/conv"
)

func TestLiveReply_Throttles(t *testing.T) {
	now := time.Unix(0, 0)
	var edits []string
	r := newLiveReply(func(text string) error {
		edits = append(edits, text)
		return nil
	})
	r.now = func() time.Time { return now }

	r.OnToken("Hello")
	now = now.Add(300 * time.Millisecond)
	r.OnToken(" wor")
	now = now.Add(300 * time.Millisecond)
	r.OnToken("ld")
	now = now.Add(time.Second)
	r.OnToken("!")

	assert.Equal(t, []string{"Hello" + typingCursor, "Hello world!" + typingCursor}, edits)
}

func TestLiveReply_SkipsUnchangedAndRetriesFailed(t *testing.T) {
	now := time.Unix(0, 0)
	fail := true
	var edits []string
	r := newLiveReply(func(text string) error {
		edits = append(edits, text)
		if fail {
			return errors.New("429")
		}
		return nil
	})
	r.now = func() time.Time { return now }

	r.OnToken("a")
	fail = false
	now = now.Add(2 * time.Second)
	r.OnToken(" ")
	now = now.Add(2 * time.Second)
	r.OnToken("")

	assert.Equal(t, []string{"a" + typingCursor, "a" + typingCursor}, edits)
}

func TestLiveReply_TruncatesLongPreview(t *testing.T) {
	var got string
	r := newLiveReply(func(text string) error { got = text; return nil })
	r.OnToken(strings.Repeat("x", conv.TelegramMaxMessageLen+100))

	assert.LessOrEqual(t, len([]rune(got)), conv.TelegramMaxMessageLen)
	assert.True(t, strings.HasSuffix(got, "…"+typingCursor))
}

func TestRenderAnswer(t *testing.T) {
	parts := renderAnswer("**X** is a letter.", []core.ScoredChunk{
		{Chunk: core.Chunk{Content: "X is a <letter>.", Metadata: core.ChunkMetadata{Source: "doc.txt"}}},
	})
	require.Len(t, parts, 1)
	assert.Contains(t, parts[0], "<strong>X</strong> is a letter.")
	assert.Contains(t, parts[0], "<b>1. doc.txt</b>")
	assert.Contains(t, parts[0], "X is a &lt;letter&gt;.")

	long := renderAnswer(strings.Repeat("word ", 2000), nil)
	assert.Greater(t, len(long), 1)
	for _, p := range long {
		assert.LessOrEqual(t, len(p), conv.TelegramMaxMessageLen)
	}
}

func TestFailureMessages(t *testing.T) {
	assert.Equal(t, "telegram-42", Namespace(42))
	assert.Contains(t, turnFailure(core.ErrTurnInProgress), "previous question")
	assert.Contains(t, ingestFailure(errors.Join(core.ErrLoadError, errors.New("pdf"))), "Unsupported")
}
