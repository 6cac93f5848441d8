package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/docchat/internal/core"
)

var errIdle = errors.New("no tokens received before the inactivity timeout")

// Generation is a settled answer and the chunks it was grounded in.
type Generation struct {
	Answer  string
	Sources []core.ScoredChunk
}

type Generator struct {
	llm         core.Streamer
	idleTimeout time.Duration
}

// NewGenerator aborts a stream when no token arrives for idleTimeout. Zero disables the timer.
func NewGenerator(llm core.Streamer, idleTimeout time.Duration) *Generator {
	return &Generator{llm: llm, idleTimeout: idleTimeout}
}

// Generate streams an answer to question. Every fragment reaches sink before
// Generate returns; fragments already delivered stay delivered on failure.
func (g *Generator) Generate(
	ctx context.Context,
	question string,
	chunks []core.ScoredChunk,
	sink core.TokenSink,
) (Generation, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	onToken := func(text string) {
		if sink != nil {
			sink.OnToken(text)
		}
	}
	if g.idleTimeout > 0 {
		timer := time.AfterFunc(g.idleTimeout, func() { cancel(errIdle) })
		defer timer.Stop()
		onToken = func(text string) {
			timer.Reset(g.idleTimeout)
			if sink != nil {
				sink.OnToken(text)
			}
		}
	}

	answer, err := g.llm.Stream(ctx, AnswerPrompt(question, chunks), core.TokenSinkFunc(onToken))
	if err != nil {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(err, cause) {
			err = fmt.Errorf("%w: %w", cause, err)
		}
		return Generation{}, fmt.Errorf("%w: %w", core.ErrGenerationInterrupted, err)
	}
	return Generation{Answer: answer, Sources: chunks}, nil
}
