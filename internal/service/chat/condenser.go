package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sandevgo/docchat/internal/core"
)

type Condenser struct {
	llm     core.Completer
	timeout time.Duration
}

func NewCondenser(llm core.Completer, timeout time.Duration) *Condenser {
	return &Condenser{llm: llm, timeout: timeout}
}

// Condense rewrites a follow-up into a standalone question. With no history
// the question is returned as is and the model is not called.
func (c *Condenser) Condense(ctx context.Context, question string, history core.ChatHistory) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	out, err := c.llm.Complete(ctx, CondensePrompt(question, history))
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrCondensationFailed, err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: model returned an empty question", core.ErrCondensationFailed)
	}
	return out, nil
}
