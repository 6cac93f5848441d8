package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/session"
	"github.com/sandevgo/docchat/internal/service/ui"
	"github.com/sandevgo/docchat/pkg/log"
)

type Asker interface {
	Ask(ctx context.Context, s *session.Session, question string, sink core.TokenSink) (chat.TurnResult, error)
}

// ReadLine is the line-mode chat used where a full-screen terminal is unavailable.
type ReadLine struct {
	sess   *session.Session
	asker  Asker
	router core.CmdRouter
	rl     *readline.Instance

	// interrupts aborts the running turn; nil disables it.
	interrupts <-chan os.Signal
}

func NewReadLine(runtimeDir string, sess *session.Session, asker Asker, router core.CmdRouter) (*ReadLine, error) {
	if err := os.MkdirAll(runtimeDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ">>> ",
		HistoryFile:     filepath.Join(runtimeDir, "input_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, err
	}

	return &ReadLine{
		sess:   sess,
		asker:  asker,
		router: router,
		rl:     rl,
	}, nil
}

func (r *ReadLine) Start(ctx context.Context) error {
	out := r.rl.Stdout()
	fmt.Fprintf(out, "Chat %s. Type /help for commands, 'exit' to quit.\n", r.sess.ID())

	// Ctrl+C outside readline reaches the process as SIGINT while a turn streams.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	r.interrupts = sig

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(line) == 0 {
					return nil
				}
				continue
			} else if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if r.handleLine(ctx, line, out) {
			return nil
		}
	}
}

// handleLine runs a command or a turn. It reports whether the user asked to quit.
func (r *ReadLine) handleLine(ctx context.Context, line string, out io.Writer) bool {
	line = strings.TrimSpace(line)
	switch line {
	case "":
		return false
	case "exit", "quit":
		return true
	}

	if reply, ok := r.router.Execute(ctx, r.sess.ID(), line); ok {
		fmt.Fprintln(out, reply)
		return false
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-r.interrupts:
			r.sess.Abort()
		case <-done:
		}
	}()

	res, err := r.asker.Ask(ctx, r.sess, line, core.TokenSinkFunc(func(text string) {
		fmt.Fprint(out, text)
	}))
	fmt.Fprintln(out)
	if err != nil {
		log.FromCtx(ctx).Debug().Err(err).Str("chat", r.sess.ID()).Msg("turn failed")
		fmt.Fprintln(out, ui.ErrorStyle.Render(describe(err)))
		return false
	}

	for i, src := range res.Sources {
		fmt.Fprintln(out, ui.SourceStyle.Render(fmt.Sprintf("[%d] %s (%.3f)", i+1, sourceLabel(src), src.Score)))
	}
	return false
}

func (r *ReadLine) Shutdown(ctx context.Context) error {
	if r.rl != nil {
		return r.rl.Close()
	}
	return nil
}

func sourceLabel(c core.ScoredChunk) string {
	if c.Metadata.Source == "" {
		return "unknown"
	}
	return c.Metadata.Source
}

func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrAborted):
		return "Stopped."
	case errors.Is(err, core.ErrTurnInProgress):
		return "Still answering the previous question."
	case errors.Is(err, core.ErrEmptyQuestion):
		return "Type a question first."
	default:
		return "Error: " + err.Error()
	}
}
