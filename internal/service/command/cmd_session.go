package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandevgo/docchat/internal/service/session"
	"github.com/sandevgo/docchat/pkg/log"
)

// NamespaceDeleter drops every vector indexed for a chat.
type NamespaceDeleter interface {
	DeleteNamespace(ctx context.Context, namespace string) error
}

type ResetCommand struct {
	sessions  *session.Registry
	store     NamespaceDeleter
	formatter *ResponseFormatter
}

func NewResetCommand(sessions *session.Registry, store NamespaceDeleter) *ResetCommand {
	return &ResetCommand{sessions: sessions, store: store, formatter: NewResponseFormatter()}
}

func (c *ResetCommand) Name() string { return "reset" }

func (c *ResetCommand) Description() string {
	return "End the conversation (add 'purge' to forget the document)"
}

func (c *ResetCommand) Execute(ctx context.Context, chatID string, args []string) (string, error) {
	purge := len(args) > 0 && args[0] == "purge"
	if purge && c.store == nil {
		return "", fmt.Errorf("purge is not supported by this vector store")
	}

	if _, err := c.sessions.Reset(ctx, chatID); err != nil {
		return "", err
	}
	log.FromCtx(ctx).Info().Str("chat_id", chatID).Bool("purge", purge).Msg("session reset")

	if purge {
		if err := c.store.DeleteNamespace(ctx, chatID); err != nil {
			return "", fmt.Errorf("failed to purge document: %w", err)
		}
		return c.formatter.Success("Conversation and document removed"), nil
	}
	return c.formatter.Success("Conversation reset"), nil
}

type SourcesCommand struct {
	sessions  *session.Registry
	formatter *ResponseFormatter
}

func NewSourcesCommand(sessions *session.Registry) *SourcesCommand {
	return &SourcesCommand{sessions: sessions, formatter: NewResponseFormatter()}
}

func (c *SourcesCommand) Name() string        { return "sources" }
func (c *SourcesCommand) Description() string { return "Show the passages behind the last answer" }

const sourceExcerptLen = 300

func (c *SourcesCommand) Execute(ctx context.Context, chatID string, args []string) (string, error) {
	s, ok := c.sessions.Peek(chatID)
	if !ok {
		return c.formatter.Info("No answer yet"), nil
	}
	answer, ok := s.Snapshot().LastAnswer()
	if !ok || len(answer.Sources) == 0 {
		return c.formatter.Info("The last answer used no sources"), nil
	}

	var sb strings.Builder
	sb.WriteString(c.formatter.Info("Sources"))
	for i, src := range answer.Sources {
		sb.WriteString(c.formatter.Source(i+1, src.Metadata.Source, src.Score, excerpt(src.Content, sourceExcerptLen)))
	}
	return sb.String(), nil
}

type HistoryCommand struct {
	sessions  *session.Registry
	formatter *ResponseFormatter
}

func NewHistoryCommand(sessions *session.Registry) *HistoryCommand {
	return &HistoryCommand{sessions: sessions, formatter: NewResponseFormatter()}
}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Description() string { return "Show the exchanges used to rephrase questions" }

func (c *HistoryCommand) Execute(ctx context.Context, chatID string, args []string) (string, error) {
	s, err := c.sessions.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	st := s.Snapshot()
	if len(st.History) == 0 {
		return c.formatter.Info("History is empty"), nil
	}

	items := make([]string, 0, len(st.History))
	for _, ex := range st.History {
		items = append(items, fmt.Sprintf("**Q**: %s\n  **A**: %s", ex.Question, excerpt(ex.Answer, 160)))
	}
	return c.formatter.Combine(
		c.formatter.Info(fmt.Sprintf("History (%d)", len(st.History))),
		c.formatter.List(items),
	), nil
}

func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit]) + "…"
}
