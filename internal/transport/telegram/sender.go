package telegram

import (
	"context"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/conv"
	"github.com/sandevgo/docchat/pkg/log"
)

const (
	editInterval  = time.Second
	sourceExcerpt = 280
	typingCursor  = " ▍"
)

type sender struct {
	bot *tele.Bot
}

func newSender(bot *tele.Bot) *sender {
	return &sender{bot: bot}
}

// sendMarkdown converts Markdown to Telegram HTML and sends it in parts if needed.
func (s *sender) sendMarkdown(ctx context.Context, to tele.Recipient, md string) error {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(md)))
	return s.sendParts(ctx, to, conv.SplitHTML(html, conv.TelegramMaxMessageLen))
}

func (s *sender) sendParts(ctx context.Context, to tele.Recipient, parts []string) error {
	for i, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		if _, err := s.bot.Send(to, part, tele.ModeHTML); err != nil {
			log.FromCtx(ctx).Error().Err(err).Int("part", i).Int("len", len(part)).Msg("failed to send telegram message")
			return err
		}
	}
	return nil
}

// finish replaces the live reply with the rendered answer. Parts that do not
// fit in the edited message are sent as new messages.
func (s *sender) finish(ctx context.Context, msg *tele.Message, answer string, sources []core.ScoredChunk) error {
	parts := renderAnswer(answer, sources)
	if _, err := s.bot.Edit(msg, parts[0], tele.ModeHTML); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to edit reply, sending a new message")
		return s.sendParts(ctx, msg.Chat, parts)
	}
	return s.sendParts(ctx, msg.Chat, parts[1:])
}

func renderAnswer(answer string, sources []core.ScoredChunk) []string {
	html := strings.TrimSpace(conv.MarkdownToTelegramHTML([]byte(answer)))
	if html == "" {
		html = "…"
	}
	if len(sources) > 0 {
		list := make([]conv.Source, 0, len(sources))
		for _, src := range sources {
			label := src.Metadata.Source
			if label == "" {
				label = "document"
			}
			list = append(list, conv.Source{Label: label, Excerpt: src.Content})
		}
		html += "\n\n" + conv.SourcesToTelegramHTML(list, sourceExcerpt)
	}
	return conv.SplitHTML(html, conv.TelegramMaxMessageLen)
}

// liveReply edits the placeholder message as tokens arrive, at most once per
// interval. Previews are plain text since partial Markdown is not valid HTML.
type liveReply struct {
	edit     func(text string) error
	interval time.Duration
	now      func() time.Time

	buf      strings.Builder
	last     time.Time
	lastSent string
}

func newLiveReply(edit func(text string) error) *liveReply {
	return &liveReply{edit: edit, interval: editInterval, now: time.Now}
}

func (r *liveReply) OnToken(text string) {
	r.buf.WriteString(text)
	if r.now().Sub(r.last) < r.interval {
		return
	}
	r.flush()
}

func (r *liveReply) flush() {
	preview := strings.TrimSpace(r.buf.String())
	if preview == "" || preview == r.lastSent {
		return
	}
	if runes := []rune(preview); len(runes) > conv.TelegramMaxMessageLen-len(typingCursor) {
		preview = string(runes[:conv.TelegramMaxMessageLen-len(typingCursor)-1]) + "…"
	}
	r.last = r.now()
	if err := r.edit(preview + typingCursor); err == nil {
		r.lastSent = preview
	}
}
