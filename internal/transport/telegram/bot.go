package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/session"
	"github.com/sandevgo/docchat/pkg/log"
)

const baseContextKey = "base_context"

type Asker interface {
	Ask(ctx context.Context, s *session.Session, question string, sink core.TokenSink) (chat.TurnResult, error)
}

type Ingester interface {
	IngestReader(ctx context.Context, name string, r io.Reader, namespace string) (core.IngestResult, error)
}

type Bot struct {
	bot      *tele.Bot
	sender   *sender
	sessions *session.Registry
	asker    Asker
	ingester Ingester
	router   core.CmdRouter
	ownerID  int64
	maxBytes int64
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	sessions *session.Registry,
	asker Asker,
	ingester Ingester,
	router core.CmdRouter,
	maxUploadBytes int64,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.FromCtx(ctx).Error().Err(err).Msg("telegram handler failed")
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:      b,
		sender:   newSender(b),
		sessions: sessions,
		asker:    asker,
		ingester: ingester,
		router:   router,
		ownerID:  cfg.OwnerID,
		maxBytes: maxUploadBytes,
	}

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	// Only the owner is served.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if c.Sender() == nil || c.Sender().ID != bot.ownerID {
				return nil
			}
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle(tele.OnText, bot.handleMessage)
	b.Handle(tele.OnDocument, bot.handleDocument)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

// Namespace is the chat id used for a Telegram chat.
func Namespace(chatID int64) string {
	return fmt.Sprintf("telegram-%d", chatID)
}

func (b *Bot) context(c tele.Context) (context.Context, string) {
	ctx := c.Get(baseContextKey).(context.Context)
	chatID := Namespace(c.Chat().ID)
	logger := log.FromCtx(ctx).With().Str("component", "telegram").Str("chat_id", chatID).Logger()
	return logger.WithContext(ctx), chatID
}

func (b *Bot) handleStart(c tele.Context) error {
	ctx, _ := b.context(c)
	return b.sender.sendMarkdown(ctx, c.Chat(),
		"👋 Send me a document (.pdf, .txt, .md, .html) and then ask questions about it.\n\nType /help for commands.")
}

func (b *Bot) handleDocument(c tele.Context) error {
	ctx, chatID := b.context(c)
	logger := log.FromCtx(ctx)
	doc := c.Message().Document

	if b.maxBytes > 0 && doc.FileSize > b.maxBytes {
		return c.Send(fmt.Sprintf("❌ %s is too large (limit %d MB).", doc.FileName, b.maxBytes>>20))
	}

	_ = c.Notify(tele.UploadingDocument)
	rc, err := b.bot.File(&doc.File)
	if err != nil {
		logger.Error().Err(err).Msg("failed to download document")
		return c.Send("❌ Could not download the file from Telegram.")
	}
	defer rc.Close()

	res, err := b.ingester.IngestReader(ctx, doc.FileName, rc, chatID)
	if err != nil {
		logger.Error().Err(err).Str("file", doc.FileName).Msg("ingestion failed")
		return c.Send("❌ " + ingestFailure(err))
	}

	return b.sender.sendMarkdown(ctx, c.Chat(),
		fmt.Sprintf("✅ **%s** indexed (%d chunks). Ask away!", doc.FileName, res.ChunkCount))
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx, chatID := b.context(c)
	logger := log.FromCtx(ctx)
	text := c.Text()

	if reply, ok := b.router.Execute(ctx, chatID, text); ok {
		return b.sender.sendMarkdown(ctx, c.Chat(), reply)
	}

	sess, err := b.sessions.Get(ctx, chatID)
	if err != nil {
		return c.Send("❌ " + err.Error())
	}

	_ = c.Notify(tele.Typing)
	placeholder, err := b.bot.Send(c.Chat(), "…")
	if err != nil {
		return err
	}

	live := newLiveReply(func(preview string) error {
		_, err := b.bot.Edit(placeholder, preview)
		return err
	})

	res, err := b.asker.Ask(ctx, sess, text, live)
	if err != nil {
		logger.Warn().Err(err).Msg("turn failed")
		_, editErr := b.bot.Edit(placeholder, "❌ "+turnFailure(err))
		return editErr
	}

	return b.sender.finish(ctx, placeholder, res.Answer, res.Sources)
}

func ingestFailure(err error) string {
	switch {
	case errors.Is(err, core.ErrEmptyDocument):
		return "The document is empty."
	case errors.Is(err, core.ErrLoadError):
		return "Unsupported file. Send plain text, Markdown or HTML."
	default:
		return "Indexing failed, please try again."
	}
}

func turnFailure(err error) string {
	switch {
	case errors.Is(err, core.ErrTurnInProgress):
		return "Still answering your previous question."
	case errors.Is(err, core.ErrEmptyQuestion):
		return "Please ask a question."
	case errors.Is(err, core.ErrGenerationInterrupted):
		return "The answer was interrupted. Please ask again."
	default:
		return "Something went wrong. Please try again."
	}
}
