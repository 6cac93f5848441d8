package chat

import (
	"context"
	"errors"
	"time"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/session"
	"github.com/sandevgo/docchat/pkg/log"
	"github.com/sandevgo/docchat/pkg/retry"
)

// TurnResult is the outcome of a settled turn.
type TurnResult struct {
	Answer     string             `json:"answer"`
	Standalone string             `json:"standalone"`
	Sources    []core.ScoredChunk `json:"sources"`
}

// Pipeline runs one turn against a session: condense, retrieve, generate.
// Results are fed back to the session as events.
type Pipeline struct {
	condenser *Condenser
	retriever *Retriever
	generator *Generator
	archive   core.TurnArchive
	retrier   *retry.Retrier
}

// NewPipeline archives settled turns when archive is non-nil.
func NewPipeline(condenser *Condenser, retriever *Retriever, generator *Generator, archive core.TurnArchive) *Pipeline {
	return &Pipeline{
		condenser: condenser,
		retriever: retriever,
		generator: generator,
		archive:   archive,
		retrier: retry.NewRetrier(&retry.Config{
			MaxRetries:    1,
			BackoffFactor: 1,
			InitialDelay:  250 * time.Millisecond,
			MaxDelay:      250 * time.Millisecond,
			Jitter:        50 * time.Millisecond,
		}),
	}
}

// Ask runs a turn for question in s, forwarding fragments to sink as they
// arrive. The namespace searched is the session id. On any failure the
// session is returned to idle before Ask returns.
func (p *Pipeline) Ask(ctx context.Context, s *session.Session, question string, sink core.TokenSink) (TurnResult, error) {
	question = SanitizeQuestion(question)
	if question == "" {
		return TurnResult{}, core.ErrEmptyQuestion
	}

	if err := s.Dispatch(session.Submit{Question: question}); err != nil {
		return TurnResult{}, err
	}
	history := s.Snapshot().History

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	unbind := s.BindTurn(cancel)
	defer unbind()

	logger := log.FromCtx(ctx).With().Str("chat_id", s.ID()).Logger()
	ctx = logger.WithContext(ctx)
	start := time.Now()

	fail := func(err error) (TurnResult, error) {
		if cause := context.Cause(ctx); cause != nil && !errors.Is(err, cause) {
			err = errors.Join(err, cause)
		}
		if derr := s.Dispatch(session.Fail{Err: err}); derr != nil {
			logger.Error().Err(derr).Msg("failed to record turn failure")
		}
		if derr := s.Dispatch(session.Acknowledge{}); derr != nil {
			logger.Error().Err(derr).Msg("failed to reset session")
		}
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("turn failed")
		return TurnResult{}, err
	}

	standalone := p.condense(ctx, question, history)
	if err := context.Cause(ctx); err != nil {
		return fail(err)
	}
	if err := s.Dispatch(session.Condensed{Standalone: standalone}); err != nil {
		return fail(err)
	}

	chunks, err := p.retriever.Retrieve(ctx, standalone, s.ID())
	if err != nil {
		return fail(err)
	}
	if err := s.Dispatch(session.Retrieved{Chunks: chunks}); err != nil {
		return fail(err)
	}
	logger.Debug().Str("standalone", standalone).Int("chunks", len(chunks)).Msg("context retrieved")

	forward := core.TokenSinkFunc(func(text string) {
		if err := s.Dispatch(session.Token{Text: text}); err != nil {
			logger.Debug().Err(err).Msg("token dropped")
			return
		}
		if sink != nil {
			sink.OnToken(text)
		}
	})

	gen, err := p.generator.Generate(ctx, standalone, chunks, forward)
	if err != nil {
		return fail(err)
	}
	if err := s.Dispatch(session.StreamComplete{}); err != nil {
		return fail(err)
	}

	result := TurnResult{Answer: gen.Answer, Standalone: standalone, Sources: gen.Sources}
	p.save(context.WithoutCancel(ctx), s.ID(), question, result)

	logger.Info().
		Int("chunks", len(chunks)).
		Int("answer_len", len(gen.Answer)).
		Dur("elapsed", time.Since(start)).
		Msg("turn completed")
	return result, nil
}

// Search returns the k chunks of namespace closest to query.
func (p *Pipeline) Search(ctx context.Context, namespace, query string, k int) ([]core.ScoredChunk, error) {
	query = SanitizeQuestion(query)
	if query == "" {
		return nil, core.ErrEmptyQuestion
	}
	return p.retriever.RetrieveK(ctx, query, namespace, k)
}

// condense retries once and falls back to the raw question.
func (p *Pipeline) condense(ctx context.Context, question string, history core.ChatHistory) string {
	retrier := p.retrier.WithRetryable(func(error) bool { return ctx.Err() == nil })
	standalone, err := retry.Value(ctx, retrier, func() (string, error) {
		return p.condenser.Condense(ctx, question, history)
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("condensation failed, using the question as asked")
		return question
	}
	return standalone
}

func (p *Pipeline) save(ctx context.Context, chatID, question string, res TurnResult) {
	if p.archive == nil {
		return
	}
	turn := core.ArchivedTurn{
		Question:   question,
		Standalone: res.Standalone,
		Answer:     res.Answer,
		Sources:    res.Sources,
		CreatedAt:  time.Now().UTC(),
	}
	if err := p.archive.SaveTurn(ctx, chatID, turn); err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("failed to archive turn")
	}
}
