package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/providers/rag"
	"github.com/sandevgo/docchat/pkg/log"
	"github.com/sandevgo/docchat/pkg/retry"
)

type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]core.Vector, error)
}

type Options struct {
	BatchSize      int
	MaxInputTokens int
	Concurrency    int
	// Timeout bounds each batch request, retries included.
	Timeout time.Duration
	Counter rag.TokenCounter
	Retrier *retry.Retrier
}

// Gateway enforces the service's input limits, batches inputs and runs
// batches in parallel up to Concurrency. Output order matches input order.
type Gateway struct {
	client BatchEmbedder
	opts   Options
}

func NewGateway(client BatchEmbedder, opts Options) *Gateway {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 512
	}
	if opts.MaxInputTokens <= 0 {
		opts.MaxInputTokens = 8191
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Counter == nil {
		opts.Counter = rag.NewTiktoken(rag.DefaultEncoding)
	}
	if opts.Retrier == nil {
		opts.Retrier = retry.NewDefaultRetrier()
	}
	opts.Retrier = opts.Retrier.WithRetryable(isTransient)
	return &Gateway{client: client, opts: opts}
}

func (g *Gateway) Embed(ctx context.Context, texts []string) ([]core.Vector, error) {
	if len(texts) == 0 {
		return []core.Vector{}, nil
	}

	for i, text := range texts {
		n, err := g.opts.Counter.CountTokens(text)
		if err != nil {
			return nil, fmt.Errorf("count tokens of input %d: %w", i, err)
		}
		if n > g.opts.MaxInputTokens {
			return nil, fmt.Errorf("%w: input %d has %d tokens, limit %d",
				core.ErrEmbeddingInputTooLarge, i, n, g.opts.MaxInputTokens)
		}
	}

	vectors := make([]core.Vector, len(texts))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Concurrency)

	for start := 0; start < len(texts); start += g.opts.BatchSize {
		end := min(start+g.opts.BatchSize, len(texts))
		eg.Go(func() error {
			batch, err := g.embedBatch(egCtx, texts[start:end])
			if err != nil {
				return fmt.Errorf("batch [%d:%d]: %w", start, end, err)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if err := checkDimensions(vectors); err != nil {
		return nil, err
	}

	log.FromCtx(ctx).Debug().
		Int("inputs", len(texts)).
		Int("dims", len(vectors[0])).
		Msg("embedded inputs")
	return vectors, nil
}

func (g *Gateway) embedBatch(ctx context.Context, texts []string) ([]core.Vector, error) {
	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	out, err := retry.Value(ctx, g.opts.Retrier, func() ([]core.Vector, error) {
		vectors, err := g.client.EmbedBatch(ctx, texts)
		if err != nil && isTransient(err) {
			log.FromCtx(ctx).Warn().Err(err).Int("inputs", len(texts)).Msg("embedding request failed, retrying")
		}
		return vectors, err
	})
	if err != nil {
		if errors.Is(err, core.ErrEmbeddingServiceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", core.ErrEmbeddingServiceUnavailable, err)
	}
	if len(out) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs",
			core.ErrEmbeddingServiceUnavailable, len(out), len(texts))
	}
	return out, nil
}

func checkDimensions(vectors []core.Vector) error {
	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, expected %d",
				core.ErrEmbeddingServiceUnavailable, i, len(v), dims)
		}
	}
	return nil
}

func isTransient(err error) bool {
	return errors.Is(err, core.ErrRateLimited) || errors.Is(err, errServerBusy)
}
