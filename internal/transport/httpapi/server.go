package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sandevgo/docchat/internal/config"
	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/session"
	"github.com/sandevgo/docchat/pkg/log"
)

type Asker interface {
	Ask(ctx context.Context, s *session.Session, question string, sink core.TokenSink) (chat.TurnResult, error)
}

type Ingester interface {
	IngestReader(ctx context.Context, name string, r io.Reader, namespace string) (core.IngestResult, error)
}

type NamespaceDeleter interface {
	DeleteNamespace(ctx context.Context, namespace string) error
}

// Server exposes ingestion and streamed chat turns over HTTP.
type Server struct {
	cfg      *config.HTTPConfig
	sessions *session.Registry
	asker    Asker
	ingester Ingester
	purger   NamespaceDeleter

	srv *http.Server
}

// NewServer wires the API. purger may be nil, which rejects purge requests.
func NewServer(
	cfg *config.HTTPConfig,
	sessions *session.Registry,
	asker Asker,
	ingester Ingester,
	purger NamespaceDeleter,
) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		asker:    asker,
		ingester: ingester,
		purger:   purger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/chats/{chatId}/documents", s.handleUpload)
	mux.HandleFunc("POST /api/chats/{chatId}/messages", s.handleMessage)
	mux.HandleFunc("GET /api/chats/{chatId}", s.handleGetChat)
	mux.HandleFunc("DELETE /api/chats/{chatId}", s.handleDeleteChat)
	mux.HandleFunc("GET /api/chats", s.handleListChats)
	return requestLogger(mux)
}

func (s *Server) Start(ctx context.Context) error {
	ctx = log.WithComponent(ctx, "http")
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}

	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.FromCtx(ctx).Info().Str("addr", ln.Addr().String()).Msg("starting http server")
	if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	return s.srv.Shutdown(ctx)
}
