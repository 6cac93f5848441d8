package session

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/log"
)

// Registry holds the live session of every active chat.
type Registry struct {
	archive      core.TurnArchive
	historyLimit int

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry seeds new sessions from archive when it is non-nil.
func NewRegistry(archive core.TurnArchive, historyLimit int) *Registry {
	return &Registry{
		archive:      archive,
		historyLimit: historyLimit,
		sessions:     make(map[string]*Session),
	}
}

// Get returns the live session of chatID, creating it on first use.
func (r *Registry) Get(ctx context.Context, chatID string) (*Session, error) {
	if chatID == "" {
		return nil, core.ErrNamespaceRequired
	}
	if s, ok := r.Peek(chatID); ok {
		return s, nil
	}

	var history core.ChatHistory
	if r.archive != nil {
		h, err := r.archive.LoadHistory(ctx, chatID, r.historyLimit)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("chat_id", chatID).Msg("failed to load archived history, starting fresh")
		} else {
			history = h
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[chatID]; ok {
		return s, nil
	}
	s := New(chatID, history)
	r.sessions[chatID] = s
	return s, nil
}

func (r *Registry) Peek(chatID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[chatID]
	return s, ok
}

// End aborts any running turn and forgets the session. Archived turns are kept.
func (r *Registry) End(chatID string) bool {
	r.mu.Lock()
	s, ok := r.sessions[chatID]
	delete(r.sessions, chatID)
	r.mu.Unlock()

	if ok {
		s.Abort()
	}
	return ok
}

// Reset ends the session and drops its archived turns, so the next Get
// starts with an empty history.
func (r *Registry) Reset(ctx context.Context, chatID string) (bool, error) {
	ended := r.End(chatID)
	if r.archive == nil {
		return ended, nil
	}
	if err := r.archive.DeleteChat(ctx, chatID); err != nil {
		return ended, fmt.Errorf("failed to clear chat history: %w", err)
	}
	log.FromCtx(ctx).Debug().Str("chat_id", chatID).Msg("archived turns cleared")
	return ended, nil
}

func (r *Registry) List() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
