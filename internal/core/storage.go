package core

import (
	"context"
	"time"
)

// TurnArchive keeps settled exchanges so a chat can be resumed after its live session is gone.
type TurnArchive interface {
	SaveTurn(ctx context.Context, chatID string, turn ArchivedTurn) error
	LoadHistory(ctx context.Context, chatID string, limit int) (ChatHistory, error)
	DeleteChat(ctx context.Context, chatID string) error
}

type ArchivedTurn struct {
	Question   string        `json:"question"`
	Standalone string        `json:"standalone"`
	Answer     string        `json:"answer"`
	Sources    []ScoredChunk `json:"sources,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
}
