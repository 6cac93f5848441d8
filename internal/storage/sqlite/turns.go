package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/log"
)

// TurnArchive stores settled exchanges per chat.
type TurnArchive struct {
	db *sql.DB
}

func NewTurnArchive(db *sql.DB) *TurnArchive {
	return &TurnArchive{db: db}
}

func (h *TurnArchive) SaveTurn(ctx context.Context, chatID string, turn core.ArchivedTurn) error {
	sources := ""
	if len(turn.Sources) > 0 {
		data, err := json.Marshal(turn.Sources)
		if err != nil {
			return fmt.Errorf("failed to marshal sources: %w", err)
		}
		sources = string(data)
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO turns (chat_id, question, standalone, answer, sources) VALUES (?, ?, ?, ?, ?)`,
		chatID, turn.Question, turn.Standalone, turn.Answer, sources)
	if err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}
	return nil
}

// LoadHistory returns the last limit exchanges of a chat, oldest first.
func (h *TurnArchive) LoadHistory(ctx context.Context, chatID string, limit int) (core.ChatHistory, error) {
	turns, err := h.LoadTurns(ctx, chatID, limit)
	if err != nil {
		return nil, err
	}
	history := make(core.ChatHistory, len(turns))
	for i, t := range turns {
		history[i] = core.Exchange{Question: t.Question, Answer: t.Answer}
	}
	return history, nil
}

// LoadTurns returns the last limit archived turns of a chat, oldest first.
func (h *TurnArchive) LoadTurns(ctx context.Context, chatID string, limit int) ([]core.ArchivedTurn, error) {
	if limit <= 0 {
		return []core.ArchivedTurn{}, nil
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT question, standalone, answer, sources, created_at FROM turns WHERE chat_id = ? ORDER BY id DESC LIMIT ?`,
		chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := []core.ArchivedTurn{}
	for rows.Next() {
		var t core.ArchivedTurn
		var sources string
		if err := rows.Scan(&t.Question, &t.Standalone, &t.Answer, &sources, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		if sources != "" {
			if err := json.Unmarshal([]byte(sources), &t.Sources); err != nil {
				return nil, fmt.Errorf("failed to unmarshal sources: %w", err)
			}
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest first from the query; callers want chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}

	log.FromCtx(ctx).Debug().Str("chat_id", chatID).Int("count", len(turns)).Msg("loaded archived turns")
	return turns, nil
}

// DeleteChat drops every archived turn of a chat.
func (h *TurnArchive) DeleteChat(ctx context.Context, chatID string) error {
	if _, err := h.db.ExecContext(ctx, `DELETE FROM turns WHERE chat_id = ?`, chatID); err != nil {
		return fmt.Errorf("failed to delete turns: %w", err)
	}
	return nil
}
