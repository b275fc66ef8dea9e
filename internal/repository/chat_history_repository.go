// Package repository contains the data access layer for the relational store.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mianwuxin/chatbot-backend/internal/models"
)

// ChatHistoryRepository handles data access for the chat_history table.
type ChatHistoryRepository struct {
	db *pgxpool.Pool
}

// NewChatHistoryRepository creates a new chat history repository.
func NewChatHistoryRepository(db *pgxpool.Pool) *ChatHistoryRepository {
	return &ChatHistoryRepository{db: db}
}

// RecentBySession returns up to limit turns for a session, most recent first.
// Callers reverse the slice when they need chronological order.
func (r *ChatHistoryRepository) RecentBySession(ctx context.Context, sessionID string, limit int) ([]models.ChatTurn, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, session_id, query, response, language, created_at
		FROM chat_history
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("select chat history: %w", err)
	}
	defer rows.Close()

	var turns []models.ChatTurn

	for rows.Next() {
		var turn models.ChatTurn
		if err := rows.Scan(&turn.ID, &turn.SessionID, &turn.Query, &turn.Response, &turn.Language, &turn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat turn: %w", err)
		}

		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chat history: %w", err)
	}

	return turns, nil
}

// Insert stores one chat turn. Rows are append-only; there is no update path.
func (r *ChatHistoryRepository) Insert(ctx context.Context, turn models.ChatTurn) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO chat_history (id, session_id, query, response, language, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		turn.ID, turn.SessionID, turn.Query, turn.Response, turn.Language, turn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat turn: %w", err)
	}

	return nil
}

// DeleteBySession removes every turn of a session.
func (r *ChatHistoryRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM chat_history WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("delete chat history: %w", err)
	}

	return nil
}

// Ping verifies the store is reachable.
func (r *ChatHistoryRepository) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return fmt.Errorf("ping history store: %w", err)
	}

	return nil
}
