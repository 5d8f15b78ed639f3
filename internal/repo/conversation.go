package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/storage"
)

// ConversationRepo defines the persistence operations for the one-per-trip
// assistant conversation. The row is created lazily on first save.
type ConversationRepo interface {
	// Get retrieves a trip's conversation.
	// Returns domain.ErrNotFound when none has been saved.
	Get(ctx context.Context, tripID string) (domain.Conversation, error)

	// Save replaces the full message list (not an append), creating the row
	// if absent.
	Save(ctx context.Context, tripID string, messages []domain.Message) (domain.Conversation, error)

	// Clear hard-deletes a trip's conversation. Reports whether a row was
	// actually removed.
	Clear(ctx context.Context, tripID string) (bool, error)

	// Restore inserts an exported conversation verbatim, preserving its id
	// and timestamps. Used by import.
	Restore(ctx context.Context, c domain.Conversation) error
}

type conversationRepo struct {
	db storage.Adapter
}

// NewConversationRepo constructs a ConversationRepo backed by the provided adapter.
func NewConversationRepo(db storage.Adapter) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Get(ctx context.Context, tripID string) (domain.Conversation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, trip_id, messages, created_at, updated_at FROM conversations WHERE trip_id = ?`,
		tripID)
	c, err := scanConversation(row)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("repo.ConversationRepo.Get: %w", err)
	}
	return c, nil
}

func (r *conversationRepo) Save(ctx context.Context, tripID string, messages []domain.Message) (domain.Conversation, error) {
	if messages == nil {
		messages = []domain.Message{}
	}
	encoded, err := json.Marshal(messages)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("repo.ConversationRepo.Save: encode: %w", err)
	}

	now := time.Now().UTC()
	c := domain.Conversation{
		TripID:    tripID,
		Messages:  messages,
		UpdatedAt: now,
	}

	err = r.db.InTx(ctx, func(q storage.Querier) error {
		// Update-else-insert instead of a dialect-specific upsert, so the
		// statement set stays identical on both backends.
		var id, createdAt string
		row := q.QueryRow(ctx, `SELECT id, created_at FROM conversations WHERE trip_id = ?`, tripID)
		switch err := row.Scan(&id, &createdAt); {
		case errors.Is(err, sql.ErrNoRows):
			c.ID = uuid.NewString()
			c.CreatedAt = now
			_, err = q.Exec(ctx,
				`INSERT INTO conversations (id, trip_id, messages, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
				c.ID, tripID, string(encoded), formatTime(now), formatTime(now))
			return err
		case err != nil:
			return err
		default:
			c.ID = id
			if c.CreatedAt, err = parseTime(createdAt); err != nil {
				return err
			}
			_, err = q.Exec(ctx,
				`UPDATE conversations SET messages = ?, updated_at = ? WHERE trip_id = ?`,
				string(encoded), formatTime(now), tripID)
			return err
		}
	})
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("repo.ConversationRepo.Save: %w", err)
	}
	return c, nil
}

func (r *conversationRepo) Clear(ctx context.Context, tripID string) (bool, error) {
	n, err := r.db.Exec(ctx, `DELETE FROM conversations WHERE trip_id = ?`, tripID)
	if err != nil {
		return false, fmt.Errorf("repo.ConversationRepo.Clear: %w", err)
	}
	return n > 0, nil
}

func (r *conversationRepo) Restore(ctx context.Context, c domain.Conversation) error {
	messages := c.Messages
	if messages == nil {
		messages = []domain.Message{}
	}
	encoded, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("repo.ConversationRepo.Restore: encode: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO conversations (id, trip_id, messages, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TripID, string(encoded), formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("repo.ConversationRepo.Restore: %w", err)
	}
	return nil
}

func scanConversation(s scanner) (domain.Conversation, error) {
	var (
		c                    domain.Conversation
		messagesJSON         string
		createdAt, updatedAt string
	)
	if err := s.Scan(&c.ID, &c.TripID, &messagesJSON, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Conversation{}, domain.ErrNotFound
		}
		return domain.Conversation{}, err
	}

	c.Messages = []domain.Message{}
	if messagesJSON != "" {
		if err := json.Unmarshal([]byte(messagesJSON), &c.Messages); err != nil {
			return domain.Conversation{}, fmt.Errorf("decode messages: %w", err)
		}
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Conversation{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Conversation{}, err
	}
	return c, nil
}
