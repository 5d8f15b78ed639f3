package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/waypost/waypost/backend/internal/domain"
	"github.com/waypost/waypost/backend/internal/storage"
)

// SettingRepo defines the persistence operations for the process-wide
// key/value settings store.
type SettingRepo interface {
	// Get retrieves a setting. Returns domain.ErrNotFound when the key has
	// never been set.
	Get(ctx context.Context, key string) (domain.Setting, error)

	// Set upserts a setting value.
	Set(ctx context.Context, key, value string) (domain.Setting, error)

	// Delete removes a setting. Reports whether a row was actually removed.
	Delete(ctx context.Context, key string) (bool, error)
}

type settingRepo struct {
	db storage.Adapter
}

// NewSettingRepo constructs a SettingRepo backed by the provided adapter.
func NewSettingRepo(db storage.Adapter) SettingRepo {
	return &settingRepo{db: db}
}

func (r *settingRepo) Get(ctx context.Context, key string) (domain.Setting, error) {
	var (
		s         domain.Setting
		updatedAt string
	)
	row := r.db.QueryRow(ctx, `SELECT key, value, updated_at FROM settings WHERE key = ?`, key)
	if err := row.Scan(&s.Key, &s.Value, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Setting{}, fmt.Errorf("repo.SettingRepo.Get: %w", domain.ErrNotFound)
		}
		return domain.Setting{}, fmt.Errorf("repo.SettingRepo.Get: %w", err)
	}
	var err error
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Setting{}, fmt.Errorf("repo.SettingRepo.Get: %w", err)
	}
	return s, nil
}

func (r *settingRepo) Set(ctx context.Context, key, value string) (domain.Setting, error) {
	now := time.Now().UTC()
	err := r.db.InTx(ctx, func(q storage.Querier) error {
		n, err := q.Exec(ctx,
			`UPDATE settings SET value = ?, updated_at = ? WHERE key = ?`,
			value, formatTime(now), key)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}
		_, err = q.Exec(ctx,
			`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)`,
			key, value, formatTime(now))
		return err
	})
	if err != nil {
		return domain.Setting{}, fmt.Errorf("repo.SettingRepo.Set: %w", err)
	}
	return domain.Setting{Key: key, Value: value, UpdatedAt: now}, nil
}

func (r *settingRepo) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.db.Exec(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("repo.SettingRepo.Delete: %w", err)
	}
	return n > 0, nil
}
