// Package sessionstore implements a session storage on top of the gorm
// sessions table. It follows the gofiber storage contract: a missing or
// expired key reads as nil without error.
package sessionstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Luizsilva-repros/intranet/internal/db/models"
)

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database connection is nil")

// Storage stores sessions in the sessions table.
type Storage struct {
	db  *gorm.DB
	now func() time.Time
}

// New creates a Storage. The sessions table must already be migrated.
func New(db *gorm.DB) (*Storage, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Storage{db: db, now: time.Now}, nil
}

// GetWithContext returns the value stored for key.
func (s *Storage) GetWithContext(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}

	var row models.Session

	err := s.db.WithContext(ctx).Where("id = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	if row.ExpiresAt != nil && !row.ExpiresAt.After(s.now()) {
		return nil, nil
	}

	return row.Value, nil
}

// Get returns the value stored for key.
func (s *Storage) Get(key string) ([]byte, error) {
	return s.GetWithContext(context.Background(), key)
}

// SetWithContext stores val under key. A zero exp never expires.
func (s *Storage) SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}

	row := models.Session{ID: key, Value: val}
	if exp > 0 {
		t := s.now().Add(exp)
		row.ExpiresAt = &t
	}

	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at"}),
	}).Create(&row).Error
}

// Set stores val under key.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	return s.SetWithContext(context.Background(), key, val, exp)
}

// DeleteWithContext removes key.
func (s *Storage) DeleteWithContext(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	return s.db.WithContext(ctx).Where("id = ?", key).Delete(&models.Session{}).Error
}

// Delete removes key.
func (s *Storage) Delete(key string) error {
	return s.DeleteWithContext(context.Background(), key)
}

// ResetWithContext removes every session.
func (s *Storage) ResetWithContext(ctx context.Context) error {
	return s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Session{}).Error
}

// Reset removes every session.
func (s *Storage) Reset() error {
	return s.ResetWithContext(context.Background())
}

// GC removes expired sessions and returns how many were removed.
func (s *Storage) GC(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).Delete(&models.Session{})

	return res.RowsAffected, res.Error
}

// Close is a no-op; the gorm connection is owned by the caller.
func (s *Storage) Close() error {
	return nil
}
