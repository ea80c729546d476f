package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biliticket/sessionstore/internal/model"
)

// PGStateStore keeps state in Postgres. Postgres has no native key expiry,
// so reads skip expired rows and PurgeExpired removes them.
type PGStateStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPGStateStore(db *gorm.DB) *PGStateStore {
	return &PGStateStore{db: db, now: time.Now}
}

func (s *PGStateStore) Get(ctx context.Context, key string) ([]byte, error) {
	var row model.SessionState
	err := s.db.WithContext(ctx).
		Where("key = ? AND expires_at > ?", key, s.now()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.Value, nil
}

func (s *PGStateStore) SetEx(ctx context.Context, key string, ttl time.Duration, value []byte) (bool, error) {
	if value == nil {
		value = []byte{}
	}
	now := s.now()
	row := model.SessionState{
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return false, err
	}
	return true, nil
}

// Del counts only rows that had not yet expired, matching Redis semantics.
func (s *PGStateStore) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}

	var live int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.SessionState{}).
			Where("key IN ? AND expires_at > ?", keys, s.now()).
			Count(&live).Error; err != nil {
			return err
		}
		return tx.Where("key IN ?", keys).Delete(&model.SessionState{}).Error
	})
	if err != nil {
		return 0, err
	}
	return live, nil
}

// PurgeExpired deletes every expired row and returns how many were removed.
func (s *PGStateStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&model.SessionState{})
	return res.RowsAffected, res.Error
}

func (s *PGStateStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
