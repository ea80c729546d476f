package model

import "time"

// SessionState is one key of the Postgres-backed state store.
type SessionState struct {
	Key       string    `gorm:"type:varchar(255);primaryKey" json:"key"`
	Value     []byte    `gorm:"type:bytea;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SessionState) TableName() string { return "session_states" }
