package models

import "time"

// RefreshSession tracks one issued refresh token. The exact token string is
// retained so that a stale copy presented after rotation can be recognized
// as reuse. Only the auth service flips Revoked, and only once per session.
type RefreshSession struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	SessionID string `gorm:"uniqueIndex;size:64;not null" json:"session_id"` // jti claim
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	Token     string `gorm:"size:1024;not null" json:"-"`

	Revoked   bool       `gorm:"index;not null;default:false" json:"revoked"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
	// ReplacedBySessionID is set only when the session was rotated away.
	// A revoked session with a replacement whose token is presented again is
	// the reuse-attack signal; a revoked session without one was an explicit
	// logout or revoke.
	ReplacedBySessionID *string `gorm:"size:64" json:"replaced_by_session_id,omitempty"`

	IssuedAt  time.Time `gorm:"not null" json:"issued_at"`
	ExpiresAt time.Time `gorm:"index;not null" json:"expires_at"`

	DeviceInfo string `gorm:"size:255" json:"device_info,omitempty"`
	IPAddress  string `gorm:"size:64" json:"ip_address,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RefreshSession) TableName() string { return "refresh_sessions" }

// IsExpired reports whether the stored validity window has passed. Expiry is
// derived at read time, never stored.
func (s *RefreshSession) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsActive reports whether the session can still be rotated.
func (s *RefreshSession) IsActive() bool {
	return !s.Revoked && !s.IsExpired()
}
