package models

import "time"

// Console session audit events
const (
	LoginEventLogin  = "login"
	LoginEventLogout = "logout"
	LoginEventExpiry = "expired"
	LoginEventFailed = "failed"
)

type LoginLog struct {
	ID        int       `json:"id" db:"id"`
	UserID    *int      `json:"user_id,omitempty" db:"user_id"`
	Email     string    `json:"email" db:"email"`
	Event     string    `json:"event" db:"event"`
	SessionID string    `json:"session_id,omitempty" db:"session_id"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
