package model

import "time"

type Session struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// LoginCode is a short-lived one-time code emailed during sign-in or
// registration. Attempts counts failed verifications against maxCodeAttempts.
type LoginCode struct {
	ID        int64      `json:"id"`
	Code      string     `json:"code"`
	Email     string     `json:"email"`
	Purpose   string     `json:"purpose"`
	ExpiresAt time.Time  `json:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt"`
	Attempts  int        `json:"attempts"`
	CreatedAt time.Time  `json:"createdAt"`
}
