package models

import (
	"time"
)

// User represents an account on the backend.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the client's authenticated identity. A nil *Session means logged out.
type Session struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}
