// Package models contains the domain models for the application.
package models

import (
	"time"
)

// User is a registered team member.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
