package entity

import (
	"time"
)

// User is an account holder. Email is stored lower-cased and PasswordHash
// holds a bcrypt hash.
type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	PhoneNumber  string
	Role         UserRole
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
