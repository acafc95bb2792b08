package users

import "time"

// User is an account that owns documents and analyses.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
