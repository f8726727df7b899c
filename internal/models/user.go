package models

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	// Password holds the bcrypt hash, never the plaintext.
	Password string `json:"-"`
	IsAdmin  bool   `json:"isAdmin"`
}
