package models

import (
	"time"
)

// User represents an account. PasswordHash is a bcrypt hash and never serialized.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash []byte `json:"-"`
	IsAdmin      bool   `json:"isAdmin"`
}

// UserCreate is the data needed to add a user to a store
type UserCreate struct {
	Username     string
	PasswordHash []byte
	IsAdmin      bool
}

// Like is a row of the user-video like relation
type Like struct {
	UserID  int64     `json:"userId"`
	VideoID int64     `json:"videoId"`
	LikedAt time.Time `json:"likedAt"`
}
