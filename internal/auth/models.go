package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"reelhouse/internal/models"
)

// HeaderUsername carries the caller's username on API requests
const HeaderUsername = "X-Username"

// Identity is the caller of a request as resolved from HeaderUsername.
// Username is empty when the header is absent; User is nil when no such user exists.
type Identity struct {
	Username string
	User     *models.User
}

// Anonymous identity for requests without a username header
var AnonymousIdentity = &Identity{}

// IsAnonymous reports whether no username was supplied
func (i *Identity) IsAnonymous() bool {
	return i == nil || i.Username == ""
}

// Known reports whether the username matched a stored user
func (i *Identity) Known() bool {
	return i != nil && i.User != nil
}

// IsAdmin reports whether the caller is a stored administrator
func (i *Identity) IsAdmin() bool {
	return i.Known() && i.User.IsAdmin
}

// Password hashes plaintext passwords with bcrypt at a fixed cost
type Password struct {
	cost int
}

// NewPassword returns a hasher; a cost outside bcrypt's range uses bcrypt.DefaultCost
func NewPassword(cost int) Password {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Password{cost: cost}
}

// Hash returns the bcrypt hash of plaintext
func (p Password) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
}

// Matches checks if a plaintext password matches the hash
func (p Password) Matches(hash []byte, plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hash, []byte(plaintext))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}
	return true, nil
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Username string `json:"username" validate:"required,notblank,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
