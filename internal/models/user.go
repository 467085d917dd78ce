package models

import "time"

// User is a shop-floor account. Persisted in the users slot, so the hash
// travels with the record; API responses use UserProfile instead.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Role         string    `json:"role"` // admin, operator or qm
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) RecordID() string {
	return u.ID
}

func (u User) Profile() *UserProfile {
	return &UserProfile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}
