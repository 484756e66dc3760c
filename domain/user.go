// Package domain contains core concepts of the direct-message system.
// This file defines User entities and their credential-free projection.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// User is the full account record as persisted.
// PasswordHash never leaves the repository/service boundary.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser is the projection attached to resolved messages and API
// responses. It must never carry credential fields.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
