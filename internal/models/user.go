package models

import "time"

// User captures application-facing fields for a registered principal.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserUpdate lists the mutable profile fields; nil means unchanged.
type UserUpdate struct {
	FullName *string
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.FullName == nil
}
