package models

import "time"

// User represents a row in the PostgreSQL users table.
type User struct {
	ID                  string    `json:"id"`
	Username            string    `json:"username"`
	Password            string    `json:"-"` // never serialize
	DietaryRestrictions []string  `json:"dietary_restrictions"`
	CreatedAt           time.Time `json:"created_at"`
}

// RegisterRequest is the JSON body for POST /api/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginRequest is the JSON body for POST /api/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// LogoutRequest optionally names the refresh credential to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// UserInfoResponse is the JSON body for GET /api/user-info.
type UserInfoResponse struct {
	Username            string   `json:"username"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
}

// UpdateUserInfoRequest is the JSON body for PUT /api/user-info. The pointer
// distinguishes an absent field from an explicit empty list.
type UpdateUserInfoRequest struct {
	DietaryRestrictions *[]string `json:"dietary_restrictions"`
}
