package domain

import "time"

// User represents an operator of the application in the domain.
type User struct {
	UserID       string `json:"userID"` // Primary Key (e.g., UUID)
	Name         string `json:"name"`
	Username     string `json:"username"` // Login name, unique
	PasswordHash string `json:"-"`
	AuditFields
	RefreshTokenHash       string     `json:"-"` // SHA256 hash of the active refresh token
	RefreshTokenExpiryTime *time.Time `json:"-"`
	DeletedAt              *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}
