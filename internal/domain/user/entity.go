// internal/domain/user/entity.go
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/your-org/storefront-backend/internal/pkg/ident"
)

// User represents a storefront account
type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"size:200" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	PasswordHash string    `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	IsAdmin      bool      `gorm:"not null" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// PrimaryKey returns the user identifier
func (u User) PrimaryKey() string { return u.ID }

// Field exposes columns for filtering
func (u User) Field(column string) (any, bool) {
	switch column {
	case "id":
		return u.ID, true
	case "email":
		return u.Email, true
	case "is_admin":
		return u.IsAdmin, true
	case "created_at":
		return u.CreatedAt, true
	}
	return nil, false
}

// Validate checks a row read from the store
func (u User) Validate() error {
	if !ident.IsCanonical(u.ID) {
		return errors.New("id is not canonical")
	}
	if u.Email == "" {
		return errors.New("email is empty")
	}
	return nil
}

// PrepareInsert assigns an id and timestamps, and lower-cases the email
func (u *User) PrepareInsert(now time.Time) {
	if u.ID == "" {
		u.ID = ident.New()
	}
	u.Email = strings.ToLower(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
}

// GetDisplayName returns display name (name or email)
func (u *User) GetDisplayName() string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return u.Email
}
