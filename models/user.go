package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values assignable to a user. Admin accounts are provisioned
// out of band and cannot be chosen at registration.
const (
	RoleDonor     = "donor"
	RoleVolunteer = "volunteer"
	RoleFarmer    = "farmer"
	RoleAdmin     = "admin"
)

// User represents a marketplace participant. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:100;not null" json:"name"`
	Email        string         `gorm:"size:100;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	Role         string         `gorm:"size:16;not null" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// ValidSignupRole reports whether the role can be self-assigned at registration.
func ValidSignupRole(role string) bool {
	switch role {
	case RoleDonor, RoleVolunteer, RoleFarmer:
		return true
	}
	return false
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}

// PublicUser is the contact summary embedded into responses and
// realtime payloads. It never carries credentials.
type PublicUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public projects the user into its contact summary.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
