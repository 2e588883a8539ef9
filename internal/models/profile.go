package models

import "time"

// Role distinguishes buyers from sellers
type Role string

const (
	RoleClient Role = "client"
	RoleVendor Role = "vendor"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleClient || r == RoleVendor
}

// Profile holds the public details of a user account
type Profile struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	Phone           string    `json:"phone"`
	Location        string    `json:"location"`
	Role            Role      `json:"role"`
	AvatarURL       string    `json:"avatarUrl,omitempty"`
	FavoriteVendors []string  `json:"favoriteVendors"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// DisplayName joins first and last name
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Location  string `json:"location"`
	Role      Role   `json:"role"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// User is an authentication account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Credentials is the body of the sign-in and sign-up requests
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role,omitempty"`
}

// Session is returned after a successful sign-in
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}
