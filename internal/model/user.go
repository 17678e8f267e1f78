package model

import "time"

// User is an account record as returned by the remote API. A user is never
// patched in place: login replaces the whole value, and it stays immutable
// until the next login or logout.
//
// Fields:
//  ID              – primary identifier of the user.
//  Name            – display name.
//  Email           – unique email address used for login.
//  EmailVerifiedAt – when the email was verified (nil if unverified).
//  FarmID          – the farm this account belongs to.
//  Roles           – assigned roles, in server order.
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type User struct {
	ID              uint64     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	FarmID          uint64     `json:"farm_id"`
	Roles           []Role     `json:"roles"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Role is a named permission group attached to a user.
type Role struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	GuardName string    `json:"guard_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PrimaryRole derives the effective role name for a user: the name of the
// first assigned role, or the empty string when the user has none.
// First-role-wins; multiple roles are never merged.
func (u *User) PrimaryRole() string {
	if u == nil || len(u.Roles) == 0 {
		return ""
	}
	return u.Roles[0].Name
}
