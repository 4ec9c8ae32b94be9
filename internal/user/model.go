package user

import "time"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID           uint      `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Blocked      bool      `json:"blocked"`
	Suspended    bool      `json:"suspended"`
	CreatedAt    time.Time `json:"created_at"`
}

// Status is the account state derived from the blocked/suspended flags.
type Status string

const (
	StatusActive    Status = "active"
	StatusBlocked   Status = "blocked"
	StatusSuspended Status = "suspended"
)

func (u *User) Status() Status {
	switch {
	case u.Blocked:
		return StatusBlocked
	case u.Suspended:
		return StatusSuspended
	default:
		return StatusActive
	}
}

type ListFilter struct {
	Search string
	Status Status
	Role   Role
	Page   int
	Limit  int
}

type ListResult struct {
	Items      []*User `json:"items"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalCount int     `json:"total_count"`
}
