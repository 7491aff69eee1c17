package domain

import "time"

type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	DateJoined   time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// UserSummary is the slice of a user embedded in flight and booking views.
type UserSummary struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
