package entity

import (
	"database/sql"
	"time"
)

const (
	RoleEmployee  = "EMPLOYEE"
	RoleRecruiter = "RECRUITER"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Name         string
	Bio          sql.NullString
	ImageURL     sql.NullString
	CompanyID    sql.NullString
	// SHA-256 hex of the currently valid refresh token. NULL means the user
	// has no active session.
	RefreshTokenHash sql.NullString
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func ValidRole(role string) bool {
	return role == RoleEmployee || role == RoleRecruiter
}
