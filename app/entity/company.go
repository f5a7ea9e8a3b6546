package entity

import (
	"database/sql"
	"time"
)

type Company struct {
	ID          string
	Handle      string
	Name        string
	Website     sql.NullString
	Description sql.NullString
	Location    sql.NullString
	// At most one company per recruiter, enforced by a unique index.
	RecruiterID sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
