package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hireiq/hireiq/app/entity"

	"github.com/go-sql-driver/mysql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so repositories can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// IsDuplicateEntry reports whether err is a MySQL duplicate-key violation.
// Uniqueness races (email, handle, one-company-per-recruiter) are resolved by
// the store rejecting the second write, never by serializing requests.
func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) WithTx(tx *sql.Tx) *UserRepository {
	return &UserRepository{db: tx}
}

const userColumns = `id, email, password_hash, role, name, bio, image_url, company_id, refresh_token_hash, created_at, updated_at`

func scanUser(row *sql.Row) (*entity.User, error) {
	user := &entity.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Name,
		&user.Bio,
		&user.ImageURL,
		&user.CompanyID,
		&user.RefreshTokenHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, role, name, bio, image_url, company_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Name,
		user.Bio,
		user.ImageURL,
		user.CompanyID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	return err
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE email = ?
	`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users WHERE id = ?
	`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users SET
			email = ?,
			password_hash = ?,
			name = ?,
			bio = ?,
			image_url = ?,
			company_id = ?,
			updated_at = ?
		WHERE id = ?
	`
	user.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Bio,
		user.ImageURL,
		user.CompanyID,
		user.UpdatedAt,
		user.ID,
	)
	return err
}

// SetRefreshTokenHash overwrites the stored refresh-token hash. Pass an
// invalid NullString to clear it (logout).
func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, userID string, hash sql.NullString) error {
	query := `UPDATE users SET refresh_token_hash = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, hash, time.Now(), userID)
	return err
}

// RotateRefreshTokenHash swaps oldHash for newHash in a single conditional
// update. Returns the number of rows changed: zero means another request won
// the rotation first and the presented token is no longer valid.
func (r *UserRepository) RotateRefreshTokenHash(ctx context.Context, userID, oldHash, newHash string) (int64, error) {
	query := `UPDATE users SET refresh_token_hash = ?, updated_at = ? WHERE id = ? AND refresh_token_hash = ?`
	result, err := r.db.ExecContext(ctx, query, newHash, time.Now(), userID, oldHash)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// AssignCompany links an employee to a company only if they are not yet
// affiliated anywhere. Returns the number of rows changed.
func (r *UserRepository) AssignCompany(ctx context.Context, userID, companyID string) (int64, error) {
	query := `UPDATE users SET company_id = ?, updated_at = ? WHERE id = ? AND company_id IS NULL`
	result, err := r.db.ExecContext(ctx, query, companyID, time.Now(), userID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
