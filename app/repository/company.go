package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/hireiq/hireiq/app/entity"
)

type CompanyRepository struct {
	db DBTX
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) WithTx(tx *sql.Tx) *CompanyRepository {
	return &CompanyRepository{db: tx}
}

const companyColumns = `id, handle, name, website, description, location, recruiter_id, created_at, updated_at`

func scanCompany(row *sql.Row) (*entity.Company, error) {
	company := &entity.Company{}
	err := row.Scan(
		&company.ID,
		&company.Handle,
		&company.Name,
		&company.Website,
		&company.Description,
		&company.Location,
		&company.RecruiterID,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return company, nil
}

func (r *CompanyRepository) Create(ctx context.Context, company *entity.Company) error {
	query := `
		INSERT INTO companies (id, handle, name, website, description, location, recruiter_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		company.ID,
		company.Handle,
		company.Name,
		company.Website,
		company.Description,
		company.Location,
		company.RecruiterID,
		company.CreatedAt,
		company.UpdatedAt,
	)
	return err
}

func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies WHERE id = ?
	`
	return scanCompany(r.db.QueryRowContext(ctx, query, id))
}

func (r *CompanyRepository) FindByHandle(ctx context.Context, handle string) (*entity.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies WHERE handle = ?
	`
	return scanCompany(r.db.QueryRowContext(ctx, query, handle))
}

func (r *CompanyRepository) FindByRecruiterID(ctx context.Context, recruiterID string) (*entity.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies WHERE recruiter_id = ?
	`
	return scanCompany(r.db.QueryRowContext(ctx, query, recruiterID))
}

func (r *CompanyRepository) List(ctx context.Context) ([]*entity.Company, error) {
	query := `
		SELECT ` + companyColumns + `
		FROM companies ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*entity.Company
	for rows.Next() {
		company := &entity.Company{}
		if err := rows.Scan(
			&company.ID,
			&company.Handle,
			&company.Name,
			&company.Website,
			&company.Description,
			&company.Location,
			&company.RecruiterID,
			&company.CreatedAt,
			&company.UpdatedAt,
		); err != nil {
			return nil, err
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) Update(ctx context.Context, company *entity.Company) error {
	query := `
		UPDATE companies SET
			handle = ?,
			name = ?,
			website = ?,
			description = ?,
			location = ?,
			recruiter_id = ?,
			updated_at = ?
		WHERE id = ?
	`
	company.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		company.Handle,
		company.Name,
		company.Website,
		company.Description,
		company.Location,
		company.RecruiterID,
		company.UpdatedAt,
		company.ID,
	)
	return err
}
