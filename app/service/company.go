package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"time"

	"github.com/hireiq/hireiq/app/dto"
	"github.com/hireiq/hireiq/app/entity"
	"github.com/hireiq/hireiq/app/repository"
	"github.com/hireiq/hireiq/app/types"

	"github.com/google/uuid"
)

var (
	ErrForbidden       = errors.New("operation not allowed for this identity")
	ErrCompanyNotFound = errors.New("company not found")
	ErrCompanyExists   = errors.New("recruiter already owns a company")
	ErrHandleTaken     = errors.New("company handle already taken")
	ErrInvalidHandle   = errors.New("handle may contain only lowercase letters, numbers and hyphens")
	ErrAlreadyAssigned = errors.New("employee already belongs to a company")
)

var handlePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

type CompanyService struct {
	companyRepo *repository.CompanyRepository
	userRepo    *repository.UserRepository
}

func NewCompanyService(companyRepo *repository.CompanyRepository, userRepo *repository.UserRepository) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
	}
}

// Create makes a company owned by the calling recruiter. The pre-checks give
// friendly errors on the common path; the unique indexes on handle and
// recruiter_id are what actually decide a race between two concurrent
// creations.
func (s *CompanyService) Create(ctx context.Context, identity types.Identity, params dto.CreateCompanyParams) (*entity.Company, error) {
	if identity.Role != entity.RoleRecruiter {
		return nil, ErrForbidden
	}

	if !handlePattern.MatchString(params.Handle) {
		return nil, ErrInvalidHandle
	}

	existing, err := s.companyRepo.FindByRecruiterID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCompanyExists
	}

	taken, err := s.companyRepo.FindByHandle(ctx, params.Handle)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, ErrHandleTaken
	}

	now := time.Now()
	company := &entity.Company{
		ID:          uuid.New().String(),
		Handle:      params.Handle,
		Name:        params.Name,
		Website:     nullable(params.Website),
		Description: nullable(params.Description),
		Location:    nullable(params.Location),
		RecruiterID: sql.NullString{String: identity.UserID, Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.companyRepo.Create(ctx, company); err != nil {
		if repository.IsDuplicateEntry(err) {
			// Lost a race on either unique index; report the handle unless
			// the recruiter now owns a company.
			raced, lookupErr := s.companyRepo.FindByRecruiterID(ctx, identity.UserID)
			if lookupErr == nil && raced != nil {
				return nil, ErrCompanyExists
			}
			return nil, ErrHandleTaken
		}
		return nil, err
	}

	return company, nil
}

func (s *CompanyService) Get(ctx context.Context, id string) (*entity.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

func (s *CompanyService) GetByHandle(ctx context.Context, handle string) (*entity.Company, error) {
	company, err := s.companyRepo.FindByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	return company, nil
}

func (s *CompanyService) List(ctx context.Context) ([]*entity.Company, error) {
	return s.companyRepo.List(ctx)
}

func (s *CompanyService) Update(ctx context.Context, identity types.Identity, id string, params dto.UpdateCompanyParams) (*entity.Company, error) {
	company, err := s.ownedCompany(ctx, identity, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		company.Name = *params.Name
	}
	if params.Website != nil {
		company.Website = nullable(*params.Website)
	}
	if params.Description != nil {
		company.Description = nullable(*params.Description)
	}
	if params.Location != nil {
		company.Location = nullable(*params.Location)
	}

	if err := s.companyRepo.Update(ctx, company); err != nil {
		return nil, err
	}
	return company, nil
}

// AssignEmployee links an employee to the company. Only the owning recruiter
// may assign, and an employee belongs to at most one company.
func (s *CompanyService) AssignEmployee(ctx context.Context, identity types.Identity, companyID, employeeID string) error {
	if _, err := s.ownedCompany(ctx, identity, companyID); err != nil {
		return err
	}

	employee, err := s.userRepo.FindByID(ctx, employeeID)
	if err != nil {
		return err
	}
	if employee == nil {
		return ErrUserNotFound
	}
	if employee.Role != entity.RoleEmployee {
		return ErrInvalidRole
	}
	if employee.CompanyID.Valid {
		return ErrAlreadyAssigned
	}

	rows, err := s.userRepo.AssignCompany(ctx, employeeID, companyID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAlreadyAssigned
	}
	return nil
}

func (s *CompanyService) ownedCompany(ctx context.Context, identity types.Identity, id string) (*entity.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, ErrCompanyNotFound
	}
	if !company.RecruiterID.Valid || company.RecruiterID.String != identity.UserID {
		return nil, ErrForbidden
	}
	return company, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
