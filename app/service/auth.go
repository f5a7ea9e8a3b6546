package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hireiq/hireiq/app/dto"
	"github.com/hireiq/hireiq/app/entity"
	"github.com/hireiq/hireiq/app/repository"
	"github.com/hireiq/hireiq/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrUserNotFound       = errors.New("user not found")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	// ErrTokenReused marks a refresh token that was already rotated away or
	// revoked: a replay, not merely an invalid token.
	ErrTokenReused = errors.New("refresh token superseded or revoked")
)

type AuthService struct {
	db          *sql.DB
	userRepo    *repository.UserRepository
	companyRepo *repository.CompanyRepository
	tokens      *TokenService
	assets      AssetStore
	policy      config.PasswordPolicy
}

func NewAuthService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	companyRepo *repository.CompanyRepository,
	tokens *TokenService,
	assets AssetStore,
	policy config.PasswordPolicy,
) *AuthService {
	return &AuthService{
		db:          db,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		tokens:      tokens,
		assets:      assets,
		policy:      policy,
	}
}

func (s *AuthService) Register(ctx context.Context, params dto.RegisterParams) (*dto.RegisterResult, error) {
	if !entity.ValidRole(params.Role) {
		return nil, ErrInvalidRole
	}

	if err := s.policy.Validate(params.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	existing, err := s.userRepo.FindByEmail(ctx, params.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hashedPassword, err := HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	var imageURL sql.NullString
	if params.Image != nil {
		url, err := s.assets.Upload(ctx, params.Image.Reader, params.Image.Filename, params.Image.ContentType)
		if err != nil {
			logrus.WithError(err).Warn("Profile image upload failed, registering without image")
		} else {
			imageURL = sql.NullString{String: url, Valid: true}
		}
	}

	now := time.Now()
	user := &entity.User{
		ID:           uuid.New().String(),
		Email:        params.Email,
		PasswordHash: hashedPassword,
		Role:         params.Role,
		Name:         params.Name,
		ImageURL:     imageURL,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	result, err := s.createAccount(ctx, user, params.CompanyName)
	if err != nil {
		// A registration that loses the uniqueness race must not leave the
		// uploaded image behind.
		if imageURL.Valid {
			if derr := s.assets.DeleteByURL(ctx, imageURL.String); derr != nil {
				logrus.WithError(derr).WithField("url", imageURL.String).Warn("Failed to delete orphaned profile image")
			}
		}
		return nil, err
	}

	return result, nil
}

func (s *AuthService) createAccount(ctx context.Context, user *entity.User, companyName string) (*dto.RegisterResult, error) {
	if user.Role == entity.RoleRecruiter && companyName != "" {
		return s.registerRecruiter(ctx, user, companyName)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicateEntry(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return &dto.RegisterResult{User: user}, nil
}

// registerRecruiter creates the user and their company in one transaction so
// a half-linked recruiter can never be observed.
func (s *AuthService) registerRecruiter(ctx context.Context, user *entity.User, companyName string) (*dto.RegisterResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	txUserRepo := s.userRepo.WithTx(tx)
	txCompanyRepo := s.companyRepo.WithTx(tx)

	if err := txUserRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicateEntry(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	handle, err := s.availableHandle(ctx, txCompanyRepo, companyName)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	company := &entity.Company{
		ID:          uuid.New().String(),
		Handle:      handle,
		Name:        companyName,
		RecruiterID: sql.NullString{String: user.ID, Valid: true},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := txCompanyRepo.Create(ctx, company); err != nil {
		return nil, err
	}

	user.CompanyID = sql.NullString{String: company.ID, Valid: true}
	if err := txUserRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &dto.RegisterResult{User: user, Company: company}, nil
}

var handleStrip = regexp.MustCompile(`[^a-z0-9-]+`)

// availableHandle derives a URL handle from the company name, suffixing it
// when the plain slug is taken.
func (s *AuthService) availableHandle(ctx context.Context, repo *repository.CompanyRepository, name string) (string, error) {
	slug := handleStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "company"
	}

	existing, err := repo.FindByHandle(ctx, slug)
	if err != nil {
		return "", err
	}
	if existing == nil {
		return slug, nil
	}
	return fmt.Sprintf("%s-%s", slug, uuid.New().String()[:8]), nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	hash := sql.NullString{String: HashRefreshToken(refreshToken), Valid: true}
	if err := s.userRepo.SetRefreshTokenHash(ctx, user.ID, hash); err != nil {
		return nil, err
	}

	return &dto.LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// Refresh exchanges a refresh token for a new pair and rotates the stored
// hash. Under concurrent attempts with the same token exactly one caller
// wins; the rest fail with ErrTokenReused.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*dto.RefreshResult, error) {
	if presented == "" {
		return nil, ErrInvalidCredentials
	}

	claims, err := s.tokens.Verify(presented, TokenRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	presentedHash := HashRefreshToken(presented)
	if !user.RefreshTokenHash.Valid || user.RefreshTokenHash.String != presentedHash {
		return nil, ErrTokenReused
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	// The conditional update is the authority: zero rows means another
	// request rotated the hash between our read and this write.
	rows, err := s.userRepo.RotateRefreshTokenHash(ctx, user.ID, presentedHash, HashRefreshToken(refreshToken))
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrTokenReused
	}

	return &dto.RefreshResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes the current session. Clearing an already-empty hash is a
// no-op, so repeated logouts are safe.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.userRepo.SetRefreshTokenHash(ctx, userID, sql.NullString{})
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if !CheckPassword(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	if err := s.policy.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %s", ErrWeakPassword, err.Error())
	}

	hashedPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	user.PasswordHash = hashedPassword
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	// Revoke the outstanding refresh token as well; a password change that
	// leaves old sessions alive defeats its purpose.
	return s.userRepo.SetRefreshTokenHash(ctx, userID, sql.NullString{})
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, params dto.UpdateProfileParams) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if params.Email != nil && *params.Email != user.Email {
		other, err := s.userRepo.FindByEmail(ctx, *params.Email)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, ErrEmailTaken
		}
		user.Email = *params.Email
	}
	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Bio != nil {
		user.Bio = sql.NullString{String: *params.Bio, Valid: *params.Bio != ""}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsDuplicateEntry(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateProfileImage(ctx context.Context, userID string, upload dto.ImageUpload) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	url, err := s.assets.Upload(ctx, upload.Reader, upload.Filename, upload.ContentType)
	if err != nil {
		return nil, err
	}

	previous := user.ImageURL
	user.ImageURL = sql.NullString{String: url, Valid: true}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	// Deleting the superseded asset is best-effort.
	if previous.Valid {
		if err := s.assets.DeleteByURL(ctx, previous.String); err != nil {
			logrus.WithError(err).WithField("url", previous.String).Warn("Failed to delete previous profile image")
		}
	}

	return user, nil
}
