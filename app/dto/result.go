package dto

import (
	"io"

	"github.com/hireiq/hireiq/app/entity"
)

// ImageUpload carries an in-flight profile image towards the asset store.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

type RegisterParams struct {
	Name        string
	Email       string
	Password    string
	Role        string
	CompanyName string
	Image       *ImageUpload
}

type RegisterResult struct {
	User    *entity.User
	Company *entity.Company
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *entity.User
}

type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

type UpdateProfileParams struct {
	Name  *string
	Email *string
	Bio   *string
}

type CreateCompanyParams struct {
	Name        string
	Handle      string
	Website     string
	Description string
	Location    string
}

type UpdateCompanyParams struct {
	Name        *string
	Website     *string
	Description *string
	Location    *string
}
