package http

import "github.com/hireiq/hireiq/app/entity"

// UserResponse is the sanitized view of a user. The password hash and the
// refresh-token hash are deliberately absent.
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	CompanyID string `json:"companyId,omitempty"`
}

func NewUserResponse(user *entity.User) UserResponse {
	resp := UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
		Name:  user.Name,
	}
	if user.Bio.Valid {
		resp.Bio = user.Bio.String
	}
	if user.ImageURL.Valid {
		resp.ImageURL = user.ImageURL.String
	}
	if user.CompanyID.Valid {
		resp.CompanyID = user.CompanyID.String
	}
	return resp
}

type CompanyResponse struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	Name        string `json:"name"`
	Website     string `json:"website,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	RecruiterID string `json:"recruiterId,omitempty"`
}

func NewCompanyResponse(company *entity.Company) CompanyResponse {
	resp := CompanyResponse{
		ID:     company.ID,
		Handle: company.Handle,
		Name:   company.Name,
	}
	if company.Website.Valid {
		resp.Website = company.Website.String
	}
	if company.Description.Valid {
		resp.Description = company.Description.String
	}
	if company.Location.Valid {
		resp.Location = company.Location.String
	}
	if company.RecruiterID.Valid {
		resp.RecruiterID = company.RecruiterID.String
	}
	return resp
}

type RegisterResponse struct {
	User    UserResponse     `json:"user"`
	Company *CompanyResponse `json:"company,omitempty"`
	Message string           `json:"message"`
}

type LoginResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
