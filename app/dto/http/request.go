package http

type RegisterRequest struct {
	Name        string `json:"name" form:"name"`
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	Role        string `json:"role" form:"role"`
	CompanyName string `json:"companyName" form:"companyName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Bio   *string `json:"bio"`
}

type CreateCompanyRequest struct {
	Name        string `json:"name"`
	Handle      string `json:"handle"`
	Website     string `json:"website"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name"`
	Website     *string `json:"website"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
}

type AssignEmployeeRequest struct {
	EmployeeID string `json:"employeeId"`
}
