package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/hireiq/hireiq/app/dto"
	httpdto "github.com/hireiq/hireiq/app/dto/http"
	"github.com/hireiq/hireiq/app/entity"
	"github.com/hireiq/hireiq/app/middleware"
	"github.com/hireiq/hireiq/app/service"
	"github.com/hireiq/hireiq/app/types"
	"github.com/hireiq/hireiq/config"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthController struct {
	authService *service.AuthService
	cfg         *config.Config
}

func NewAuthController(authService *service.AuthService, cfg *config.Config) *AuthController {
	return &AuthController{authService: authService, cfg: cfg}
}

func (c *AuthController) Register(ctx echo.Context) error {
	var req httpdto.RegisterRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind register request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "name, email, password and role are required"})
	}
	if !entity.ValidRole(req.Role) {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "role must be EMPLOYEE or RECRUITER"})
	}

	params := dto.RegisterParams{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Role:        req.Role,
		CompanyName: req.CompanyName,
	}

	// Optional multipart profile image; its absence is not an error.
	if file, err := ctx.FormFile("profileImage"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			logrus.WithError(err).Warn("Failed to open uploaded profile image")
		} else {
			defer src.Close()
			params.Image = &dto.ImageUpload{
				Reader:      src,
				Filename:    file.Filename,
				ContentType: file.Header.Get("Content-Type"),
			}
		}
	}

	logrus.WithFields(logrus.Fields{"email": req.Email, "role": req.Role}).Info("Register request received")
	result, err := c.authService.Register(ctx.Request().Context(), params)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			logrus.WithField("email", req.Email).Warn("Register failed: email already in use")
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "email already in use"})
		}
		if errors.Is(err, service.ErrInvalidRole) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "role must be EMPLOYEE or RECRUITER"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Register failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	resp := httpdto.RegisterResponse{
		User:    httpdto.NewUserResponse(result.User),
		Message: "registration successful",
	}
	if result.Company != nil {
		company := httpdto.NewCompanyResponse(result.Company)
		resp.Company = &company
	}

	logrus.WithFields(logrus.Fields{"user_id": result.User.ID, "email": result.User.Email}).Info("User registered")
	return ctx.JSON(http.StatusCreated, resp)
}

func (c *AuthController) Login(ctx echo.Context) error {
	var req httpdto.LoginRequest
	if err := ctx.Bind(&req); err != nil {
		logrus.WithError(err).Debug("Failed to bind login request")
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Email == "" || req.Password == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "email and password are required"})
	}

	logrus.WithField("email", req.Email).Info("Login request received")
	result, err := c.authService.Login(ctx.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("email", req.Email).Warn("Login failed: invalid credentials")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid credentials"})
		}
		logrus.WithError(err).WithField("email", req.Email).Error("Login failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	c.setAuthCookies(ctx, result.AccessToken, result.RefreshToken)

	logrus.WithField("user_id", result.User.ID).Info("Login successful")
	return ctx.JSON(http.StatusOK, httpdto.LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		User:         httpdto.NewUserResponse(result.User),
	})
}

func (c *AuthController) RefreshToken(ctx echo.Context) error {
	// The refresh cookie wins; the body is the fallback for clients that do
	// not carry cookies.
	presented := middleware.ExtractToken(ctx, service.TokenRefresh)
	if presented == "" {
		var req httpdto.RefreshTokenRequest
		if err := ctx.Bind(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		logrus.Debug("Refresh failed: no token presented")
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid credentials"})
	}

	result, err := c.authService.Refresh(ctx.Request().Context(), presented)
	if err != nil {
		if errors.Is(err, service.ErrTokenReused) {
			logrus.Warn("Refresh failed: token superseded or revoked")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "refresh token superseded or revoked"})
		}
		if errors.Is(err, service.ErrInvalidCredentials) ||
			errors.Is(err, service.ErrTokenExpired) ||
			errors.Is(err, service.ErrTokenMalformed) ||
			errors.Is(err, service.ErrTokenSignature) {
			logrus.WithError(err).Warn("Refresh failed: invalid token")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid or expired refresh token"})
		}
		logrus.WithError(err).Error("Refresh failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	c.setAuthCookies(ctx, result.AccessToken, result.RefreshToken)

	logrus.Info("Refresh token successful")
	return ctx.JSON(http.StatusOK, httpdto.RefreshTokenResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

func (c *AuthController) Logout(ctx echo.Context) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	if err := c.authService.Logout(ctx.Request().Context(), identity.UserID); err != nil {
		logrus.WithError(err).WithField("user_id", identity.UserID).Error("Logout failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	c.clearAuthCookies(ctx)

	logrus.WithField("user_id", identity.UserID).Info("Logout successful")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "logged out successfully"})
}

func (c *AuthController) ChangePassword(ctx echo.Context) error {
	var req httpdto.ChangePasswordRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "oldPassword and newPassword are required"})
	}

	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	if err := c.authService.ChangePassword(ctx.Request().Context(), identity.UserID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			logrus.WithField("user_id", identity.UserID).Warn("Change password failed: wrong old password")
			return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "invalid credentials"})
		}
		if errors.Is(err, service.ErrWeakPassword) {
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: err.Error()})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", identity.UserID).Error("Change password failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", identity.UserID).Info("Password changed")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "password changed successfully"})
}

func (c *AuthController) GetProfile(ctx echo.Context) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	user, err := c.authService.GetProfile(ctx.Request().Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", identity.UserID).Error("Get profile failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	return ctx.JSON(http.StatusOK, httpdto.NewUserResponse(user))
}

func (c *AuthController) UpdateProfile(ctx echo.Context) error {
	var req httpdto.UpdateProfileRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	user, err := c.authService.UpdateProfile(ctx.Request().Context(), identity.UserID, dto.UpdateProfileParams{
		Name:  req.Name,
		Email: req.Email,
		Bio:   req.Bio,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "email already in use"})
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", identity.UserID).Error("Update profile failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", identity.UserID).Info("Profile updated")
	return ctx.JSON(http.StatusOK, httpdto.NewUserResponse(user))
}

func (c *AuthController) UpdateProfileImage(ctx echo.Context) error {
	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	file, err := ctx.FormFile("profileImage")
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "profileImage file is required"})
	}

	src, err := file.Open()
	if err != nil {
		logrus.WithError(err).Error("Failed to open uploaded profile image")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}
	defer src.Close()

	user, err := c.authService.UpdateProfileImage(ctx.Request().Context(), identity.UserID, dto.ImageUpload{
		Reader:      src,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "user not found"})
		}
		logrus.WithError(err).WithField("user_id", identity.UserID).Error("Update profile image failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("user_id", identity.UserID).Info("Profile image updated")
	return ctx.JSON(http.StatusOK, httpdto.NewUserResponse(user))
}

func (c *AuthController) setAuthCookies(ctx echo.Context, accessToken, refreshToken string) {
	ctx.SetCookie(c.authCookie(types.CookieAccessToken, accessToken, c.cfg.AccessCookieMaxAge))
	ctx.SetCookie(c.authCookie(types.CookieRefreshToken, refreshToken, c.cfg.RefreshCookieMaxAge))
}

func (c *AuthController) clearAuthCookies(ctx echo.Context) {
	ctx.SetCookie(c.authCookie(types.CookieAccessToken, "", -time.Second))
	ctx.SetCookie(c.authCookie(types.CookieRefreshToken, "", -time.Second))
}

func (c *AuthController) authCookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.cfg.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	}
}
