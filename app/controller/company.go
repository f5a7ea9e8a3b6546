package controller

import (
	"errors"
	"net/http"

	"github.com/hireiq/hireiq/app/dto"
	httpdto "github.com/hireiq/hireiq/app/dto/http"
	"github.com/hireiq/hireiq/app/middleware"
	"github.com/hireiq/hireiq/app/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type CompanyController struct {
	companyService *service.CompanyService
}

func NewCompanyController(companyService *service.CompanyService) *CompanyController {
	return &CompanyController{companyService: companyService}
}

func (c *CompanyController) Create(ctx echo.Context) error {
	var req httpdto.CreateCompanyRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.Name == "" || req.Handle == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "name and handle are required"})
	}

	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	company, err := c.companyService.Create(ctx.Request().Context(), identity, dto.CreateCompanyParams{
		Name:        req.Name,
		Handle:      req.Handle,
		Website:     req.Website,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrForbidden):
			logrus.WithFields(logrus.Fields{"user_id": identity.UserID, "role": identity.Role}).Warn("Company create denied")
			return ctx.JSON(http.StatusForbidden, httpdto.ErrorResponse{Error: "only recruiters can create companies"})
		case errors.Is(err, service.ErrInvalidHandle):
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "handle may contain only lowercase letters, digits and hyphens"})
		case errors.Is(err, service.ErrCompanyExists):
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "recruiter already owns a company"})
		case errors.Is(err, service.ErrHandleTaken):
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "handle already in use"})
		}
		logrus.WithError(err).WithField("user_id", identity.UserID).Error("Company create failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{"company_id": company.ID, "handle": company.Handle}).Info("Company created")
	return ctx.JSON(http.StatusCreated, httpdto.NewCompanyResponse(company))
}

func (c *CompanyController) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	company, err := c.companyService.Get(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "company not found"})
		}
		logrus.WithError(err).WithField("company_id", id).Error("Company lookup failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}
	return ctx.JSON(http.StatusOK, httpdto.NewCompanyResponse(company))
}

func (c *CompanyController) GetByHandle(ctx echo.Context) error {
	handle := ctx.Param("handle")
	company, err := c.companyService.GetByHandle(ctx.Request().Context(), handle)
	if err != nil {
		if errors.Is(err, service.ErrCompanyNotFound) {
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "company not found"})
		}
		logrus.WithError(err).WithField("handle", handle).Error("Company lookup failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}
	return ctx.JSON(http.StatusOK, httpdto.NewCompanyResponse(company))
}

func (c *CompanyController) List(ctx echo.Context) error {
	companies, err := c.companyService.List(ctx.Request().Context())
	if err != nil {
		logrus.WithError(err).Error("Company list failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	resp := make([]httpdto.CompanyResponse, 0, len(companies))
	for _, company := range companies {
		resp = append(resp, httpdto.NewCompanyResponse(company))
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (c *CompanyController) Update(ctx echo.Context) error {
	var req httpdto.UpdateCompanyRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	id := ctx.Param("id")
	company, err := c.companyService.Update(ctx.Request().Context(), identity, id, dto.UpdateCompanyParams{
		Name:        req.Name,
		Website:     req.Website,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCompanyNotFound):
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "company not found"})
		case errors.Is(err, service.ErrForbidden):
			logrus.WithFields(logrus.Fields{"user_id": identity.UserID, "company_id": id}).Warn("Company update denied")
			return ctx.JSON(http.StatusForbidden, httpdto.ErrorResponse{Error: "access denied"})
		}
		logrus.WithError(err).WithField("company_id", id).Error("Company update failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithField("company_id", company.ID).Info("Company updated")
	return ctx.JSON(http.StatusOK, httpdto.NewCompanyResponse(company))
}

func (c *CompanyController) AssignEmployee(ctx echo.Context) error {
	var req httpdto.AssignEmployeeRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "invalid request body"})
	}

	if req.EmployeeID == "" {
		return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "employeeId is required"})
	}

	identity, ok := middleware.CurrentIdentity(ctx)
	if !ok {
		return ctx.JSON(http.StatusUnauthorized, httpdto.ErrorResponse{Error: "unauthorized"})
	}

	id := ctx.Param("id")
	if err := c.companyService.AssignEmployee(ctx.Request().Context(), identity, id, req.EmployeeID); err != nil {
		switch {
		case errors.Is(err, service.ErrCompanyNotFound):
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "company not found"})
		case errors.Is(err, service.ErrUserNotFound):
			return ctx.JSON(http.StatusNotFound, httpdto.ErrorResponse{Error: "employee not found"})
		case errors.Is(err, service.ErrForbidden):
			logrus.WithFields(logrus.Fields{"user_id": identity.UserID, "company_id": id}).Warn("Employee assignment denied")
			return ctx.JSON(http.StatusForbidden, httpdto.ErrorResponse{Error: "access denied"})
		case errors.Is(err, service.ErrInvalidRole):
			return ctx.JSON(http.StatusBadRequest, httpdto.ErrorResponse{Error: "only employees can be assigned to a company"})
		case errors.Is(err, service.ErrAlreadyAssigned):
			return ctx.JSON(http.StatusConflict, httpdto.ErrorResponse{Error: "employee already belongs to a company"})
		}
		logrus.WithError(err).WithFields(logrus.Fields{"company_id": id, "employee_id": req.EmployeeID}).Error("Employee assignment failed")
		return ctx.JSON(http.StatusInternalServerError, httpdto.ErrorResponse{Error: "internal server error"})
	}

	logrus.WithFields(logrus.Fields{"company_id": id, "employee_id": req.EmployeeID}).Info("Employee assigned to company")
	return ctx.JSON(http.StatusOK, httpdto.MessageResponse{Message: "employee assigned successfully"})
}
