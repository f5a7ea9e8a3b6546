package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hireiq/hireiq/app/controller"
	"github.com/hireiq/hireiq/app/entity"
	"github.com/hireiq/hireiq/app/middleware"
	"github.com/hireiq/hireiq/app/repository"
	"github.com/hireiq/hireiq/app/service"
	"github.com/hireiq/hireiq/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
)

const (
	findCompanyByIDQuery        = `(?s)SELECT id, handle, name, website, description, location, recruiter_id, created_at, updated_at\s+FROM companies WHERE id = \?`
	findCompanyByHandleQuery    = `(?s)SELECT id, handle, name, website, description, location, recruiter_id, created_at, updated_at\s+FROM companies WHERE handle = \?`
	findCompanyByRecruiterQuery = `(?s)SELECT id, handle, name, website, description, location, recruiter_id, created_at, updated_at\s+FROM companies WHERE recruiter_id = \?`
	insertCompanyQuery          = `(?s)INSERT INTO companies \(id, handle, name, website, description, location, recruiter_id, created_at, updated_at\)\s+VALUES \(\?, \?, \?, \?, \?, \?, \?, \?, \?\)`
)

var companyColumns = []string{
	"id",
	"handle",
	"name",
	"website",
	"description",
	"location",
	"recruiter_id",
	"created_at",
	"updated_at",
}

type companyTestEnv struct {
	controller *controller.CompanyController
	middleware *middleware.AuthMiddleware
	tokens     *service.TokenService
	mock       sqlmock.Sqlmock
	cleanup    func()
}

func newCompanyTestEnv(t *testing.T) *companyTestEnv {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	tokens := service.NewTokenService(&config.Config{
		AccessTokenSecret:  "access-secret",
		RefreshTokenSecret: "refresh-secret",
		AccessTokenTTL:     15 * time.Minute,
		RefreshTokenTTL:    7 * 24 * time.Hour,
	})
	companyService := service.NewCompanyService(repository.NewCompanyRepository(db), repository.NewUserRepository(db))

	return &companyTestEnv{
		controller: controller.NewCompanyController(companyService),
		middleware: middleware.NewAuthMiddleware(tokens),
		tokens:     tokens,
		mock:       mock,
		cleanup:    func() { _ = db.Close() },
	}
}

func accessTokenFor(t *testing.T, tokens *service.TokenService, id, role string) string {
	t.Helper()
	signed, err := tokens.IssueAccessToken(&entity.User{ID: id, Email: id + "@example.com", Role: role, Name: "Someone"})
	if err != nil {
		t.Fatalf("failed to issue access token: %v", err)
	}
	return signed
}

func invokeWithParam(req *http.Request, paramName, paramValue string, handler echo.HandlerFunc, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames(paramName)
	c.SetParamValues(paramValue)
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	_ = handler(c)
	return rec
}

func TestCompanyController_Create_Succeeds(t *testing.T) {
	env := newCompanyTestEnv(t)
	defer env.cleanup()

	env.mock.ExpectQuery(findCompanyByRecruiterQuery).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(companyColumns))
	env.mock.ExpectQuery(findCompanyByHandleQuery).
		WithArgs("acme").
		WillReturnRows(sqlmock.NewRows(companyColumns))
	env.mock.ExpectExec(insertCompanyQuery).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := jsonRequest(http.MethodPost, "/companies", `{"name":"Acme","handle":"acme"}`)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, env.tokens, "r1", entity.RoleRecruiter))
	rec := invoke(req, env.controller.Create, env.middleware.RequireAuth(service.TokenAccess))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCompanyController_Create_EmployeeForbidden(t *testing.T) {
	env := newCompanyTestEnv(t)
	defer env.cleanup()

	req := jsonRequest(http.MethodPost, "/companies", `{"name":"Acme","handle":"acme"}`)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, env.tokens, "e1", entity.RoleEmployee))
	rec := invoke(req, env.controller.Create, env.middleware.RequireAuth(service.TokenAccess))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

// The create route mounts RequireRole ahead of the handler, so an employee
// token is rejected before the controller runs.
func TestCompanyController_Create_RoleGateBlocksEmployee(t *testing.T) {
	env := newCompanyTestEnv(t)
	defer env.cleanup()

	req := jsonRequest(http.MethodPost, "/companies", `{"name":"Acme","handle":"acme"}`)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, env.tokens, "e1", entity.RoleEmployee))
	rec := invoke(req, env.controller.Create,
		env.middleware.RequireAuth(service.TokenAccess),
		env.middleware.RequireRole(entity.RoleRecruiter))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "access denied") {
		t.Fatalf("expected the role gate response, got %s", rec.Body.String())
	}
	if err := env.mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected database access: %v", err)
	}
}

func TestCompanyController_Create_Unauthenticated(t *testing.T) {
	env := newCompanyTestEnv(t)
	defer env.cleanup()

	req := jsonRequest(http.MethodPost, "/companies", `{"name":"Acme","handle":"acme"}`)
	rec := invoke(req, env.controller.Create, env.middleware.RequireAuth(service.TokenAccess))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCompanyController_Get_NotFound(t *testing.T) {
	env := newCompanyTestEnv(t)
	defer env.cleanup()

	env.mock.ExpectQuery(findCompanyByIDQuery).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(companyColumns))

	req := httptest.NewRequest(http.MethodGet, "/companies/missing", nil)
	rec := invokeWithParam(req, "id", "missing", env.controller.Get)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCompanyController_Update_OtherRecruiterForbidden(t *testing.T) {
	env := newCompanyTestEnv(t)
	defer env.cleanup()

	now := time.Now()
	env.mock.ExpectQuery(findCompanyByIDQuery).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(companyColumns).
			AddRow("c1", "acme", "Acme", nil, nil, nil, "owner-recruiter", now, now))

	req := jsonRequest(http.MethodPatch, "/companies/c1", `{"name":"Hijacked"}`)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, env.tokens, "other-recruiter", entity.RoleRecruiter))
	rec := invokeWithParam(req, "id", "c1", env.controller.Update, env.middleware.RequireAuth(service.TokenAccess))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestCompanyController_AssignEmployee_Conflict(t *testing.T) {
	env := newCompanyTestEnv(t)
	defer env.cleanup()

	now := time.Now()
	env.mock.ExpectQuery(findCompanyByIDQuery).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(companyColumns).
			AddRow("c1", "acme", "Acme", nil, nil, nil, "r1", now, now))
	env.mock.ExpectQuery(findUserByIDQuery).
		WithArgs("e1").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("e1", "e1@example.com", "hash", entity.RoleEmployee, "Emp", nil, nil, "other-company", nil, now, now))

	req := jsonRequest(http.MethodPost, "/companies/c1/employees", `{"employeeId":"e1"}`)
	req.Header.Set("Authorization", "Bearer "+accessTokenFor(t, env.tokens, "r1", entity.RoleRecruiter))
	rec := invokeWithParam(req, "id", "c1", env.controller.AssignEmployee, env.middleware.RequireAuth(service.TokenAccess))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
