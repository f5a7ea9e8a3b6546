package cmd

import (
	"database/sql"
	"net"

	"github.com/hireiq/hireiq/app/controller"
	"github.com/hireiq/hireiq/app/entity"
	"github.com/hireiq/hireiq/app/middleware"
	"github.com/hireiq/hireiq/app/repository"
	"github.com/hireiq/hireiq/app/service"
	"github.com/hireiq/hireiq/app/storage"
	"github.com/hireiq/hireiq/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the HTTP (Echo) server exposing the auth and company APIs.`,
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	configureLogging(cfg)

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	assetStore, err := storage.New(cfg.Storage)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialise asset storage")
	}

	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	tokenService := service.NewTokenService(cfg)
	authService := service.NewAuthService(db, userRepo, companyRepo, tokenService, assetStore, cfg.PasswordPolicy)
	companyService := service.NewCompanyService(companyRepo, userRepo)

	startHTTPServer(cfg, authService, companyService, tokenService)
}

func configureLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.DebugLevel)
}

func startHTTPServer(cfg *config.Config, authService *service.AuthService, companyService *service.CompanyService, tokenService *service.TokenService) {
	e := echo.New()
	defer e.Close()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	authController := controller.NewAuthController(authService, cfg)
	companyController := controller.NewCompanyController(companyService)
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	auth := e.Group("/auth")
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.POST("/refresh-token", authController.RefreshToken)

	authProtected := auth.Group("")
	authProtected.Use(authMiddleware.RequireAuth(service.TokenAccess))
	authProtected.POST("/logout", authController.Logout)
	authProtected.POST("/change-password", authController.ChangePassword)
	authProtected.GET("/profile", authController.GetProfile)
	authProtected.PATCH("/profile", authController.UpdateProfile)
	authProtected.POST("/profile-image", authController.UpdateProfileImage)

	companies := e.Group("/companies")
	companies.GET("", companyController.List)
	companies.GET("/:id", companyController.Get)
	companies.GET("/handle/:handle", companyController.GetByHandle)

	companiesProtected := companies.Group("")
	companiesProtected.Use(authMiddleware.RequireAuth(service.TokenAccess))
	companiesProtected.POST("", companyController.Create, authMiddleware.RequireRole(entity.RoleRecruiter))
	companiesProtected.PATCH("/:id", companyController.Update)
	companiesProtected.POST("/:id/employees", companyController.AssignEmployee)

	httpAddr := net.JoinHostPort(cfg.HTTPHost, cfg.HTTPPort)
	logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
	if err := e.Start(httpAddr); err != nil {
		logrus.WithError(err).Fatal("Failed to start HTTP server")
	}
}
