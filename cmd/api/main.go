package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/portfoliocms/backend/docs"
	"github.com/portfoliocms/backend/internal/auth"
	"github.com/portfoliocms/backend/internal/config"
	"github.com/portfoliocms/backend/internal/handlers"
	"github.com/portfoliocms/backend/internal/imaging"
	"github.com/portfoliocms/backend/internal/logger"
	"github.com/portfoliocms/backend/internal/middleware"
	"github.com/portfoliocms/backend/internal/repositories"
	"github.com/portfoliocms/backend/internal/services"
	"github.com/portfoliocms/backend/internal/storage"
)

const version = "1.0.0"

// @title Portfolio CMS API
// @version 1.0
// @description API for the portfolio content management system

// @contact.name API Support

// @license.name MIT

// @host localhost:5000
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	zl, err := logger.New(cfg.Logging.Level, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer zl.Sync()

	zl.Info("Starting Portfolio CMS API",
		zap.String("environment", cfg.Server.Environment),
		zap.String("version", version),
	)

	// Connect to database
	db, err := repositories.Open(context.Background(), cfg.DSN())
	if err != nil {
		zl.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := runMigrations(db); err != nil {
		zl.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, zl)
	portfolioRepo := repositories.NewPortfolioRepository(db, zl)
	experienceRepo := repositories.NewExperienceRepository(db, zl)
	blogRepo := repositories.NewBlogRepository(db, zl)
	contactRepo := repositories.NewContactRepository(db, zl)
	testimonialRepo := repositories.NewTestimonialRepository(db, zl)

	// Initialize services
	tokens := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.RefreshSecret, cfg.JWT.AccessTokenExpiry, cfg.JWT.RefreshTokenExpiry)
	hasher := auth.NewPasswordHasher(cfg.BcryptRounds)

	authService := services.NewAuthService(userRepo, tokens, hasher, zl)
	portfolioService := services.NewPortfolioService(portfolioRepo, zl)
	experienceService := services.NewExperienceService(experienceRepo, zl)
	blogService := services.NewBlogService(blogRepo, zl)
	contactService := services.NewContactService(contactRepo, newMailer(cfg, zl), cfg.SMTP.AdminEmail, zl)
	testimonialService := services.NewTestimonialService(testimonialRepo, zl)
	uploadService := services.NewUploadService(
		storage.NewLocalStorage(cfg.Upload.Path),
		imaging.NewProcessor(zl),
		cfg.Upload.MaxFileSize,
		cfg.Upload.MaxFiles,
		zl,
	)

	// Seed the super admin
	created, err := authService.EnsureDefaultAdmin(context.Background(), cfg.DefaultAdmin.Email, cfg.DefaultAdmin.Password, cfg.DefaultAdmin.Name)
	if err != nil {
		zl.Fatal("Failed to seed default admin", zap.Error(err))
	}
	if created {
		zl.Warn("Default super admin created, change its password", zap.String("email", cfg.DefaultAdmin.Email))
	}

	// Initialize handlers
	base := handlers.NewBaseHandler(zl, cfg.IsDevelopment())
	guards := handlers.NewGuards(authService)
	authHandler := handlers.NewAuthHandler(authService, handlers.CookieConfig{
		AccessMaxAge:  cfg.JWT.AccessTokenExpiry,
		RefreshMaxAge: cfg.JWT.RefreshTokenExpiry,
		Secure:        cfg.IsProduction(),
	}, base)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, base)
	experienceHandler := handlers.NewExperienceHandler(experienceService, base)
	blogHandler := handlers.NewBlogHandler(blogService, base)
	contactHandler := handlers.NewContactHandler(contactService, base)
	testimonialHandler := handlers.NewTestimonialHandler(testimonialService, base)
	uploadHandler := handlers.NewUploadHandler(uploadService, base)
	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Environment, version, base)

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(zl))
	r.Use(middleware.Recovery(zl))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.RateLimit(handlers.GlobalRequests, handlers.GlobalLimitWindow, middleware.MsgTooManyRequests))
	r.Use(middleware.ClientInfo)

	healthHandler.RegisterRoutes(r)

	// Swagger documentation
	docs.SwaggerInfo.BasePath = "/api/" + cfg.Server.APIVersion
	r.Get("/api-docs/*", httpSwagger.Handler(
		httpSwagger.URL("/api-docs/doc.json"),
	))

	// Uploaded files
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Upload.Path))))

	// Scope router to /api/{version}
	r.Route("/api/"+cfg.Server.APIVersion, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSizeLimit(middleware.DefaultMaxRequestSize))
			authHandler.RegisterRoutes(r, guards)
			portfolioHandler.RegisterRoutes(r, guards)
			experienceHandler.RegisterRoutes(r, guards)
			blogHandler.RegisterRoutes(r, guards)
			contactHandler.RegisterRoutes(r, guards)
			testimonialHandler.RegisterRoutes(r, guards)
		})
		// Multipart bodies carry up to MaxFiles files
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequestSizeLimit(uploadHandler.MaxRequestSize()))
			uploadHandler.RegisterRoutes(r, guards)
		})
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zl.Info("Server starting", zap.Int("port", cfg.Server.Port), zap.String("api_version", cfg.Server.APIVersion))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight notification emails finish before the pool closes
	contactService.Wait()

	zl.Info("Server exited")
}

// newMailer delivers over SMTP when a host is configured and logs otherwise
func newMailer(cfg *config.Config, logger *zap.Logger) services.Mailer {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not set, emails will be logged instead of sent")
		return services.NoopMailer{Logger: logger}
	}
	return services.NewSMTPMailer(services.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, logger)
}

// runMigrations applies pending migrations from the migrations directory
func runMigrations(db *sql.DB) error {
	driver, err := mysql.WithInstance(db, &mysql.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	// Get the working directory or use migrations folder relative to the binary
	migrationPath := "file://migrations"
	if _, err := os.Stat("migrations"); os.IsNotExist(err) {
		// Try the repository root when running from cmd/api
		if _, err := os.Stat("../../migrations"); err == nil {
			migrationPath = "file://../../migrations"
		}
	}

	m, err := migrate.NewWithDatabaseInstance(migrationPath, "mysql", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}
