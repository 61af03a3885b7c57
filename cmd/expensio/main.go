package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/expensio/expensio/internal/auth"
	"github.com/expensio/expensio/internal/database"
	"github.com/expensio/expensio/internal/finance/application"
	"github.com/expensio/expensio/internal/finance/infrastructure"
	"github.com/expensio/expensio/internal/finance/interfaces"
	applogger "github.com/expensio/expensio/internal/logger"
	"github.com/expensio/expensio/internal/receipt"
	"github.com/expensio/expensio/internal/user"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"status":  "error",
		"message": message,
		"code":    status,
	})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusNotFound, "Path not found")
}

func loggingMiddleware(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		return errors.New("no JWT_SECRET provided")
	}
	if os.Getenv("DB_CONNECTION_STRING") == "" {
		return errors.New("no DB_CONNECTION_STRING provided")
	}
	return nil
}

type Server struct {
	router             *http.ServeMux
	dbService          *database.DBService
	authHandler        *auth.Handler
	authService        auth.Service
	userHandler        *user.Handler
	transactionHandler *interfaces.TransactionHandler
	reportHandler      *interfaces.ReportHandler
	receiptHandler     *receipt.Handler
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	health := s.dbService.Health()
	if health["status"] != "up" {
		respondJSON(w, http.StatusServiceUnavailable, health)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) RegisterRoutes() {
	accessToken := s.authService.Middleware().AccessToken()
	refreshToken := s.authService.Middleware().RefreshToken()

	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("POST /api/register", http.HandlerFunc(s.userHandler.HandleRegister))
	publicRoutes.Handle("POST /api/auth/login", http.HandlerFunc(s.authHandler.HandleLogin))
	publicRoutes.Handle("POST /api/auth/2fa/verify", http.HandlerFunc(s.authHandler.HandleVerifyTwoFactor))
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("GET /api/protected/profile",
		accessToken(http.HandlerFunc(s.userHandler.HandleGetUserProfile)))
	protectedRoutes.Handle("PUT /api/protected/profile/currency",
		accessToken(http.HandlerFunc(s.userHandler.HandleUpdateCurrency)))

	protectedRoutes.Handle("POST /api/protected/logout",
		accessToken(http.HandlerFunc(s.authHandler.HandleLogout)))
	protectedRoutes.Handle("POST /api/protected/2fa/register",
		accessToken(http.HandlerFunc(s.authHandler.HandleRegisterTwoFactor)))
	protectedRoutes.Handle("POST /api/protected/2fa/verify-registration",
		accessToken(http.HandlerFunc(s.authHandler.HandleVerifyTwoFactorCode)))

	// TRANSACTIONS API
	protectedRoutes.Handle("POST /api/protected/transactions",
		accessToken(http.HandlerFunc(s.transactionHandler.CreateTransaction)))
	protectedRoutes.Handle("GET /api/protected/transactions",
		accessToken(http.HandlerFunc(s.transactionHandler.GetUserTransactions)))
	protectedRoutes.Handle("GET /api/protected/transactions/monthly-total",
		accessToken(http.HandlerFunc(s.transactionHandler.GetMonthlyTotal)))
	protectedRoutes.Handle("PUT /api/protected/transactions/{transactionID}",
		accessToken(http.HandlerFunc(s.transactionHandler.UpdateTransaction)))
	protectedRoutes.Handle("DELETE /api/protected/transactions/{transactionID}",
		accessToken(http.HandlerFunc(s.transactionHandler.DeleteTransaction)))

	// REPORTS API
	protectedRoutes.Handle("GET /api/protected/reports/summary",
		accessToken(http.HandlerFunc(s.reportHandler.GetSummary)))

	// RECEIPTS API
	protectedRoutes.Handle("POST /api/protected/receipts/scan",
		accessToken(http.HandlerFunc(s.receiptHandler.HandleScan)))

	// Refresh token routes
	refreshTokenRoutes := http.NewServeMux()
	refreshTokenRoutes.Handle("PUT /api/refresh/token",
		refreshToken(http.HandlerFunc(s.authHandler.RefreshAccessToken)))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/api/refresh/", refreshTokenRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

// newListCache connects to Redis when REDIS_URL is set; transaction listing
// works without it, just without caching.
func newListCache(logger zerolog.Logger) application.ListCache {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		logger.Info().Msg("REDIS_URL not set, transaction list caching disabled")
		return infrastructure.NoopListCache{}
	}

	opt, err := redis.ParseURL(fmt.Sprintf("redis://%s", redisURL))
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}
	client := redis.NewClient(opt)
	return infrastructure.NewRedisListCache(client, logger)
}

// startSessionSweeper periodically drops expired pending-2FA session tokens.
func startSessionSweeper(sessionManager auth.SessionManagerInterface, logger zerolog.Logger) error {
	c := cron.New()
	_, err := c.AddFunc("@every 5m", func() {
		if removed := sessionManager.CleanupExpired(); removed > 0 {
			logger.Info().Int("removed", removed).Msg("swept expired session tokens")
		}
	})
	if err != nil {
		return err
	}
	c.Start()
	return nil
}

func main() {
	logger := applogger.New()

	if err := checkConfiguration(); err != nil {
		logger.Fatal().Err(err).Msg("missing configuration, update to start server")
	}

	dbService, err := database.NewDBService(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not initialize database")
	}
	defer dbService.Close()

	if err := dbService.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("could not run database migrations")
	}

	sessionManager := auth.NewSessionManager()
	jwtManager, err := auth.NewJWTManager()
	if err != nil {
		logger.Fatal().Err(err).Msg("could not initialize JWT manager")
	}
	authenticator := auth.Authenticator{}

	userRepo := user.NewUserRepository(dbService.DB)
	userService := user.NewUserService(userRepo)
	userHandler := user.NewHandler(userService, respondJSON, respondError)

	authService := auth.NewAuthService(userService, sessionManager, jwtManager, authenticator, logger)
	authHandler := auth.NewHandler(authService, respondJSON, respondError)

	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)
	listCache := newListCache(logger)
	transactionService := application.NewTransactionService(transactionRepo, userService, listCache, logger)
	transactionHandler := interfaces.NewTransactionHandler(transactionService, respondJSON, respondError)
	reportHandler := interfaces.NewReportHandler(transactionService, respondJSON, respondError)

	receiptService := receipt.NewService(logger)
	receiptHandler := receipt.NewHandler(receiptService, respondJSON, respondError)

	server := &Server{
		dbService:          dbService,
		authHandler:        authHandler,
		authService:        authService,
		userHandler:        userHandler,
		transactionHandler: transactionHandler,
		reportHandler:      reportHandler,
		receiptHandler:     receiptHandler,
	}
	server.RegisterRoutes()

	if err := startSessionSweeper(sessionManager, logger); err != nil {
		logger.Fatal().Err(err).Msg("session sweeper didn't start, stopping the app")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info().Str("port", port).Msg("server starting")
	if err := http.ListenAndServe(":"+port, loggingMiddleware(logger, server.router)); err != nil {
		logger.Fatal().Err(err).Msg("server failed to start")
	}
}
