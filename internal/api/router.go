package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/securevote/election-system/internal/api/handler"
	"github.com/securevote/election-system/internal/api/middleware"
	"github.com/securevote/election-system/internal/core/domain"
	"github.com/securevote/election-system/internal/core/ports"
	"github.com/securevote/election-system/internal/core/service"
	"github.com/securevote/election-system/internal/infrastructure/config"
	mongodb "github.com/securevote/election-system/internal/infrastructure/db/mongo"
	redisdb "github.com/securevote/election-system/internal/infrastructure/db/redis"
	"github.com/securevote/election-system/internal/infrastructure/media"
)

// Deps carries the long-lived collaborators the router wires into services.
type Deps struct {
	DB       *mongo.Database
	Redis    *redis.Client
	Embedder ports.Embedder
	Notifier ports.Notifier
	Media    *media.Store
	Config   *config.Config
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("election"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Repositories ---
	voterRepo := mongodb.NewVoterRepository(d.DB)
	ballotRepo := mongodb.NewBallotRepository(d.DB)
	candidateRepo := mongodb.NewCandidateRepository(d.DB)
	codeStore := redisdb.NewCodeStore(d.Redis)

	// --- Services ---
	authService := service.NewAuthService(voterRepo, d.Config.JWTSecret, d.Config.TokenTTL)
	codeService := service.NewCodeService(codeStore, voterRepo, d.Notifier, d.Log)
	enrollService := service.NewEnrollmentService(
		voterRepo, codeStore, d.Embedder, d.Media, d.Notifier, d.Config.RequireMobileOTP, d.Log)
	matchService := service.NewFaceMatchService(voterRepo, d.Embedder, d.Config.Face.Threshold, d.Log)
	ballotService := service.NewBallotService(ballotRepo, voterRepo, candidateRepo, d.Log)
	candidateService := service.NewCandidateService(candidateRepo, d.Log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	otpHandler := handler.NewOTPHandler(codeService)
	enrollHandler := handler.NewEnrollmentHandler(enrollService, d.Media)
	faceHandler := handler.NewFaceHandler(matchService)
	voteHandler := handler.NewVoteHandler(ballotService)
	candidateHandler := handler.NewCandidateHandler(candidateService)

	authMW := middleware.Auth(d.Config.JWTSecret)

	// --- Verification and enrollment (no auth: these create the identity) ---
	e.POST("/verify/email/request", otpHandler.RequestEmailCode)
	e.POST("/verify/email", otpHandler.VerifyEmailCode)
	e.POST("/verify/mobile/request", otpHandler.RequestMobileCode)
	e.POST("/verify/mobile", otpHandler.VerifyMobileCode)
	e.POST("/auth/register", enrollHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Voting (authenticated) ---
	e.POST("/face/verify", faceHandler.Verify, authMW)
	e.POST("/votes", voteHandler.CastVote, authMW, middleware.RBAC(domain.RoleVoter, domain.RoleAdmin))

	// --- Results (pure reads) ---
	e.GET("/votes/tally", voteHandler.Tally)
	e.GET("/results", voteHandler.Results)

	// --- Candidates ---
	e.GET("/candidates", candidateHandler.List)
	e.GET("/candidates/:id", candidateHandler.Get)
	e.POST("/candidates", candidateHandler.Add, authMW, middleware.RBAC(domain.RoleAdmin))
	e.DELETE("/candidates/:id", candidateHandler.Remove, authMW, middleware.RBAC(domain.RoleAdmin))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.DB, d.Redis, d.Embedder.EnsureReady)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
