// Package server contains HTTP and WebSocket handlers for the forum API.
package server

import (
	"context"
	"fmt"
	"time"

	_ "forumhub/docs" // swagger docs
	"forumhub/internal/auth"
	"forumhub/internal/authz"
	"forumhub/internal/cache"
	"forumhub/internal/config"
	"forumhub/internal/database"
	"forumhub/internal/middleware"
	"forumhub/internal/models"
	"forumhub/internal/notifications"
	"forumhub/internal/repository"
	"forumhub/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const startupTimeout = 15 * time.Second

// Repositories groups the stores the services are built on.
type Repositories struct {
	Posts         repository.PostRepository
	Users         repository.UserRepository
	Comments      repository.CommentRepository
	Reports       repository.ReportRepository
	Tags          repository.TagRepository
	Announcements repository.AnnouncementRepository
}

// NewRepositories binds every repository to db.
func NewRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Posts:         repository.NewPostRepository(db),
		Users:         repository.NewUserRepository(db),
		Comments:      repository.NewCommentRepository(db),
		Reports:       repository.NewReportRepository(db),
		Tags:          repository.NewTagRepository(db),
		Announcements: repository.NewAnnouncementRepository(db),
	}
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *mongo.Database
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	enforcer    *authz.Enforcer
	revocations *auth.RevocationStore
	limiter     *middleware.Limiter
	hub         *notifications.Hub
	notifier    *notifications.Notifier

	authService         *service.AuthService
	postService         *service.PostService
	userService         *service.UserService
	commentService      *service.CommentService
	reportService       *service.ReportService
	tagService          *service.TagService
	announcementService *service.AnnouncementService
	adminService        *service.AdminService
}

// NewServer connects to MongoDB and Redis and builds the server.
// A failure to reach MongoDB or to build its required indexes is returned.
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("index setup failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes MongoDB and Redis.
func NewServerWithDeps(cfg *config.Config, db *mongo.Database, redisClient *redis.Client) (*Server, error) {
	return newServer(cfg, db, NewRepositories(db), redisClient)
}

func newServer(cfg *config.Config, db *mongo.Database, repos Repositories, redisClient *redis.Client) (*Server, error) {
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return nil, fmt.Errorf("authorization policy: %w", err)
	}

	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	tokens := auth.NewTokenManager(cfg.JWTSecret, ttl)

	hub := notifications.NewHub()
	notifier := notifications.NewNotifier(redisClient, hub)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("forumhub-api"),
		enforcer:       enforcer,
		revocations:    auth.NewRevocationStore(redisClient),
		limiter:        middleware.NewLimiter(redisClient, cfg.Env),
		hub:            hub,
		notifier:       notifier,

		authService:         service.NewAuthService(repos.Users, tokens),
		postService:         service.NewPostService(repos.Posts),
		userService:         service.NewUserService(repos.Users),
		commentService:      service.NewCommentService(repos.Comments, repos.Reports, repos.Posts),
		reportService:       service.NewReportService(repos.Reports, repos.Comments),
		tagService:          service.NewTagService(repos.Tags, repos.Posts),
		announcementService: service.NewAnnouncementService(repos.Announcements, notifier),
		adminService: service.NewAdminService(repos.Posts, repos.Users, repos.Comments,
			repos.Reports, repos.Tags, repos.Announcements),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagates request id and trace id into the request context for logging.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	// Global limit of 100 requests per minute per IP.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  models.CodeRateLimited,
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/", s.ReadinessCheck)
	api.Get("/swagger/*", swagger.HandlerDefault)

	authed := s.AuthRequired()

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", s.limiter.Handler(middleware.QuotaRegister), s.Register)
	authRoutes.Post("/login", s.limiter.Handler(middleware.QuotaLogin), s.Login)
	authRoutes.Post("/social", s.limiter.Handler(middleware.QuotaSocialLogin), s.SocialLogin)
	authRoutes.Post("/logout", authed, s.Logout)
	authRoutes.Get("/me", authed, s.Authorize("profile", "read"), s.Me)

	// Posts: specific paths before /:id
	posts := api.Group("/posts")
	posts.Get("/", s.GetPosts)
	posts.Get("/search", s.SearchPosts)
	posts.Get("/featured", s.highlights(repository.ViewFeatured))
	posts.Get("/recent", s.highlights(repository.ViewRecent))
	posts.Get("/trending", s.highlights(repository.ViewTrending))
	posts.Get("/popular", s.highlights(repository.ViewPopular))
	posts.Get("/user/:email", s.GetPostsByAuthor)
	posts.Get("/count/:email", s.CountPostsByAuthor)
	posts.Get("/:id/comments", s.GetLegacyComments)
	posts.Get("/:id", s.GetPost)
	posts.Post("/", authed, s.Authorize("posts", "create"),
		s.limiter.Handler(middleware.QuotaCreatePost), s.CreatePost)
	posts.Patch("/:id/vote", authed, s.Authorize("posts", "vote"), s.VotePost)
	posts.Patch("/:id/featured", authed, s.Authorize("posts", "feature"), s.SetPostFeatured)
	posts.Post("/:id/comments", authed, s.Authorize("posts", "comment"), s.AddLegacyComment)
	posts.Delete("/:id", authed, s.Authorize("posts", "delete"), s.DeletePost)

	// Users
	users := api.Group("/users")
	users.Post("/", s.limiter.Handler(middleware.QuotaUpsertUser), s.UpsertUser)
	users.Get("/leaderboard", s.Leaderboard)
	users.Get("/membership/:email", s.GetMembership)
	users.Get("/admin-check/:email", s.AdminCheck)
	users.Get("/profile/:email", authed, s.Authorize("profile", "read"), s.GetProfile)
	users.Patch("/membership/:email", authed, s.Authorize("membership", "purchase"), s.GrantMembershipByEmail)
	users.Get("/", authed, s.Authorize("users", "list"), s.ListUsers)
	users.Delete("/:id", authed, s.Authorize("users", "delete"), s.DeleteUser)
	users.Patch("/:id/admin", authed, s.Authorize("users", "promote"), s.PromoteUser)
	users.Patch("/:id/membership", authed, s.Authorize("users", "grant"), s.GrantMembership)
	users.Patch("/:id/warn", authed, s.Authorize("users", "warn"), s.WarnUser)

	// Comments and reports
	comments := api.Group("/comments")
	comments.Get("/post/:postId", s.GetComments)
	comments.Get("/count/:postId", s.CountComments)
	comments.Post("/", authed, s.Authorize("comments", "create"),
		s.limiter.Handler(middleware.QuotaCreateComment), s.CreateComment)
	comments.Delete("/:id", authed, s.Authorize("comments", "delete"), s.DeleteComment)

	api.Post("/reports", authed, s.Authorize("reports", "create"),
		s.limiter.Handler(middleware.QuotaCreateReport), s.CreateReport)

	// Tags
	tags := api.Group("/tags")
	tags.Get("/", s.GetTags)
	tags.Get("/derived", s.GetDerivedTags)
	tags.Post("/", authed, s.Authorize("tags", "create"), s.CreateTag)
	tags.Delete("/:id", authed, s.Authorize("tags", "delete"), s.DeleteTag)

	// Announcements
	announcements := api.Group("/announcements")
	announcements.Get("/", s.GetAnnouncements)
	announcements.Get("/count", s.CountAnnouncements)
	announcements.Post("/", authed, s.Authorize("announcements", "create"), s.CreateAnnouncement)
	announcements.Delete("/:id", authed, s.Authorize("announcements", "delete"), s.DeleteAnnouncement)

	api.Get("/ws/announcements", s.requireUpgrade, s.AnnouncementStream())

	// Admin console
	admin := api.Group("/admin", authed)
	admin.Get("/stats", s.Authorize("admin", "stats"), s.AdminStats)
	admin.Get("/users", s.Authorize("users", "list"), s.ListUsers)
	admin.Get("/reported-comments", s.Authorize("reports", "list"), s.ReportedComments)
	admin.Delete("/reports/:id", s.Authorize("reports", "dismiss"), s.DismissReport)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck pings MongoDB and, when configured, Redis.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unavailable"
	} else if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional; only a configured but unreachable Redis fails readiness.
	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the Fiber app, starts the announcement subscriber and listens.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := fiber.New(fiber.Config{
		AppName:      "forumhub API",
		BodyLimit:    1024 * 1024,
		ErrorHandler: errorHandler,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	if err := s.notifier.Start(s.shutdownCtx); err != nil {
		middleware.Logger.Warn("announcement subscriber unavailable, using local delivery only", "error", err)
	}

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down announcement hub", "error", err)
	}

	if s.db != nil {
		if err := database.Close(ctx, s.db); err != nil {
			middleware.Logger.Error("error closing MongoDB client", "error", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", "error", err)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
