// Package server exposes the catalog and blog services over HTTP.
package server

import (
	"context"
	"fmt"
	"time"

	_ "folio/docs" // swagger docs
	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/featureflags"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/repository"
	"folio/internal/service"
	"folio/internal/validation"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager

	bookService    *service.BookService
	authorService  *service.AuthorService
	libraryService *service.LibraryService
	postService    *service.PostService
	commentService *service.CommentService
	tagService     *service.TagService
	profileService *service.ProfileService
}

// NewServer connects to the database and Redis and builds a Server.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil; caching and rate limiting are then skipped.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("folio-api"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
	}

	bookCache := func() bool {
		return cache.GetClient() != nil && s.featureFlags.EnabledGlobally(featureflags.BookCache)
	}

	books := repository.NewBookRepository(db, bookCache)
	authors := repository.NewAuthorRepository(db)
	libraries := repository.NewLibraryRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	tags := repository.NewTagRepository(db)
	profiles := repository.NewProfileRepository(db)

	tx := database.NewTransactor(db)
	valid := validation.New()

	s.bookService = service.NewBookService(books, authors, tx, valid)
	s.authorService = service.NewAuthorService(authors, tx, valid)
	s.libraryService = service.NewLibraryService(libraries, books, tx, valid)
	s.postService = service.NewPostService(posts, tags, tx, valid)
	s.commentService = service.NewCommentService(comments, posts, tx, valid)
	s.tagService = service.NewTagService(tags, tx, valid)
	s.profileService = service.NewProfileService(profiles, tx, valid)

	return s, nil
}

// NewApp returns a Fiber app with the shared error handler.
func NewApp() *fiber.App {
	return fiber.New(fiber.Config{
		AppName: "Folio API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", "error", err)
			return models.RespondWithError(c, models.NewInternalError(err))
		},
	})
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.ContentSecurityPolicy(s.config.CSPPolicy))

	// CORS runs before anything that can short-circuit so error responses
	// still carry the headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		ExposeHeaders: "X-Total-Count, X-Trace-ID",
		MaxAge:        86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
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

	app.Use(middleware.OptionalAuth)
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.StructuredLogger())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	writes := middleware.WriteLimit(s.redis, middleware.Quota{
		Name:   "writes",
		Limit:  s.config.WriteRateLimit,
		Window: time.Duration(s.config.WriteRateWindowSeconds) * time.Second,
	})

	books := api.Group("/books", writes)
	books.Get("/", s.ListBooks)
	books.Post("/", s.CreateBook)
	books.Get("/:id", s.GetBook)
	books.Put("/:id", s.UpdateBook)
	books.Patch("/:id", s.UpdateBook)
	books.Delete("/:id", s.DeleteBook)

	authors := api.Group("/authors", writes)
	authors.Get("/", s.ListAuthors)
	authors.Post("/", s.CreateAuthor)
	authors.Get("/:id", s.GetAuthor)
	authors.Put("/:id", s.UpdateAuthor)
	authors.Patch("/:id", s.UpdateAuthor)
	authors.Delete("/:id", s.DeleteAuthor)

	libraries := api.Group("/libraries", writes)
	libraries.Get("/", s.ListLibraries)
	libraries.Post("/", s.CreateLibrary)
	libraries.Get("/:id", s.GetLibrary)
	libraries.Put("/:id", s.UpdateLibrary)
	libraries.Patch("/:id", s.UpdateLibrary)
	libraries.Delete("/:id", s.DeleteLibrary)

	posts := api.Group("/posts", writes)
	posts.Get("/", s.ListPosts)
	posts.Post("/", s.CreatePost)
	// nested comment routes before the generic /:id routes
	posts.Get("/:id/comments", s.ListComments)
	posts.Post("/:id/comments", s.CreateComment)
	posts.Get("/:id/comments/:commentId", s.GetComment)
	posts.Put("/:id/comments/:commentId", s.UpdateComment)
	posts.Patch("/:id/comments/:commentId", s.UpdateComment)
	posts.Delete("/:id/comments/:commentId", s.DeleteComment)
	posts.Get("/:id", s.GetPost)
	posts.Put("/:id", s.UpdatePost)
	posts.Patch("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	tags := api.Group("/tags", writes)
	tags.Get("/", s.ListTags)
	tags.Post("/", s.CreateTag)
	tags.Get("/:id", s.GetTag)
	tags.Delete("/:id", s.DeleteTag)

	api.Get("/features", s.GetFeatureFlags)

	profile := api.Group("/profile", middleware.AuthRequired, writes)
	profile.Get("/me", s.GetMyProfile)
	profile.Put("/me", s.UpdateMyProfile)
	profile.Patch("/me", s.UpdateMyProfile)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: an
// unconfigured client does not fail readiness, an unreachable one does.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the app and blocks serving on the configured port.
func (s *Server) Start() error {
	s.app = NewApp()
	s.SetupMiddleware(s.app)
	s.SetupRoutes(s.app)

	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
