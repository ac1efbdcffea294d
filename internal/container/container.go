package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	database "github.com/FACorreiaa/devconnector-api/app/db"
	"github.com/FACorreiaa/devconnector-api/app/observability/metrics"
	"github.com/FACorreiaa/devconnector-api/config"
	"github.com/FACorreiaa/devconnector-api/internal/api/auth"
	"github.com/FACorreiaa/devconnector-api/internal/api/github"
	"github.com/FACorreiaa/devconnector-api/internal/api/posts"
	"github.com/FACorreiaa/devconnector-api/internal/api/profiles"
	"github.com/FACorreiaa/devconnector-api/internal/router"
)

// Repositories is the storage backend the services run on.
type Repositories struct {
	Auth     auth.AuthRepo
	Posts    posts.PostRepo
	Profiles profiles.ProfileRepo
}

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *slog.Logger
	Metrics        *metrics.AppMetrics
	Pool           *pgxpool.Pool
	Mongo          *mongo.Client
	Tokens         auth.TokenService
	AuthHandler    *auth.AuthHandler
	PostHandler    *posts.PostHandler
	ProfileHandler *profiles.HandlerImpl
	GithubHandler  *github.Handler
}

// NewContainer opens the configured storage backend and wires every
// component on top of it.
func NewContainer(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics, logger *slog.Logger) (*Container, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		return newPostgresContainer(ctx, cfg, m, logger)
	case config.DriverMongo:
		return newMongoContainer(ctx, cfg, m, logger)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func newPostgresContainer(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}
	if err := database.WaitForDB(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}
	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repos := Repositories{
		Auth:     auth.NewPostgresAuthRepo(pool, logger),
		Posts:    posts.NewPostgresPostRepo(pool, logger),
		Profiles: profiles.NewPostgresProfileRepo(pool, logger),
	}
	c := Wire(cfg, repos, github.NewClient(cfg.Github, logger), m, logger)
	c.Pool = pool
	return c, nil
}

func newMongoContainer(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics, logger *slog.Logger) (*Container, error) {
	client, db, err := database.InitMongo(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to mongo", slog.Any("error", err))
		return nil, err
	}
	if err := database.WaitForMongo(ctx, client, logger); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db, logger); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	repos := Repositories{
		Auth:     auth.NewMongoAuthRepo(db, logger),
		Posts:    posts.NewMongoPostRepo(db, logger),
		Profiles: profiles.NewMongoProfileRepo(db, logger),
	}
	c := Wire(cfg, repos, github.NewClient(cfg.Github, logger), m, logger)
	c.Mongo = client
	return c, nil
}

// Wire builds services and handlers over repos. It opens nothing.
func Wire(cfg *config.Config, repos Repositories, gh github.Client, m *metrics.AppMetrics, logger *slog.Logger) *Container {
	tokens := auth.NewTokenService(cfg.JWT)

	authService := auth.NewAuthService(repos.Auth, tokens, m, logger)
	postService := posts.NewPostService(repos.Posts, repos.Auth, m, logger)
	profileService := profiles.NewProfileService(repos.Profiles, repos.Auth, postService, m, logger)

	return &Container{
		Config:         cfg,
		Logger:         logger,
		Metrics:        m,
		Tokens:         tokens,
		AuthHandler:    auth.NewAuthHandler(authService, logger),
		PostHandler:    posts.NewPostHandler(postService, logger),
		ProfileHandler: profiles.NewHandlerImpl(profileService, logger),
		GithubHandler:  github.NewHandler(gh, logger),
	}
}

// Router returns the HTTP handler tree for the API server.
func (c *Container) Router() chi.Router {
	return router.SetupRouter(&router.Config{
		Logger:                 c.Logger,
		AuthHandler:            c.AuthHandler,
		PostHandler:            c.PostHandler,
		ProfileHandler:         c.ProfileHandler,
		GithubHandler:          c.GithubHandler,
		AuthenticateMiddleware: auth.Authenticate(c.Logger, c.Tokens, c.Metrics),
		AllowedOrigins:         c.Config.Server.AllowedOrigins,
		Timeout:                c.Config.Server.Timeout,
	})
}

// Close releases all resources held by the container
func (c *Container) Close(ctx context.Context) {
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.Mongo != nil {
		if err := c.Mongo.Disconnect(ctx); err != nil {
			c.Logger.Error("Failed to disconnect mongo", slog.Any("error", err))
		}
	}
}
