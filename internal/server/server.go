package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/feed"
	"taskboard/internal/handler"
	"taskboard/internal/identity"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"taskboard/internal/realtime"
	"taskboard/internal/repository"
	"taskboard/internal/store"
	"taskboard/internal/store/memory"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	Router *gin.Engine
	Engine *realtime.Engine
	Config *config.Config

	log     zerolog.Logger
	closers []func() error
}

// Deps are the collaborators the HTTP routes are built from.
type Deps struct {
	Engine          *realtime.Engine
	Issuer          *auth.Issuer
	Verifier        identity.TokenVerifier
	JoinLimiter     *middleware.RateLimiter
	CORSOrigins     []string
	StreamKeepAlive time.Duration
	Log             zerolog.Logger
}

func Init(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	s := &Server{Config: cfg, log: log}

	projects, tasks, err := s.openStores(cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	changes, err := s.openFeed(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	verifier := identity.Chain{issuer}
	if cfg.FirebaseCredentialsPath != "" {
		firebase, err := identity.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		verifier = append(verifier, firebase)
		log.Info().Msg("Firebase ID tokens accepted")
	}

	s.Engine = realtime.NewEngine(projects, tasks, changes, realtime.WithLogger(log))
	s.Router = NewRouter(Deps{
		Engine:      s.Engine,
		Issuer:      issuer,
		Verifier:    verifier,
		JoinLimiter: middleware.NewRateLimiter(cfg.JoinRatePerMinute, cfg.JoinRatePerMinute),
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})
	return s, nil
}

func (s *Server) openStores(cfg *config.Config) (store.ProjectStore, store.TaskStore, error) {
	if cfg.StoreDriver == config.DriverMemory {
		s.log.Warn().Msg("Using in-memory store; data is lost on restart")
		return memory.NewProjectStore(), memory.NewTaskStore(), nil
	}

	if err := repository.Migrate(cfg.DatabaseURL(), s.log); err != nil {
		return nil, nil, err
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to DB: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	s.closers = append(s.closers, sqlDB.Close)
	s.log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("Connected to database")

	return repository.NewProjectRepository(db), repository.NewTaskRepository(db), nil
}

func (s *Server) openFeed(ctx context.Context, cfg *config.Config) (store.Feed, error) {
	switch cfg.FeedDriver {
	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s.closers = append(s.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		s.log.Info().Str("addr", cfg.RedisAddr).Msg("Change feed on redis")
		return feed.NewRedisFeed(client, s.log), nil

	case config.DriverPostgres:
		pool, err := feed.NewPool(ctx, feed.PoolConfig{ConnString: cfg.DatabaseURL()})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, func() error { pool.Close(); return nil })
		s.log.Info().Str("channel", feed.NotifyChannel).Msg("Change feed on postgres")
		changes := feed.NewPostgresFeed(pool, s.log)
		s.closers = append(s.closers, changes.Close)
		return changes, nil

	default:
		changes := memory.NewFeed()
		s.closers = append(s.closers, changes.Close)
		return changes, nil
	}
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Requests(d.Log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	if len(d.CORSOrigins) == 0 || (len(d.CORSOrigins) == 1 && d.CORSOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = d.CORSOrigins
	}
	r.Use(cors.New(corsConfig))

	sessionHandler := handler.NewSessionHandler(d.Issuer)
	projectHandler := handler.NewProjectHandler(d.Engine)
	taskHandler := handler.NewTaskHandler(d.Engine)
	boardHandler := handler.NewBoardHandler(d.Engine)
	streamHandler := handler.NewStreamHandler(d.Engine, d.StreamKeepAlive)

	// Public routes
	r.GET("/healthz", handler.Health)
	r.POST("/session", sessionHandler.Create)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require a session or Firebase token
	authorized := r.Group("/")
	authorized.Use(middleware.AuthMiddleware(d.Verifier))
	{
		authorized.GET("/projects", projectHandler.List)
		authorized.POST("/projects", projectHandler.Create)
		authorized.POST("/projects/join", d.JoinLimiter.Middleware(), projectHandler.Join)
		authorized.GET("/projects/:id", projectHandler.Get)

		authorized.GET("/projects/:id/tasks", taskHandler.List)
		authorized.POST("/projects/:id/tasks", taskHandler.Create)
		authorized.PUT("/projects/:id/tasks/:task_id", taskHandler.Update)
		authorized.DELETE("/projects/:id/tasks/:task_id", taskHandler.Delete)
		authorized.PATCH("/projects/:id/tasks/:task_id/status", taskHandler.SetStatus)

		authorized.GET("/projects/:id/board", boardHandler.Board)
		authorized.POST("/projects/:id/board/move", boardHandler.Move)
		authorized.GET("/projects/:id/timeline", boardHandler.Timeline)

		authorized.GET("/projects/:id/stream", streamHandler.Project)
		authorized.GET("/me/projects/stream", streamHandler.MemberProjects)
	}
	return r
}

// Run serves until ctx ends or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Streams derive from baseCtx so that shutdown can end them.
	baseCtx, cancelStreams := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelStreams()

	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Router,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		ReadHeaderTimeout: time.Second,
		IdleTimeout:       5 * time.Minute,
		MaxHeaderBytes:    8 * 1024,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("port", s.Config.ServerPort).Msg("Server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	s.log.Info().Msg("Shutting down server...")
	cancelStreams()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info().Msg("Server exited properly")
	return nil
}

// Close releases the feed and database connections in reverse order of opening.
func (s *Server) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	s.closers = nil
	return errors.Join(errs...)
}
