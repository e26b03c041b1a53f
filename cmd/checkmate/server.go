package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bettersg/checkmate/verdict"
	"github.com/bettersg/checkmate/verdict/cachestore"
	"github.com/bettersg/checkmate/verdict/countstore"
	"github.com/bettersg/checkmate/verdict/responses"
	"github.com/bettersg/checkmate/verdict/sender"
	"github.com/bettersg/checkmate/verdict/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	slogecho "github.com/samber/slog-echo"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Server struct {
	logger *slog.Logger
	engine *verdict.Engine
	echo   *echo.Echo
	httpd  *http.Server
}

type Config struct {
	Logger            *slog.Logger
	Bind              string
	RedisURL          string
	ResponsesFileJSON string
	SendRateLimit     int
	MinValidVotes     int
	SurveyLikelihood  float64
	SurveyQuotaDay    int
}

func NewServer(db *gorm.DB, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	repo, err := store.NewGormStore(db)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	var counters countstore.CountStore
	var cache cachestore.CacheStore
	if config.RedisURL != "" {
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %v", err)
		}

		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %v", err)
		}
		counters = cnt

		csh, err := cachestore.NewRedisCacheStore(config.RedisURL, 30*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %v", err)
		}
		cache = csh
	} else {
		counters = countstore.NewMemCountStore()
		cache = cachestore.NewMemCacheStore(5_000, 30*time.Minute)
	}

	resolver := responses.NewResolver()
	if config.ResponsesFileJSON != "" {
		if err := resolver.LoadFromFileJSON(config.ResponsesFileJSON); err != nil {
			return nil, fmt.Errorf("loading response overrides: %v", err)
		}
		logger.Info("loaded response text overrides", "path", config.ResponsesFileJSON)
	}

	thresholds := verdict.DefaultThresholds()
	if config.MinValidVotes > 0 {
		thresholds.MinValidVotes = config.MinValidVotes
	}
	if config.SurveyLikelihood > 0 {
		thresholds.SurveyLikelihood = config.SurveyLikelihood
	}
	if config.SurveyQuotaDay > 0 {
		thresholds.SurveyQuotaDay = config.SurveyQuotaDay
	}

	sendLimit := config.SendRateLimit
	if sendLimit <= 0 {
		sendLimit = 10
	}

	engine := &verdict.Engine{
		Logger:      logger,
		Submissions: repo,
		Events:      repo,
		Votes:       repo,
		Reviewers:   repo,
		Users:       repo,
		Counters:    counters,
		Cache:       cache,
		Responses:   resolver,
		Sender:      &logSender{logger: logger},
		Pacer:       rate.NewLimiter(rate.Limit(sendLimit), 1),
		Thresholds:  thresholds,
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("64K"))

	srv := &Server{
		logger: logger,
		engine: engine,
		echo:   e,
	}
	e.HTTPErrorHandler = srv.errorHandler
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           config.Bind,
		WriteTimeout:   time.Minute,
		ReadTimeout:    time.Minute,
		MaxHeaderBytes: 1 * (1024 * 1024),
	}

	e.GET("/_health", srv.HandleHealthCheck)
	e.GET("/api/checkers/:checkerID", srv.HandleGetChecker)

	return srv, nil
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

func (srv *Server) RunAPI() error {
	srv.logger.Info("starting server", "bind", srv.httpd.Addr)
	go func() {
		if err := srv.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				srv.logger.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		srv.logger.Info("received OS exit signal", "signal", sig)
		if err := srv.Shutdown(); err != nil {
			srv.logger.Error("HTTP server shutdown error", "err", err)
		}
		close(quit)
	}()
	<-quit
	srv.logger.Info("graceful shutdown complete")
	return nil
}

func (srv *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (srv *Server) Shutdown() error {
	srv.logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.httpd.Shutdown(ctx)
}

// logSender is the stand-in outbound transport: it logs instead of
// delivering. The real channel adapters (WhatsApp, Telegram) live in the
// services that embed the engine.
type logSender struct {
	logger *slog.Logger
}

func (s *logSender) SendText(ctx context.Context, to, text string) error {
	s.logger.Info("outbound message", "to", to, "text", text)
	return nil
}

func (s *logSender) SendButtons(ctx context.Context, to, text string, buttons []sender.Button) error {
	s.logger.Info("outbound message", "to", to, "text", text, "buttons", len(buttons))
	return nil
}

func (s *logSender) SendMenu(ctx context.Context, to, text, buttonLabel string, rows []sender.MenuRow) error {
	s.logger.Info("outbound message", "to", to, "text", text, "menuRows", len(rows))
	return nil
}
