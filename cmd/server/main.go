package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/game-catalog/internal/config"
	"github.com/iliyamo/game-catalog/internal/database"
	"github.com/iliyamo/game-catalog/internal/handler"
	"github.com/iliyamo/game-catalog/internal/logger"
	"github.com/iliyamo/game-catalog/internal/middleware"
	"github.com/iliyamo/game-catalog/internal/queue"
	"github.com/iliyamo/game-catalog/internal/render"
	"github.com/iliyamo/game-catalog/internal/repository"
	"github.com/iliyamo/game-catalog/internal/router"
	"github.com/iliyamo/game-catalog/internal/service"
	"github.com/iliyamo/game-catalog/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db, cfg.DB.Driver); err != nil {
			return err
		}
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Info("redis unavailable; page cache disabled, rate limits kept in process")
	} else {
		defer rdb.Close()
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}

	cats := repository.NewCategoryRepo(db)
	games := repository.NewGameRepo(db)
	comments := repository.NewCommentRepo(db)
	users := repository.NewAdminUserRepo(db)

	opts := []service.CommentsOption{service.WithLogger(log)}
	if cfg.Events.Enabled {
		opts = append(opts, service.WithPublisher(queue.NewPublisher(cfg.Events.URL)))
		consumer := &queue.Consumer{URL: cfg.Events.URL, LogDir: cfg.Events.LogDir, Log: log}
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("comment consumer stopped", "error", err)
			}
		}()
	}
	catalog := service.NewCatalog(cats, games, cfg.RecentGamesLimit)
	commentSvc := service.NewComments(games, comments, cfg.BcryptCost, opts...)

	rdr, err := render.New(store.URL)
	if err != nil {
		return err
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb)
	limit := middleware.NewTokenBucket(cfg.RateLimit, rdb, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = rdr
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())

	mediaRoot := ""
	if cfg.Storage.Driver == "local" {
		mediaRoot = cfg.Storage.MediaRoot
	}
	router.RegisterRoutes(e, db, cfg.Storage.MediaURL, mediaRoot)
	router.RegisterPublic(e, handler.NewPublicHandler(catalog, commentSvc, cache, log), cache.Middleware(), limit)
	router.RegisterAdmin(e, handler.NewAdminHandler(cfg, users, cats, games, store, cache, log), cfg.JWTSecret, limit)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env, "tls", cfg.TLSEnabled(), "db", cfg.DB.Driver)
		if cfg.TLSEnabled() {
			errCh <- e.StartTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			errCh <- e.Start(addr)
		}
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
