package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/Arnau-Gelonch/zara-challenge/internal/config"
	apphttp "github.com/Arnau-Gelonch/zara-challenge/internal/http"
	"github.com/Arnau-Gelonch/zara-challenge/internal/http/cartcookie"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/cart"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/payments"
	"github.com/Arnau-Gelonch/zara-challenge/internal/modules/products"
	"github.com/Arnau-Gelonch/zara-challenge/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slots, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	logger.Info("slot storage ready", slog.String("driver", slots.Driver))

	client, err := products.NewClient(products.ClientConfig{
		BaseURL:    cfg.Catalog.BaseURL,
		APIKey:     cfg.Catalog.APIKey,
		Timeout:    cfg.Catalog.Timeout,
		MaxRetries: cfg.Catalog.MaxRetries,
		RatePerSec: cfg.Catalog.RatePerSec,
		Logger:     logger,
	})
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	cache := products.NewCache(client, cfg.Catalog.CacheTTL)

	sessions := cart.NewSessions(cart.SessionsConfig{
		Slots:   slots.Storage,
		Logger:  logger,
		IdleTTL: cfg.SessionIdleTTL,
	})

	cookies := cartcookie.New([]byte(cfg.Cookie.Secret), cfg.Cookie.Name, cfg.Cookie.Secure)

	r := apphttp.NewRouter(logger, apphttp.Deps{
		Products: client,
		Cache:    cache,
		Sessions: sessions,
		Cookies:  cookies,
		Payments: payments.Noop{},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server starting", slog.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return sessions.Run(gctx)
	})
	g.Go(func() error {
		t := time.NewTicker(cfg.Catalog.CacheTTL)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				cache.Purge()
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		sessions.Close()
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
	logger.Info("bye")
}

func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
