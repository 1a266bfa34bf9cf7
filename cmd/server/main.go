package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/payment-gateway/internal/auth"
	"github.com/hongminglow/payment-gateway/internal/config"
	"github.com/hongminglow/payment-gateway/internal/logging"
	"github.com/hongminglow/payment-gateway/internal/payments/razorpay"
	"github.com/hongminglow/payment-gateway/internal/server"
	"github.com/hongminglow/payment-gateway/internal/storage"
	"github.com/hongminglow/payment-gateway/internal/storage/memory"
	"github.com/hongminglow/payment-gateway/internal/storage/postgres"
)

func main() {
	envErr := loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		fatal("load config: %v", err)
	}

	log, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fatal("init logger: %v", err)
	}
	ctx := context.Background()
	if envErr != nil {
		log.Info(ctx, "no .env file found; relying on existing environment")
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "init storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	if err != nil {
		log.Error(ctx, "init token manager", "error", err)
		os.Exit(1)
	}

	processor, err := razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret, cfg.Razorpay.BaseURL, cfg.Razorpay.Timeout)
	if err != nil {
		log.Error(ctx, "init payment processor", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg, server.Deps{
		Store:     store,
		Tokens:    tokens,
		Hasher:    auth.NewPasswordHasher(cfg.BcryptCost),
		Processor: processor,
		Logger:    log,
	})

	go func() {
		log.Info(ctx, "payment gateway listening", "addr", cfg.HTTPAddress(), "storage", cfg.StorageDriver)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error(ctx, "graceful shutdown error", "error", err)
	}
	log.Info(ctx, "server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.StorageMemory {
		return memory.NewStore(), nil
	}
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func loadLocalEnv() error {
	return godotenv.Load()
}

// fatal reports errors that occur before the structured logger exists.
func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
