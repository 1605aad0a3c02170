package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/preston-bernstein/nba-stream-service/internal/config"
	"github.com/preston-bernstein/nba-stream-service/internal/logging"
	"github.com/preston-bernstein/nba-stream-service/internal/server"
)

const appVersion = "dev"

func loggingConfig() logging.Config {
	return logging.Config{
		Level:      os.Getenv("LOG_LEVEL"),
		Format:     os.Getenv("LOG_FORMAT"),
		Service:    "nba-stream-service",
		Version:    appVersion,
		File:       os.Getenv("LOG_FILE"),
		MaxSizeMB:  intEnv("LOG_FILE_MAX_SIZE_MB"),
		MaxBackups: intEnv("LOG_FILE_MAX_BACKUPS"),
	}
}

func intEnv(key string) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}

	cfg := config.Load()
	logger := logging.NewLogger(loggingConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, logger)
	srv.Run(ctx, stop)
}
