package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/paintqueue/paintqueue-backend/internal/cli"
	"github.com/paintqueue/paintqueue-backend/pkg/config"
	"github.com/paintqueue/paintqueue-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "queuectl",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	env := cli.NewEnv(cfg, logg, os.Stdout)
	err = cli.RootCmd(env).ExecuteContext(context.Background())
	if closeErr := env.Close(); closeErr != nil {
		logg.Error(context.Background(), "error closing database", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
