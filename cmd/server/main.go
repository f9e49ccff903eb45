package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrskwiw/QuizSquirrelProfile-sub001/internal/app/runtime"
	"github.com/mrskwiw/QuizSquirrelProfile-sub001/pkg/logger"
)

func main() {
	app, err := runtime.NewApplication()
	if err != nil {
		logger.NewDefault("server").WithError(err).Fatal("initialise application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		logger.NewDefault("server").WithError(err).Fatal("run application")
	}

	if err := app.Shutdown(context.Background()); err != nil {
		logger.NewDefault("server").WithError(err).Error("shutdown")
		os.Exit(1)
	}
}
