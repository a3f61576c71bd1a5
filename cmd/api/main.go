package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tagora/backend/internal/di"
)

func main() {
	_ = godotenv.Load()

	app, cleanup, err := di.InitializeApplication()
	if err != nil {
		panic(err)
	}
	defer cleanup()

	app.Logger.Info("Starting Tagora API", "version", di.Version, "env", app.Config.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go app.Broker.Run(ctx)

	app.HealthHandler.Register(app.Server.App())
	app.MetricsHandler.Register(app.Server.App())
	app.AdminAuthHandler.Register(app.Server.App())

	go func() {
		if err := app.Server.Start(); err != nil {
			app.Logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer drainCancel()

	if err := app.Server.Shutdown(drainCtx); err != nil {
		app.Logger.Error("Server forced to shutdown", "error", err)
	}

	if err := app.Broker.WaitForDeliveries(drainCtx); err != nil {
		app.Logger.Warn("Admin token deliveries still in flight at shutdown", "error", err)
	}

	app.Logger.Info("Server stopped")
}
