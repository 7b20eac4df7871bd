package handler

import (
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rxtech-lab/ido-dashboard/internal/api"
	"github.com/rxtech-lab/ido-dashboard/internal/config"
	"github.com/rxtech-lab/ido-dashboard/internal/server"
	"github.com/sirupsen/logrus"
)

var (
	apiServer *api.APIServer
	initOnce  sync.Once
	initErr   error
)

// Handler is the main Vercel function handler
func Handler(w http.ResponseWriter, r *http.Request) {
	initOnce.Do(func() {
		initErr = initializeAPIServer()
	})
	if initErr != nil {
		logrus.WithError(initErr).Error("Failed to initialize API server")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	adaptor.FiberApp(apiServer.GetFiberApp())(w, r)
}

func initializeAPIServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.ConfigureLogging()

	// In Vercel only /tmp is writable
	if cfg.DatabaseURL == "" && cfg.SQLitePath == "" && os.Getenv("VERCEL") == "1" {
		cfg.SQLitePath = "/tmp/ido-dashboard.db"
	}

	dbService, err := server.OpenDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	svc, err := server.InitializeServices(cfg, dbService, server.Options{})
	if err != nil {
		return err
	}
	server.RegisterHooks(svc.Hooks, server.InitializeHooks(svc))
	// sessions left confirming by an earlier instance
	if _, err := svc.ReceiptWatcher.ResumePending(); err != nil {
		logrus.WithError(err).Warn("Failed to resume confirming sessions")
	}

	apiServer = api.NewAPIServer(svc)
	apiServer.GetFiberApp().Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "IDO Dashboard API",
			"status":  "running",
			"version": "1.0.0",
		})
	})

	return nil
}
