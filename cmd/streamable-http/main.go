package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/rxtech-lab/ido-dashboard/internal/api"
	"github.com/rxtech-lab/ido-dashboard/internal/config"
	"github.com/rxtech-lab/ido-dashboard/internal/events"
	"github.com/rxtech-lab/ido-dashboard/internal/mcp"
	"github.com/rxtech-lab/ido-dashboard/internal/server"
	"github.com/sirupsen/logrus"
)

// configureServer builds the API server with the MCP server mounted at /mcp. The MCP tools link
// wallets to port.
func configureServer(cfg *config.Config, opts server.Options, port int) (*api.APIServer, *server.Services, error) {
	dbService, err := server.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	svc, err := server.InitializeServices(cfg, dbService, opts)
	if err != nil {
		dbService.Close()
		return nil, nil, err
	}
	server.RegisterHooks(svc.Hooks, server.InitializeHooks(svc))

	mcpServer := mcp.NewMCPServer(svc, port)
	apiServer := api.NewAPIServer(svc)
	apiServer.SetMCPServer(mcpServer)
	apiServer.EnableStreamableHttp()

	return apiServer, svc, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	cfg.ConfigureLogging()

	publisher, err := events.NewPublisher(cfg.NATSURL)
	if err != nil {
		logrus.WithError(err).Warn("Event publishing disabled")
		publisher = events.NewNoopPublisher()
	}

	apiServer, svc, err := configureServer(cfg, server.Options{Publisher: publisher}, cfg.Port)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize server")
	}

	startedPort, err := apiServer.Start(&cfg.Port)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to start API server")
	}
	logrus.WithField("port", startedPort).Info("API server started")

	svc.StartWorkers()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logrus.Info("Shutting down server...")

	if err := apiServer.Shutdown(); err != nil {
		logrus.WithError(err).Error("Error shutting down API server")
	}
	svc.Close()

	logrus.Info("Server shut down successfully")
}
