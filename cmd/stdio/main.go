package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rxtech-lab/ido-dashboard/internal/api"
	"github.com/rxtech-lab/ido-dashboard/internal/config"
	"github.com/rxtech-lab/ido-dashboard/internal/events"
	"github.com/rxtech-lab/ido-dashboard/internal/mcp"
	"github.com/rxtech-lab/ido-dashboard/internal/server"
	"github.com/sirupsen/logrus"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

// configureAndStartServer wires the services, starts the HTTP API and attaches the MCP server to it.
func configureAndStartServer(cfg *config.Config, opts server.Options, port int) (*api.APIServer, *server.Services, int, error) {
	dbService, err := server.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("failed to initialize database: %w", err)
	}

	svc, err := server.InitializeServices(cfg, dbService, opts)
	if err != nil {
		dbService.Close()
		return nil, nil, 0, err
	}
	server.RegisterHooks(svc.Hooks, server.InitializeHooks(svc))

	apiServer := api.NewAPIServer(svc)

	var portPtr *int
	if port != 0 {
		portPtr = &port
	}
	startedPort, err := apiServer.Start(portPtr)
	if err != nil {
		svc.Close()
		return nil, nil, 0, err
	}

	// The MCP server links wallets to the port the API actually bound
	mcpServer := mcp.NewMCPServer(svc, startedPort)
	apiServer.SetMCPServer(mcpServer)

	return apiServer, svc, startedPort, nil
}

func main() {
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var enableLog = flag.Bool("log", false, "Enable logging output")
	flag.Parse()

	if *showVersion {
		fmt.Fprintf(os.Stderr, "IDO Dashboard MCP Server\nVersion: %s\nCommit: %s\nBuilt: %s\n", Version, CommitHash, BuildTime)
		return
	}

	if *showHelp {
		fmt.Fprintf(os.Stderr, "IDO Dashboard MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		fmt.Fprintf(os.Stderr, "  --version    Show version information\n")
		fmt.Fprintf(os.Stderr, "  --help       Show this help message\n")
		fmt.Fprintf(os.Stderr, "  --log        Enable logging output\n\n")
		fmt.Fprintf(os.Stderr, "Description:\n")
		fmt.Fprintf(os.Stderr, "  Reads an IDO sale contract, prices its tokens and prepares approve,\n")
		fmt.Fprintf(os.Stderr, "  deposit and claim transactions for an external wallet.\n\n")
		fmt.Fprintf(os.Stderr, "Database: ~/ido-dashboard.db (SQLite) unless DATABASE_URL or SQLITE_PATH is set\n")
		fmt.Fprintf(os.Stderr, "Web Interface: http://localhost:[random-port]\n")
		return
	}

	// A missing .env is fine, the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	cfg.ConfigureLogging()
	// stdout carries the MCP protocol
	logrus.SetOutput(os.Stderr)
	if !*enableLog {
		logrus.SetOutput(io.Discard)
	}

	publisher, err := events.NewPublisher(cfg.NATSURL)
	if err != nil {
		logrus.WithError(err).Warn("Event publishing disabled")
		publisher = events.NewNoopPublisher()
	}

	apiServer, svc, port, err := configureAndStartServer(cfg, server.Options{Publisher: publisher}, 0)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to start API server")
	}
	logrus.WithField("port", port).Info("API server started")

	svc.StartWorkers()

	mcpServer := apiServer.GetMCPServer()
	if mcpServer == nil {
		logrus.Fatal("MCP server not found")
	}

	go func() {
		if err := mcpServer.StartStdioServer(); err != nil {
			logrus.SetOutput(os.Stderr)
			logrus.WithError(err).Fatal("Failed to start MCP server")
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logrus.Info("Shutting down servers...")

	if err := apiServer.Shutdown(); err != nil {
		logrus.WithError(err).Error("Error shutting down API server")
	}
	svc.Close()

	logrus.Info("Servers shut down successfully")
}
