package api

import (
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rxtech-lab/ido-dashboard/internal/api/middleware"
	"github.com/rxtech-lab/ido-dashboard/internal/mcp"
	"github.com/rxtech-lab/ido-dashboard/internal/server"
	"github.com/sirupsen/logrus"
)

const mcpEndpointPath = "/mcp"

type APIServer struct {
	app       *fiber.App
	services  *server.Services
	mcpServer *mcp.MCPServer
	port      int
	log       *logrus.Entry
}

func NewAPIServer(services *server.Services) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
		Output:     logrus.StandardLogger().Writer(),
	}))
	app.Use(middleware.MetricsMiddleware(middleware.MetricsConfig{
		Skip: func(c *fiber.Ctx) bool { return c.Path() == "/metrics" },
	}))

	s := &APIServer{
		app:      app,
		services: services,
		log:      logrus.WithField("component", "api"),
	}
	s.setupRoutes()
	return s
}

func (s *APIServer) setupRoutes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := s.app.Group("/api")

	// Chains
	api.Get("/chains", s.handleListChains)
	api.Post("/chains/:chain_id/select", s.handleSelectChain)

	// Sale
	api.Get("/sale", s.handleGetSale)
	api.Get("/sale/user/:address", s.handleGetUserPosition)
	api.Get("/sale/user/:address/actions", s.handleGetUserActions)
	api.Get("/sale/user/:address/sessions", s.handleListUserSessions)

	// Transaction sessions
	api.Post("/actions/:action", s.handleCreateAction)
	api.Get("/tx/:session_id", s.handleGetSession)
	api.Post("/tx/:session_id/submit", s.handleSubmitTransaction)
	api.Post("/tx/:session_id/fail", s.handleFailTransaction)

	// Tokens
	api.Get("/token/:address", s.handleGetToken)
	api.Get("/price/:address", s.handleGetPrice)
}

// EnableStreamableHttp serves the MCP server over streamable HTTP at /mcp.
// SetMCPServer must be called first.
func (s *APIServer) EnableStreamableHttp() {
	if s.mcpServer == nil {
		s.log.Warn("streamable HTTP requested without an MCP server")
		return
	}
	handler := adaptor.HTTPHandler(s.mcpServer.StreamableHTTPHandler(mcpEndpointPath))
	s.app.All(mcpEndpointPath, handler)
	s.app.All(mcpEndpointPath+"/*", handler)
}

// Start starts the server on port, or on a random available port when port is nil.
func (s *APIServer) Start(port *int) (int, error) {
	if port == nil {
		listener, err := net.Listen("tcp", ":0")
		if err != nil {
			return 0, fmt.Errorf("failed to find available port: %w", err)
		}
		s.port = listener.Addr().(*net.TCPAddr).Port
		// Close the listener so Fiber can use it
		listener.Close()
	} else {
		s.port = *port
	}

	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", s.port)); err != nil {
			s.log.WithError(err).Error("API server stopped")
		}
	}()

	return s.port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

func (s *APIServer) GetFiberApp() *fiber.App {
	return s.app
}

// SetMCPServer sets the MCP server instance for accessing MCP methods
func (s *APIServer) SetMCPServer(mcpServer *mcp.MCPServer) {
	s.mcpServer = mcpServer
}

// GetMCPServer returns the MCP server instance
func (s *APIServer) GetMCPServer() *mcp.MCPServer {
	return s.mcpServer
}
