package main

import (
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/ido-dashboard/internal/api"
	"github.com/rxtech-lab/ido-dashboard/internal/config"
	"github.com/rxtech-lab/ido-dashboard/internal/server"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/rxtech-lab/ido-dashboard/internal/testutil"
	"github.com/stretchr/testify/suite"
)

type StdioServerTestSuite struct {
	suite.Suite
	apiServer *api.APIServer
	services  *server.Services
	port      int
}

func (suite *StdioServerTestSuite) SetupSuite() {
	start := time.Now().Add(-time.Hour)
	backend := testutil.NewBackend()
	backend.DeploySale(testutil.DefaultSaleFixture(uint64(start.Unix()), uint64(start.Add(24*time.Hour).Unix())))
	backend.DeployERC20(testutil.LPTokenAddress, "Wrapped Ether", "WETH", 18)
	backend.DeployERC20(testutil.OfferingTokenAddress, "Launch", "LCH", 18)

	cfg := &config.Config{
		SaleAddress:     testutil.SaleAddress.Hex(),
		ChainID:         31337,
		PollInterval:    time.Hour,
		PriceCacheTTL:   time.Minute,
		PriceAPIBaseURL: "http://127.0.0.1:1",
		LogLevel:        "info",
		SQLitePath:      filepath.Join(suite.T().TempDir(), "ido-dashboard.db"),
		Chains: []config.ChainConfig{
			{
				ChainID:        31337,
				Name:           "Anvil",
				RPC:            "http://localhost:8545",
				NativeCurrency: config.NativeCurrencyConfig{Name: "Ether", Symbol: "ETH", Decimals: 18},
			},
		},
	}

	apiServer, svc, port, err := configureAndStartServer(cfg, server.Options{
		Backends: services.StaticBackendProvider(backend),
	}, 0)
	suite.Require().NoError(err)
	suite.Require().NotZero(port, "Port should not be 0")

	suite.apiServer = apiServer
	suite.services = svc
	suite.port = port

	// Wait for server to be ready
	time.Sleep(100 * time.Millisecond)
}

func (suite *StdioServerTestSuite) TearDownSuite() {
	if suite.apiServer != nil {
		suite.apiServer.Shutdown()
	}
	if suite.services != nil {
		suite.services.Close()
	}
}

func (suite *StdioServerTestSuite) getBaseURL() string {
	return fmt.Sprintf("http://localhost:%d", suite.port)
}

func (suite *StdioServerTestSuite) get(path string) int {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(suite.getBaseURL() + path)
	suite.Require().NoError(err)
	_ = resp.Body.Close()
	return resp.StatusCode
}

func (suite *StdioServerTestSuite) TestHealthEndpointWorks() {
	suite.Equal(http.StatusOK, suite.get("/health"), "Health endpoint should return 200 OK")
}

func (suite *StdioServerTestSuite) TestDashboardRoutes() {
	testRoutes := []struct {
		path   string
		status int
	}{
		{"/api/chains", http.StatusOK},
		{"/api/sale", http.StatusOK},
		{"/api/sale/user/" + testutil.UserAddress.Hex(), http.StatusOK},
		{"/api/tx/missing-session", http.StatusNotFound},
		{"/metrics", http.StatusOK},
	}

	for _, testRoute := range testRoutes {
		suite.Equal(testRoute.status, suite.get(testRoute.path), "GET %s", testRoute.path)
	}
}

func (suite *StdioServerTestSuite) TestNoMCPEndpointsInStdioMode() {
	for _, path := range []string{"/mcp", "/mcp/status"} {
		suite.Equal(http.StatusNotFound, suite.get(path),
			"MCP endpoint %s should not exist in stdio mode", path)
	}
}

func (suite *StdioServerTestSuite) TestMCPServerAttached() {
	suite.NotNil(suite.apiServer.GetMCPServer())
	suite.Equal(suite.port, suite.apiServer.GetPort())
}

func TestStdioServerTestSuite(t *testing.T) {
	suite.Run(t, new(StdioServerTestSuite))
}
