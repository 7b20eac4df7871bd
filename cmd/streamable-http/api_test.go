package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
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

type StreamableHTTPTestSuite struct {
	suite.Suite
	apiServer *api.APIServer
	services  *server.Services
}

func (suite *StreamableHTTPTestSuite) SetupSuite() {
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
		Port:            8080,
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

	apiServer, svc, err := configureServer(cfg, server.Options{
		Backends: services.StaticBackendProvider(backend),
	}, cfg.Port)
	suite.Require().NoError(err)

	suite.apiServer = apiServer
	suite.services = svc
}

func (suite *StreamableHTTPTestSuite) TearDownSuite() {
	if suite.services != nil {
		suite.services.Close()
	}
}

func (suite *StreamableHTTPTestSuite) postMCP(path string, request map[string]interface{}) (*http.Response, []byte) {
	body, err := json.Marshal(request)
	suite.Require().NoError(err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := suite.apiServer.GetFiberApp().Test(req, 5000)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return resp, raw
}

func (suite *StreamableHTTPTestSuite) TestMCPInitialize() {
	resp, raw := suite.postMCP("/mcp", map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "initialize",
		"params": map[string]interface{}{
			"protocolVersion": "2025-03-26",
			"capabilities":    map[string]interface{}{},
			"clientInfo": map[string]interface{}{
				"name":    "test-client",
				"version": "1.0.0",
			},
		},
	})
	suite.Equal(http.StatusOK, resp.StatusCode, string(raw))

	var response struct {
		Result struct {
			ServerInfo struct {
				Name string `json:"name"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	suite.Require().NoError(json.Unmarshal(raw, &response), string(raw))
	suite.Equal("IDO Dashboard MCP Server", response.Result.ServerInfo.Name)
}

func (suite *StreamableHTTPTestSuite) TestDashboardRoutesStillServed() {
	resp, err := suite.apiServer.GetFiberApp().Test(httptest.NewRequest("GET", "/api/sale", nil), 5000)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
}

func TestStreamableHTTPTestSuite(t *testing.T) {
	suite.Run(t, new(StreamableHTTPTestSuite))
}
