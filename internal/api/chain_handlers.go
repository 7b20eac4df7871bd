package api

import (
	"github.com/gofiber/fiber/v2"
)

func (s *APIServer) handleListChains(c *fiber.Ctx) error {
	chains, err := s.services.Chains.ListChains()
	if err != nil {
		return s.writeError(c, err)
	}

	response := fiber.Map{
		"chains": chains,
		"total":  len(chains),
	}
	for _, chain := range chains {
		if chain.IsActive {
			response["active_chain"] = chain
			break
		}
	}
	return c.JSON(response)
}

func (s *APIServer) handleSelectChain(c *fiber.Ctx) error {
	chain, err := s.services.Chains.SetActiveChainByNetworkID(c.Params("chain_id"))
	if err != nil {
		return s.writeError(c, err)
	}
	s.services.Sale.Invalidate()
	return c.JSON(chain)
}
