package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/shopspring/decimal"
)

func (s *APIServer) resolveToken(c *fiber.Ctx) (*models.TokenDescriptor, error) {
	address, ok := addressParam(c)
	if !ok {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Invalid address")
	}
	chain, err := s.services.Chains.GetActiveChain()
	if err != nil {
		return nil, err
	}
	chainID, err := chain.ChainIDUint64()
	if err != nil {
		return nil, err
	}

	token := s.services.Tokens.Resolve(c.UserContext(), chainID, address)
	if token == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Chain is not configured")
	}
	return token, nil
}

func (s *APIServer) tokenError(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
		})
	}
	return s.writeError(c, err)
}

func (s *APIServer) handleGetToken(c *fiber.Ctx) error {
	token, err := s.resolveToken(c)
	if err != nil {
		return s.tokenError(c, err)
	}
	return c.JSON(token)
}

func (s *APIServer) handleGetPrice(c *fiber.Ctx) error {
	token, err := s.resolveToken(c)
	if err != nil {
		return s.tokenError(c, err)
	}

	var price *decimal.Decimal
	if !token.Provisional {
		price = s.services.Prices.GetUSDPrice(c.UserContext(), *token)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"usd":   price,
	})
}
