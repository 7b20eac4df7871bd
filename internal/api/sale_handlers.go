package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
)

// advisory is the wallet-brand notice for the wallet named in the "wallet" query parameter.
func (s *APIServer) advisory(c *fiber.Ctx) string {
	cfg := s.services.Config
	return services.WalletAdvisory(cfg.Production, cfg.PreferredWallet, c.Query("wallet"))
}

func (s *APIServer) handleGetSale(c *fiber.Ctx) error {
	info, err := s.services.Sale.Snapshot(c.UserContext(), nil)
	if err != nil {
		return s.writeError(c, err)
	}

	response := fiber.Map{
		"sale":    info,
		"display": services.DisplaySale(info),
	}
	if advisory := s.advisory(c); advisory != "" {
		response["advisory"] = advisory
	}
	return c.JSON(response)
}

func (s *APIServer) handleGetUserPosition(c *fiber.Ctx) error {
	account, ok := addressParam(c)
	if !ok {
		return badRequest(c, "Invalid address")
	}

	info, err := s.services.Sale.Snapshot(c.UserContext(), &account)
	if err != nil {
		return s.writeError(c, err)
	}
	states, err := s.services.Transactions.ActionStates(account.Hex())
	if err != nil {
		return s.writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"sale":      info,
		"display":   services.DisplaySale(info),
		"user":      services.DisplayUser(info),
		"in_flight": states,
	})
}

func (s *APIServer) handleGetUserActions(c *fiber.Ctx) error {
	account, ok := addressParam(c)
	if !ok {
		return badRequest(c, "Invalid address")
	}
	amount := c.Query("amount")

	info, err := s.services.Sale.Snapshot(c.UserContext(), &account)
	if err != nil {
		return s.writeError(c, err)
	}
	states, err := s.services.Transactions.ActionStates(account.Hex())
	if err != nil {
		return s.writeError(c, err)
	}

	response := fiber.Map{
		"deposit": services.DepositAction(services.DepositGuardInput{
			Account:       &account,
			LPToken:       info.LPToken,
			Amount:        amount,
			Balance:       info.LPTokenBalance,
			Allowance:     info.LPTokenAllowance,
			ApproveStatus: states[models.TransactionTypeApprove],
			DepositStatus: states[models.TransactionTypeDeposit],
		}),
		"claim": services.ClaimAction(services.ClaimGuardInput{
			Status:      info.Status,
			UserInfo:    info.UserInfo,
			ClaimStatus: states[models.TransactionTypeClaim],
		}),
		"in_flight": states,
	}
	if estimate := services.DepositEstimateUSD(amount, info.LPTokenUSD); estimate != nil {
		response["deposit_usd"] = estimate
	}
	if advisory := s.advisory(c); advisory != "" {
		response["advisory"] = advisory
	}
	return c.JSON(response)
}

func (s *APIServer) handleListUserSessions(c *fiber.Ctx) error {
	account, ok := addressParam(c)
	if !ok {
		return badRequest(c, "Invalid address")
	}

	sessions, err := s.services.Transactions.ListSessionsByAccount(account.Hex())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"sessions": sessions,
		"total":    len(sessions),
	})
}
