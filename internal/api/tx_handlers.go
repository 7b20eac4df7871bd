package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ido-dashboard/internal/models"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"github.com/rxtech-lab/ido-dashboard/internal/utils"
)

type CreateActionRequest struct {
	Account string `json:"account"`
	// Amount in LP token units, ignored for claims
	Amount string `json:"amount"`
}

type FailTransactionRequest struct {
	// Message is the wallet or chain error shown to the user as is
	Message string `json:"message"`
}

func (s *APIServer) handleCreateAction(c *fiber.Ctx) error {
	body := CreateActionRequest{}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	session, err := s.services.Transactions.CreateActionSession(c.UserContext(), services.CreateActionSessionRequest{
		Account: body.Account,
		Action:  models.TransactionType(c.Params("action")),
		Amount:  body.Amount,
	})
	if err != nil {
		return s.writeError(c, err)
	}

	url, err := utils.GetTransactionSessionUrl(s.services.Config.BaseURL, s.port, session.ID)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session": session,
		"url":     url,
		// optional personal_sign payload accepted by the submit endpoint
		"signing_message": utils.SessionMessage(session.ID, string(session.Action)),
	})
}

func (s *APIServer) handleGetSession(c *fiber.Ctx) error {
	session, err := s.services.Transactions.GetSession(c.Params("session_id"))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(session)
}

// handleSubmitTransaction records the broadcast transaction hash and follows its receipt.
func (s *APIServer) handleSubmitTransaction(c *fiber.Ctx) error {
	body := services.SubmitTransactionRequest{}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	session, err := s.services.Transactions.MarkConfirming(c.Params("session_id"), body)
	if err != nil {
		return s.writeError(c, err)
	}
	s.services.ReceiptWatcher.WatchAsync(*session)
	return c.JSON(session)
}

func (s *APIServer) handleFailTransaction(c *fiber.Ctx) error {
	body := FailTransactionRequest{}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.Message == "" {
		return badRequest(c, "message is required")
	}

	session, err := s.services.Transactions.MarkFailed(c.Params("session_id"), body.Message)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(session)
}
