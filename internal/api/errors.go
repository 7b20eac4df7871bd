package api

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rxtech-lab/ido-dashboard/internal/services"
	"gorm.io/gorm"
)

func errorStatus(err error) int {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrSessionExpired):
		return fiber.StatusGone
	case errors.Is(err, services.ErrActionInFlight), errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrActionNotAllowed):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidSignature):
		return fiber.StatusForbidden
	}
	return fiber.StatusInternalServerError
}

func (s *APIServer) writeError(c *fiber.Ctx, err error) error {
	status := errorStatus(err)
	if status == fiber.StatusInternalServerError {
		s.log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

func addressParam(c *fiber.Ctx) (common.Address, bool) {
	value := c.Params("address")
	if !common.IsHexAddress(value) {
		return common.Address{}, false
	}
	return common.HexToAddress(value), true
}
