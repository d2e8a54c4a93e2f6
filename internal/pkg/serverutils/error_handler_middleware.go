package serverutils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"tai-backend/internal/pkg/quota"
	"tai-backend/internal/repository/contract"
	"tai-backend/pkg/chunker"
	"tai-backend/pkg/embedding"
	"tai-backend/pkg/guardrail"
)

// ErrorHandlerMiddleware converts typed service errors into HTTP responses.
// Controllers return errors as-is; all status mapping happens here.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		var limitErr *quota.LimitExceededError
		if errors.As(err, &limitErr) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(429, limitErr.Error()))
		}

		// Upstream AI failures are gateway errors, never silent refusals.
		var oracleErr *embedding.OracleError
		var decisionErr *guardrail.DecisionOracleError
		var malformedErr *guardrail.MalformedDecisionError
		if errors.As(err, &oracleErr) || errors.As(err, &decisionErr) || errors.As(err, &malformedErr) {
			log.Printf("[ERROR] upstream AI failure: %v", err)
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(502, "AI backend is unavailable, please retry"))
		}

		var scopeErr *contract.ScopeViolationError
		if errors.As(err, &scopeErr) {
			log.Printf("[ERROR] invariant breach: %v", err)
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Internal server error"))
		}

		if errors.Is(err, chunker.ErrEmptyInput) {
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(400, err.Error()))
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(404, "Resource not found"))
		}

		log.Printf("[ERROR] unhandled: %v", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "Internal server error"))
	}
}
