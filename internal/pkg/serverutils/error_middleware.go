package serverutils

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware recovers from panics in downstream handlers and
// converts unhandled fiber errors into the standard envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = ctx.Status(fiber.StatusInternalServerError).
					JSON(ErrorResponse(fiber.StatusInternalServerError, "Internal server error"))
			}
		}()

		if err := ctx.Next(); err != nil {
			code := fiber.StatusInternalServerError
			if fiberErr, ok := err.(*fiber.Error); ok {
				code = fiberErr.Code
			}
			return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
		}
		return nil
	}
}
