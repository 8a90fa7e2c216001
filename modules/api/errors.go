package api

import (
	"errors"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/loveroseeeeeeeeee/projetogym5/domain/apperr"
)

const msgInternal = "internal server error"

// NewErrorHandler renders every error returned by a handler or middleware
// as an error envelope. Internal detail is exposed only when development
// is true.
func NewErrorHandler(logger types.Logger, development bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(ErrorResponse{
				Message: fiberErr.Message,
			})
		}

		appErr := apperr.As(err)
		status := apperr.HTTPStatus(appErr.Kind)
		resp := ErrorResponse{
			Message: appErr.Message,
			Errors:  appErr.Fields,
		}

		if appErr.Kind == apperr.KindInternal {
			logger.Error("Request failed",
				"method", c.Method(),
				"path", c.Path(),
				"error", err)
			resp.Message = msgInternal
			if development {
				resp.Error = appErr.Detail
				if resp.Error == "" {
					resp.Error = err.Error()
				}
			}
		}

		return c.Status(status).JSON(resp)
	}
}
