package api

import (
	"errors"

	"github.com/amichai1/task-manager-app/domain/apperr"
	"github.com/gofiber/fiber/v2"
)

// MsgInvalidJSON is returned for request bodies that do not parse.
const MsgInvalidJSON = "Invalid JSON"

const msgInternal = "Internal Server Error"

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Field   string   `json:"field,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// errorHandler translates handler errors into JSON responses. Internal error
// messages are only shown in development.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	resp := ErrorResponse{Success: false, Message: msgInternal}
	code := fiber.StatusInternalServerError

	var appErr *apperr.Error
	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &appErr):
		code = appErr.HTTPStatus()
		resp.Message = appErr.Message
		resp.Field = appErr.Field
		resp.Errors = appErr.Details
		if appErr.Kind == apperr.KindInternal && !m.cfg.IsDevelopment() {
			resp.Message = msgInternal
		}
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		resp.Message = fiberErr.Message
	default:
		if m.cfg.IsDevelopment() {
			resp.Message = err.Error()
		}
	}

	if code >= fiber.StatusInternalServerError {
		m.logger.Error("Request failed",
			"method", c.Method(),
			"path", c.Path(),
			"status", code,
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err,
		)
	}

	return c.Status(code).JSON(resp)
}

// parseBody decodes a JSON body into out. An empty body leaves out unchanged.
func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		if errors.Is(err, errInvalidDate) {
			return apperr.Validation(MsgInvalidDueDate)
		}
		return apperr.Validation(MsgInvalidJSON)
	}
	return nil
}
