package api

import (
	"errors"
	"maps"
	"net/http"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/goliatone/go-staff/apperr"
	"github.com/goliatone/go-staff/logging"
)

const genericMessage = "internal server error"

// ErrorBody is the envelope of every error response.
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code     int            `json:"code"`
	TextCode string         `json:"text_code"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

var errorMappers = []goerrors.ErrorMapper{mapFiberError}

// ErrorHandler is the single boundary that turns errors into responses.
// Store and internal failures are logged in full and answered with a
// generic body.
func ErrorHandler(logger logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		rich := goerrors.MapToError(err, errorMappers)
		payload := toPayload(rich)

		if payload.Code >= http.StatusInternalServerError {
			meta := map[string]any{
				"request_id": c.Locals("requestid"),
				"category":   rich.Category,
			}
			if len(rich.Metadata) > 0 {
				meta["metadata"] = rich.Metadata
			}
			if rich.Location != nil {
				meta["location"] = rich.Location.String()
			}
			logger.Error("%s %s failed: %v\n%s", c.Method(), c.Path(), err, print.MaybePrettyJSON(meta))
		} else {
			logger.Debug("%s %s rejected: %v", c.Method(), c.Path(), err)
		}

		return c.Status(payload.Code).JSON(ErrorBody{Error: payload})
	}
}

func toPayload(rich *goerrors.Error) ErrorPayload {
	code := apperr.StatusOf(rich)
	if !apperr.Exposed(rich.Category) || code >= http.StatusInternalServerError {
		return ErrorPayload{
			Code:     http.StatusInternalServerError,
			TextCode: textCodeOr(rich.TextCode, "INTERNAL_ERROR"),
			Message:  genericMessage,
		}
	}

	metadata := maps.Clone(rich.Metadata)
	if fields := rich.ValidationMap(); len(fields) > 0 {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata["fields"] = fields
	}

	return ErrorPayload{
		Code:     code,
		TextCode: textCodeOr(rich.TextCode, goerrors.HTTPStatusToTextCode(code)),
		Message:  rich.Message,
		Metadata: metadata,
	}
}

// mapFiberError covers the router's own errors, such as unknown routes.
func mapFiberError(err error) *goerrors.Error {
	var fe *fiber.Error
	if !errors.As(err, &fe) {
		return nil
	}
	return goerrors.New(fe.Message, goerrors.HTTPStatusToCategory(fe.Code)).
		WithCode(fe.Code).
		WithTextCode(goerrors.HTTPStatusToTextCode(fe.Code))
}

func textCodeOr(code, fallback string) string {
	if code == "" {
		return fallback
	}
	return code
}
