package apperror

import (
	"errors"
	"fmt"

	"rag-ingest/config"
	"rag-ingest/pkg/apperror/status"
	"rag-ingest/pkg/logger"

	"github.com/gofiber/fiber/v3"
)

// ErrorResponse is the standardized HTTP error payload
type ErrorResponse struct {
	Error     string `json:"error"`
	ErrorCode string `json:"error_code"`
}

type FiberSuccessMessage struct {
	Code       status.SuccessCode `json:"code"`
	Message    string             `json:"message"`
	TrackingID string             `json:"tracking_id"`
	Data       any                `json:"data"`
}

// WriteError logs a structured warning and returns a standardized JSON error
func WriteError(module config.Module, c fiber.Ctx, httpStatus int, code string, message string) error {
	logger.WithFields(map[string]interface{}{
		"module":        module,
		"status_code":   httpStatus,
		"error_code":    code,
		"error_message": message,
		"http_method":   c.Method(),
		"path":          c.Path(),
		"url":           c.OriginalURL(),
		"ip":            c.IP(),
	}).Warnf("http error")

	return c.Status(httpStatus).JSON(ErrorResponse{
		Error:     message,
		ErrorCode: code,
	})
}

// BadRequest returns a standardized 400 response
func BadRequest(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	errorCode := fmt.Sprintf("RI-%d", code)
	return WriteError(module, c, fiber.StatusBadRequest, errorCode, message)
}

// NotFound returns a standardized 404 response
func NotFound(module config.Module, c fiber.Ctx, code status.ErrorCode, message string) error {
	errorCode := fmt.Sprintf("RI-%d", code)
	return WriteError(module, c, fiber.StatusNotFound, errorCode, message)
}

// errorCode renders the wire error code for err. Coded errors keep their
// domain code; everything else maps to the generic internal code.
func errorCode(err error) string {
	code := status.ErrorCodeInternal
	var coded status.CodedError
	if errors.As(err, &coded) {
		code = coded.ErrorCode()
	}
	return fmt.Sprintf("RI-%d", code)
}

// InternalError returns a standardized 500 response
func InternalError(module config.Module, c fiber.Ctx, err error) error {
	return WriteError(module, c, fiber.StatusInternalServerError, errorCode(err), err.Error())
}

// Success writes a standardized JSON success response
func Success(c fiber.Ctx, response FiberSuccessMessage) error {
	return c.Status(fiber.StatusOK).JSON(response)
}
