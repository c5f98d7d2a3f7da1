package ingest

import (
	"context"
	"strconv"

	"rag-ingest/config"
	"rag-ingest/internal/services/ingest"
	"rag-ingest/pkg/apperror"
	"rag-ingest/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type ingestResponse struct {
	DocID int64 `json:"doc_id"`
}

func HandleIngest(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	docIDStr := c.Params("docID")
	if docIDStr == "" {
		return apperror.BadRequest(config.ModuleIngest, c, status.MissingParams, "docID is required")
	}
	docID, err := strconv.ParseInt(docIDStr, 10, 64)
	if err != nil {
		return apperror.BadRequest(config.ModuleIngest, c, status.MissingParams, "invalid docID")
	}

	q := c.Query("force")
	force := q == "1" || q == "true" || q == "yes"

	doc, err := ingest.GetDocumentByID(context.Background(), docID)
	if err != nil {
		return apperror.InternalError(config.ModuleIngest, c, err)
	}
	if doc == nil {
		return apperror.NotFound(config.ModuleIngest, c, status.DocumentNotFound, "document not found")
	}

	// Fire and forget
	go ingest.RunIngestion(context.Background(), docID, force)

	return apperror.Success(c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "ingest started",
		TrackingID: trackingID,
		Data:       ingestResponse{DocID: docID},
	})
}
