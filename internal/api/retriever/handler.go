package retriever

import (
	"context"
	"time"

	"rag-ingest/config"
	coreretriever "rag-ingest/internal/core/retriever"
	"rag-ingest/internal/database"
	"rag-ingest/internal/database/model"
	"rag-ingest/pkg/apperror"
	"rag-ingest/pkg/apperror/status"

	"github.com/gofiber/fiber/v3"
)

type searchRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k"`
	DocID    int64  `json:"doc_id"`
}

type searchResponse struct {
	Hits []coreretriever.Hit `json:"hits"`
}

func HandleSearch(c fiber.Ctx) error {
	trackingID := c.Get("X-Request-ID")

	var req searchRequest
	if err := c.Bind().Body(&req); err != nil {
		return apperror.BadRequest(config.ModuleRetriever, c, status.InvalidRequestBody, "invalid request body")
	}
	if req.Question == "" {
		return apperror.BadRequest(config.ModuleRetriever, c, status.MissingParams, "question is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	vec, err := coreretriever.EmbedQuestion(ctx, req.Question)
	if err != nil {
		return apperror.InternalError(config.ModuleRetriever, c, status.New(status.SearchEmbedFailed, err))
	}

	hits, err := coreretriever.SearchMilvus(ctx, vec, req.TopK, coreretriever.Filters{DocID: req.DocID})
	if err != nil {
		return apperror.InternalError(config.ModuleRetriever, c, status.New(status.SearchMilvusFailed, err))
	}

	if err := hydrateContent(hits); err != nil {
		return apperror.InternalError(config.ModuleRetriever, c, status.New(status.SearchInternal, err))
	}

	return apperror.Success(c, apperror.FiberSuccessMessage{
		Code:       status.OK,
		Message:    "search done",
		TrackingID: trackingID,
		Data:       searchResponse{Hits: hits},
	})
}

// hydrateContent fills chunk text from MySQL by milvus id.
func hydrateContent(hits []coreretriever.Hit) error {
	if len(hits) == 0 {
		return nil
	}
	db, err := database.GetDB()
	if err != nil {
		return err
	}
	ids := make([]int64, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.MilvusID)
	}
	var rows []model.Chunk
	if err := db.Where("milvus_id IN ?", ids).Find(&rows).Error; err != nil {
		return err
	}
	byID := make(map[int64]string, len(rows))
	for _, row := range rows {
		byID[row.MilvusID] = row.Content
	}
	for i := range hits {
		hits[i].Content = byID[hits[i].MilvusID]
	}
	return nil
}
