package ingest

import (
	"context"
	"errors"
	"time"

	"rag-ingest/config"
	"rag-ingest/internal/core/chunking"
	coreingest "rag-ingest/internal/core/ingest"
	"rag-ingest/pkg/apperror/status"
	"rag-ingest/pkg/logger"
)

// pipeline is shared across ingestion runs so the BPE encoder loads once.
var pipeline *chunking.Pipeline

func init() {
	c := config.Cfg.Chunking
	pipeline = chunking.NewPipeline(
		c.Encoding,
		chunking.NewRemoteTokenClient(c.RemoteTokenizerURL, config.Cfg.OpenAI.Key, config.Cfg.OpenAI.EmbeddingModel),
	)
}

// chunkingConfig builds the per-run chunking policy from settings.
func chunkingConfig() chunking.Config {
	c := config.Cfg.Chunking
	return chunking.Config{
		TargetTokens:     c.TargetTokens,
		OverlapTokens:    c.OverlapTokens,
		MaxWorkers:       c.MaxWorkers,
		DisableOptimized: c.DisableOptimized,
		ForceLegacy:      c.ForceLegacy,
		StageTimeout:     time.Duration(c.StageTimeoutSeconds) * time.Second,
	}
}

// failDocument marks the document failed and logs the coded failure.
func failDocument(ctx context.Context, docID int64, code status.ErrorCode, err error, msg string) {
	logger.WithFields(map[string]interface{}{
		"doc_id":     docID,
		"error_code": code,
		"error":      err.Error(),
	}).Error(msg)
	if e := UpdateDocumentStatus(ctx, docID, "failed"); e != nil {
		logger.Error(e, "ingest: mark document failed")
	}
}

// RunIngestion orchestrates the ingestion pipeline for a document ID:
// fetch -> extract pages -> chunk -> embed -> Milvus upsert -> persist.
func RunIngestion(ctx context.Context, docID int64, force bool) {
	doc, err := GetDocumentByID(ctx, docID)
	if err != nil {
		logger.Error(err, "ingest: get document failed")
		return
	}
	if doc == nil || doc.FilePath == nil {
		logger.Error(errors.New("not found"), "ingest: document not found")
		return
	}
	logger.WithFields(map[string]interface{}{
		"doc_id":    docID,
		"file_path": *doc.FilePath,
	}).Info("ingest: start")

	// Idempotency
	exists, err := HasChunks(ctx, docID)
	if err != nil {
		logger.Error(err, "ingest: check chunks failed")
		return
	}
	if exists && !force {
		logger.Info("ingest: chunks already exist; skip (no force)")
		return
	}

	_ = UpdateDocumentStatus(ctx, docID, "processing")

	tmpPath, cleanup, err := coreingest.FetchToLocalTemp(ctx, *doc.FilePath)
	if err != nil {
		failDocument(ctx, docID, status.IngestInternal, err, "ingest: fetch file failed")
		return
	}
	defer cleanup()

	pages, err := coreingest.ExtractPages(tmpPath)
	if err != nil {
		failDocument(ctx, docID, status.IngestExtractionFailed, err, "ingest: extract text failed")
		return
	}
	_ = UpdateDocumentPageCount(ctx, docID, len(pages))
	logger.WithFields(map[string]interface{}{
		"doc_id": docID,
		"pages":  len(pages),
	}).Info("ingest: extracted pages")

	cfg := chunkingConfig()
	chunks, err := pipeline.ChunkPages(ctx, pages, cfg)
	if err != nil {
		failDocument(ctx, docID, status.IngestChunkingFailed, err, "ingest: chunking failed")
		return
	}
	logger.WithFields(map[string]interface{}{
		"doc_id":        docID,
		"chunks":        len(chunks),
		"target_tokens": cfg.TargetTokens,
		"overlap":       cfg.OverlapTokens,
	}).Info("ingest: chunks built")

	inputs := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		inputs = append(inputs, ch.Text)
	}

	embedCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()
	vectors, err := coreingest.EmbedOpenAI(embedCtx, inputs)
	if err != nil {
		failDocument(ctx, docID, status.IngestEmbeddingFailed, err, "ingest: embedding failed")
		return
	}
	if len(vectors) != len(chunks) {
		err := errors.New("embedding count mismatch")
		failDocument(ctx, docID, status.IngestEmbeddingFailed, err, "ingest: embedding failed")
		return
	}

	milvusIDs, collection, err := coreingest.UpsertMilvusVectors(embedCtx, vectors, docID, chunks)
	if err != nil {
		failDocument(ctx, docID, status.IngestVectorUpsertFailed, err, "ingest: milvus upsert failed")
		return
	}

	if err := ReplaceChunks(ctx, docID, chunks, milvusIDs, collection); err != nil {
		failDocument(ctx, docID, status.IngestInternal, err, "ingest: persist chunks failed")
		return
	}

	_ = UpdateDocumentStatus(ctx, docID, "ready")
	logger.WithFields(map[string]interface{}{
		"doc_id": docID,
		"chunks": len(chunks),
	}).Info("ingest: done")
}
