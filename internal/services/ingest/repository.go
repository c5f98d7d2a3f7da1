package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"

	"rag-ingest/internal/core/chunking"
	"rag-ingest/internal/database"
	"rag-ingest/internal/database/model"

	"gorm.io/gorm"
)

// GetDocumentByID returns the document row, or nil when no row exists.
func GetDocumentByID(ctx context.Context, docID int64) (*model.Document, error) {
	doc, err := database.GetEntityByID[model.Document](ctx, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func HasChunks(ctx context.Context, docID int64) (bool, error) {
	db, err := database.GetDB()
	if err != nil {
		return false, err
	}
	var count int64
	if err := db.WithContext(ctx).Model(&model.Chunk{}).Where("document_id = ?", docID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func UpdateDocumentStatus(ctx context.Context, docID int64, status string) error {
	return database.UpdateEntityByID[model.Document](ctx, docID, map[string]interface{}{"status": status})
}

func UpdateDocumentPageCount(ctx context.Context, docID int64, pages int) error {
	return database.UpdateEntityByID[model.Document](ctx, docID, map[string]interface{}{"page_count": int32(pages)})
}

// ReplaceChunks swaps the document's chunk rows for the given set in one
// transaction, so a re-ingest never leaves a mix of old and new chunks.
func ReplaceChunks(ctx context.Context, docID int64, chunks []chunking.Chunk, milvusIDs []int64, collection string) error {
	records := make([]model.Chunk, 0, len(chunks))
	for i, ch := range chunks {
		content := ch.Text
		contentPreview := buildContentPreview(content, 512)
		h := sha256.Sum256([]byte(content))
		hash := hex.EncodeToString(h[:])
		var milvusID int64
		if i < len(milvusIDs) {
			milvusID = milvusIDs[i]
		}
		pageNumber := int32(ch.PageNumber)
		tokenCount := int32(ch.Tokens)
		records = append(records, model.Chunk{
			DocumentID:       docID,
			ChunkIndex:       int32(i),
			PageNumber:       &pageNumber,
			Content:          content,
			ContentPreview:   &contentPreview,
			TokenCount:       &tokenCount,
			MilvusCollection: collection,
			MilvusID:         milvusID,
			ContentHash:      hash,
		})
	}
	return database.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", docID).Delete(&model.Chunk{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
}

// buildContentPreview sanitizes the preview to valid UTF-8 printable characters
// and truncates by runes to avoid splitting multi-byte sequences.
func buildContentPreview(s string, maxRunes int) string {
	var b strings.Builder
	b.Grow(len(s))
	count := 0
	for _, r := range s {
		if r == '\uFEFF' { // BOM
			continue
		}
		if r == '\n' || r == '\t' || r == '\r' {
			// keep common whitespace
		} else if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		count++
		if count >= maxRunes {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
