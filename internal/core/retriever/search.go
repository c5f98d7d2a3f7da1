package retriever

import (
	"context"
	"fmt"
	"time"

	"rag-ingest/config"
	"rag-ingest/pkg/logger"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// SearchMilvus performs a vector similarity search and returns topK hits with
// chunk metadata.
func SearchMilvus(ctx context.Context, query []float32, topK int, filters Filters) ([]Hit, error) {
	if topK <= 0 {
		topK = 8
	}
	if len(query) == 0 {
		return []Hit{}, nil
	}
	// Guard the search by a short timeout when the caller set none.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: config.Cfg.Milvus.Address})
	if err != nil {
		return nil, fmt.Errorf("milvus connect: %w", err)
	}
	defer cli.Close()

	collection := config.Cfg.Milvus.Collection
	if err := cli.LoadCollection(ctx, collection, false); err != nil {
		return nil, fmt.Errorf("milvus load: %w", err)
	}

	expr := ""
	if filters.DocID > 0 {
		expr = fmt.Sprintf("doc_id == %d", filters.DocID)
	}

	sp, err := milvusentity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, err
	}
	metric := milvusentity.IP
	if config.Cfg.Milvus.IndexHNSWConfig.MetricType == "L2" {
		metric = milvusentity.L2
	}

	results, err := cli.Search(
		ctx,
		collection,
		nil,
		expr,
		[]string{"doc_id", "chunk_index", "page_number"},
		[]milvusentity.Vector{milvusentity.FloatVector(query)},
		"embedding",
		metric,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search: %w", err)
	}

	hits := make([]Hit, 0, topK)
	for _, result := range results {
		idCol, _ := result.IDs.(*milvusentity.ColumnInt64)
		var docCol, chunkCol, pageCol milvusentity.Column
		for _, f := range result.Fields {
			switch f.Name() {
			case "doc_id":
				docCol = f
			case "chunk_index":
				chunkCol = f
			case "page_number":
				pageCol = f
			}
		}
		for i := 0; i < result.ResultCount; i++ {
			hit := Hit{Score: result.Scores[i]}
			if idCol != nil {
				if v, err := idCol.ValueByIdx(i); err == nil {
					hit.MilvusID = v
				}
			}
			if c, ok := docCol.(*milvusentity.ColumnInt64); ok {
				if v, err := c.ValueByIdx(i); err == nil {
					hit.DocID = v
				}
			}
			if c, ok := chunkCol.(*milvusentity.ColumnInt32); ok {
				if v, err := c.ValueByIdx(i); err == nil {
					hit.ChunkIndex = v
				}
			}
			if c, ok := pageCol.(*milvusentity.ColumnInt32); ok {
				if v, err := c.ValueByIdx(i); err == nil {
					hit.PageNumber = v
				}
			}
			hits = append(hits, hit)
		}
	}
	logger.WithFields(map[string]interface{}{
		"top_k": topK,
		"hits":  len(hits),
	}).Debug("retriever: search done")
	return hits, nil
}
