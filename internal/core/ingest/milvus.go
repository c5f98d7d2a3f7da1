package ingest

import (
	"context"

	"rag-ingest/config"
	"rag-ingest/internal/core/chunking"

	milvusclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	milvusentity "github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const milvusVectorDim = 1536

// UpsertMilvusVectors ensures the collection and inserts embeddings with
// page and token metadata. Returns assigned IDs and the collection name.
func UpsertMilvusVectors(ctx context.Context, vectors [][]float32, docID int64, chunks []chunking.Chunk) ([]int64, string, error) {
	cli, err := milvusclient.NewClient(ctx, milvusclient.Config{Address: config.Cfg.Milvus.Address})
	if err != nil {
		return nil, "", err
	}
	defer cli.Close()

	collection := config.Cfg.Milvus.Collection
	if collection == "" {
		collection = "chunks"
	}
	exists, err := cli.HasCollection(ctx, collection)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		if err := createChunksCollection(ctx, cli, collection); err != nil {
			return nil, "", err
		}
	}

	docIDs := make([]int64, len(chunks))
	chunkIdxs := make([]int32, len(chunks))
	pageNumbers := make([]int32, len(chunks))
	tokenCounts := make([]int32, len(chunks))
	// Deterministic primary keys from docID and chunk index to avoid AutoID
	// API differences
	ids := make([]int64, len(chunks))
	for i, ch := range chunks {
		docIDs[i] = docID
		chunkIdxs[i] = int32(i)
		pageNumbers[i] = int32(ch.PageNumber)
		tokenCounts[i] = int32(ch.Tokens)
		ids[i] = (docID << 20) + int64(i)
	}
	colID := milvusentity.NewColumnInt64("id", ids)
	colDoc := milvusentity.NewColumnInt64("doc_id", docIDs)
	colChunk := milvusentity.NewColumnInt32("chunk_index", chunkIdxs)
	colPage := milvusentity.NewColumnInt32("page_number", pageNumbers)
	colTokens := milvusentity.NewColumnInt32("token_count", tokenCounts)
	colVec := milvusentity.NewColumnFloatVector("embedding", milvusVectorDim, vectors)

	if _, err := cli.Insert(ctx, collection, "", colID, colDoc, colChunk, colPage, colTokens, colVec); err != nil {
		return nil, "", err
	}
	return ids, collection, nil
}

func createChunksCollection(ctx context.Context, cli milvusclient.Client, collection string) error {
	schema := milvusentity.NewSchema().WithName(collection).WithDescription("document chunks")
	schema.WithField(milvusentity.NewField().WithName("id").WithDataType(milvusentity.FieldTypeInt64).WithIsPrimaryKey(true))
	schema.WithField(milvusentity.NewField().WithName("doc_id").WithDataType(milvusentity.FieldTypeInt64))
	schema.WithField(milvusentity.NewField().WithName("chunk_index").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("page_number").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("token_count").WithDataType(milvusentity.FieldTypeInt32))
	schema.WithField(milvusentity.NewField().WithName("embedding").WithDataType(milvusentity.FieldTypeFloatVector).WithDim(milvusVectorDim))

	if err := cli.CreateCollection(ctx, schema, 2); err != nil {
		return err
	}

	hnsw := config.Cfg.Milvus.IndexHNSWConfig
	metric := milvusentity.IP
	if hnsw.MetricType == "L2" {
		metric = milvusentity.L2
	}
	idx, err := milvusentity.NewIndexHNSW(metric, hnsw.M, hnsw.EfConstruction)
	if err != nil {
		return err
	}
	return cli.CreateIndex(ctx, collection, "embedding", idx, false)
}
