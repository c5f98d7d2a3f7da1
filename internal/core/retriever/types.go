package retriever

// Filters narrows a search to specific documents.
type Filters struct {
	DocID int64
}

// Hit is one vector-search result with its chunk provenance.
type Hit struct {
	MilvusID   int64   `json:"milvus_id"`
	DocID      int64   `json:"doc_id"`
	ChunkIndex int32   `json:"chunk_index"`
	PageNumber int32   `json:"page_number"`
	Score      float32 `json:"score"`
	Content    string  `json:"content,omitempty"`
}
