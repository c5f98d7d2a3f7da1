package model

import "time"

// Document is one uploaded source file awaiting or having finished ingestion.
// Status transitions: uploaded -> processing -> ready | failed.
type Document struct {
	ID               int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	OriginalFilename *string    `gorm:"size:512" json:"original_filename"`
	FilePath         *string    `gorm:"size:1024" json:"file_path"`
	Sha256           *string    `gorm:"size:64;index" json:"sha256"`
	Status           string     `gorm:"size:32;default:uploaded" json:"status"`
	PageCount        *int32     `json:"page_count"`
	UploadedAt       *time.Time `json:"uploaded_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Document) TableName() string { return "documents" }

// Chunk is one persisted chunk row, mirroring the vector stored in Milvus.
type Chunk struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID       int64     `gorm:"index;not null" json:"document_id"`
	ChunkIndex       int32     `gorm:"not null" json:"chunk_index"`
	PageNumber       *int32    `json:"page_number"`
	Content          string    `gorm:"type:longtext" json:"content"`
	ContentPreview   *string   `gorm:"size:512" json:"content_preview"`
	TokenCount       *int32    `json:"token_count"`
	MilvusCollection string    `gorm:"size:128" json:"milvus_collection"`
	MilvusID         int64     `gorm:"index" json:"milvus_id"`
	ContentHash      string    `gorm:"size:64;index" json:"content_hash"`
	CreatedAt        time.Time `json:"created_at"`
}

func (Chunk) TableName() string { return "chunks" }
