package model

type ChunkEmbedding struct {
	DocumentID string    `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	ChunkHash  string    `json:"chunk_hash"`
	ModelName  string    `json:"model_name"`
	Embedding  []float32 `json:"embedding"`
	Mtime      int64     `json:"mtime"`
}

type EmbeddingCache struct {
	ModelName   string    `json:"model_name"`
	TaskType    string    `json:"task_type"`
	ContentHash string    `json:"content_hash"`
	Embedding   []float32 `json:"embedding"`
	Ctime       int64     `json:"ctime"`
}
