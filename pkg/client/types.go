package client

// BaseResponse is the generic acknowledgement returned by mutating endpoints.
type BaseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// APIConfig is the LLM provider configuration stored by the backend.
type APIConfig struct {
	APIKey  string `json:"api_key"`
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// ConfigTestResult is returned by POST /config/test.
type ConfigTestResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ModelAvailable *bool  `json:"model_available,omitempty"`
}

// UploadResponse is returned by POST /rag/upload.
type UploadResponse struct {
	Success    bool   `json:"success"`
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Message    string `json:"message"`
}

// DocumentInfo describes an uploaded knowledge base document.
type DocumentInfo struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	UploadTime string `json:"upload_time"`
	ChunkCount int    `json:"chunk_count,omitempty"`
}

// SearchResult is one knowledge base match.
type SearchResult struct {
	Content  string         `json:"content"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata"`
}

// SearchResponse is returned by POST /rag/search.
type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
	Total   int            `json:"total"`
}

// RAGStats summarizes the knowledge base.
type RAGStats struct {
	DocumentCount int   `json:"document_count"`
	TotalChunks   int   `json:"total_chunks"`
	TotalSize     int64 `json:"total_size"`
}

// ChatResponse is returned by POST /mem/chat-sync.
type ChatResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Memory is one stored long-term memory.
type Memory struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// MemoryListResponse is returned by GET /mem/memories.
type MemoryListResponse struct {
	Memories []Memory `json:"memories"`
	Total    int      `json:"total"`
}

// chatRequest is the body of the chat endpoints.
type chatRequest struct {
	Message string `json:"message"`
}

// searchRequest is the body of POST /rag/search.
type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// learnRequest is the body of POST /mem/learn.
type learnRequest struct {
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
}
