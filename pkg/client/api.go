package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
)

// Endpoints relative to the base URL.
const (
	healthEndpoint     = "/health"
	configSaveEndpoint = "/config/save"
	configLoadEndpoint = "/config/load"
	configTestEndpoint = "/config/test"
	ragUploadEndpoint  = "/rag/upload"
	ragSearchEndpoint  = "/rag/search"
	ragDocsEndpoint    = "/rag/documents"
	ragStatsEndpoint   = "/rag/stats"
	chatStreamEndpoint = "/mem/chat"
	chatSyncEndpoint   = "/mem/chat-sync"
	learnEndpoint      = "/mem/learn"
	memoriesEndpoint   = "/mem/memories"
)

// Health returns the backend health. It is the only cached call: results are
// served from the cache for up to the cache TTL.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, apiRequest{method: http.MethodGet, endpoint: healthEndpoint, cacheable: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadConfig returns the stored LLM provider configuration.
func (c *Client) LoadConfig(ctx context.Context) (*APIConfig, error) {
	var out APIConfig
	if err := c.do(ctx, apiRequest{method: http.MethodGet, endpoint: configLoadEndpoint}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveConfig stores the LLM provider configuration.
func (c *Client) SaveConfig(ctx context.Context, cfg APIConfig) (*BaseResponse, error) {
	var out BaseResponse
	if err := c.do(ctx, apiRequest{method: http.MethodPost, endpoint: configSaveEndpoint, body: cfg}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TestConfig asks the backend to try cfg against the provider without storing it.
func (c *Client) TestConfig(ctx context.Context, cfg APIConfig) (*ConfigTestResult, error) {
	var out ConfigTestResult
	if err := c.do(ctx, apiRequest{method: http.MethodPost, endpoint: configTestEndpoint, body: cfg}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocument adds a document to the knowledge base as a multipart upload.
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (*UploadResponse, error) {
	if filename == "" {
		return nil, fmt.Errorf("filename is required")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	var out UploadResponse
	req := apiRequest{
		method:   http.MethodPost,
		endpoint: ragUploadEndpoint,
		body:     encodedBody{contentType: form.FormDataContentType(), data: buf.Bytes()},
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDocument removes a document from the knowledge base.
func (c *Client) DeleteDocument(ctx context.Context, id string) (*BaseResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("document id is required")
	}
	var out BaseResponse
	req := apiRequest{
		method:   http.MethodDelete,
		endpoint: ragDocsEndpoint + "/" + url.PathEscape(id),
		route:    ragDocsEndpoint + "/{id}",
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Learn asks the backend to extract memories from message. background is
// optional conversation context.
func (c *Client) Learn(ctx context.Context, message, background string) (*BaseResponse, error) {
	var out BaseResponse
	req := apiRequest{method: http.MethodPost, endpoint: learnEndpoint, body: learnRequest{Message: message, Context: background}}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChatSync sends message and waits for the complete reply.
func (c *Client) ChatSync(ctx context.Context, message string) (*ChatResponse, error) {
	var out ChatResponse
	req := apiRequest{method: http.MethodPost, endpoint: chatSyncEndpoint, body: chatRequest{Message: message}}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search queries the knowledge base for the topK best matches.
func (c *Client) Search(ctx context.Context, query string, topK int) (*SearchResponse, error) {
	if topK <= 0 {
		topK = 5
	}
	var out SearchResponse
	req := apiRequest{method: http.MethodPost, endpoint: ragSearchEndpoint, body: searchRequest{Query: query, TopK: topK}}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Documents lists uploaded documents.
func (c *Client) Documents(ctx context.Context) ([]DocumentInfo, error) {
	var out []DocumentInfo
	if err := c.do(ctx, apiRequest{method: http.MethodGet, endpoint: ragDocsEndpoint}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RAGStats returns knowledge base statistics.
func (c *Client) RAGStats(ctx context.Context) (*RAGStats, error) {
	var out RAGStats
	if err := c.do(ctx, apiRequest{method: http.MethodGet, endpoint: ragStatsEndpoint}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Memories lists up to limit stored memories.
func (c *Client) Memories(ctx context.Context, limit int) (*MemoryListResponse, error) {
	if limit <= 0 {
		limit = 100
	}
	var out MemoryListResponse
	req := apiRequest{
		method:   http.MethodGet,
		endpoint: memoriesEndpoint,
		query:    url.Values{"limit": []string{strconv.Itoa(limit)}},
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMemory removes a stored memory.
func (c *Client) DeleteMemory(ctx context.Context, id string) (*BaseResponse, error) {
	if id == "" {
		return nil, fmt.Errorf("memory id is required")
	}
	var out BaseResponse
	req := apiRequest{
		method:   http.MethodDelete,
		endpoint: memoriesEndpoint + "/" + url.PathEscape(id),
		route:    memoriesEndpoint + "/{id}",
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
