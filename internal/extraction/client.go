// Package extraction wraps the agentic-document-analysis HTTP service.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mitch-zink/landing-ai-document-pipeline/pkg/logger"
)

// ErrNoResults marks an extraction response with zero results. An empty
// response is a hard failure, never an empty success.
var ErrNoResults = errors.New("extraction returned no results")

const libraryTag = "agentic-doc"

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Wire shapes of the service response. Zero or more documents come
// back; only the first is used.
type parseResponse struct {
	Data []parsedDocument `json:"data"`
}

type parsedDocument struct {
	Markdown string        `json:"markdown"`
	Chunks   []parsedChunk `json:"chunks"`
}

type parsedChunk struct {
	Text      string            `json:"text"`
	ChunkType string            `json:"chunk_type"`
	ChunkID   string            `json:"chunk_id"`
	Grounding []parsedGrounding `json:"grounding"`
}

type parsedGrounding struct {
	Page int  `json:"page"`
	Box  *Box `json:"box"`
}

// Parse sends file bytes to the extraction service and shapes the first
// result. The upload goes through a temporary on-disk file, the form the
// service endpoint expects.
func (c *Client) Parse(ctx context.Context, fileKey string, content []byte) (*Result, error) {
	logger.Info("Calling extraction service", zap.String("file_key", fileKey), zap.Int("size_bytes", len(content)))

	tempPath, err := writeTempFile(fileKey, content)
	if err != nil {
		return nil, err
	}
	defer os.Remove(tempPath)

	resp, err := c.upload(ctx, fileKey, tempPath)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		logger.Error("Extraction service returned empty results", zap.String("file_key", fileKey))
		return nil, fmt.Errorf("%w: %s", ErrNoResults, fileKey)
	}

	first := resp.Data[0]
	result := &Result{
		Markdown: first.Markdown,
		Chunks:   shapeChunks(first.Chunks),
		Schema: Schema{
			FileName: fileKey,
			FileSize: len(content),
		},
		Metadata: Metadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Library:   libraryTag,
		},
	}

	logger.Info("Extraction successful",
		zap.String("file_key", fileKey),
		zap.Int("chunks", len(result.Chunks)),
	)

	return result, nil
}

func (c *Client) upload(ctx context.Context, fileKey, filePath string) (*parseResponse, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(formField(fileKey), path.Base(fileKey))
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to copy upload content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode, truncate(string(payload), 200))
	}

	var parsed parseResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse extraction response: %w", err)
	}

	return &parsed, nil
}

// shapeChunks maps service chunks onto the persisted representation:
// missing chunk types default to "text", grounding entries without a
// bounding box are dropped.
func shapeChunks(chunks []parsedChunk) []Chunk {
	shaped := make([]Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		chunkType := chunk.ChunkType
		if chunkType == "" {
			chunkType = "text"
		}

		var grounding []Grounding
		for _, g := range chunk.Grounding {
			if g.Box == nil {
				continue
			}
			grounding = append(grounding, Grounding{Page: g.Page, Box: g.Box})
		}

		shaped = append(shaped, Chunk{
			Text:      chunk.Text,
			ChunkType: chunkType,
			ChunkID:   chunk.ChunkID,
			Grounding: grounding,
		})
	}

	return shaped
}

func writeTempFile(fileKey string, content []byte) (string, error) {
	temp, err := os.CreateTemp("", "extract-*_"+path.Base(fileKey))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := temp.Write(content); err != nil {
		temp.Close()
		os.Remove(temp.Name())
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := temp.Close(); err != nil {
		os.Remove(temp.Name())
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	return temp.Name(), nil
}

func formField(fileKey string) string {
	if strings.EqualFold(path.Ext(fileKey), ".pdf") {
		return "pdf"
	}
	return "image"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
