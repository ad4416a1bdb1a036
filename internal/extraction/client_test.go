package extraction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient("test-key", server.URL, 5*time.Second)
	return client, server
}

func TestParse_Success(t *testing.T) {
	var gotAuth string
	var gotField string

	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		for field := range r.MultipartForm.File {
			gotField = field
		}

		w.Write([]byte(`{
			"data": [
				{
					"markdown": "# Invoice",
					"chunks": [
						{"text": "Total: $42", "chunk_type": "table", "chunk_id": "c-1",
						 "grounding": [{"page": 1, "box": {"l": 0.1, "t": 0.2, "r": 0.8, "b": 0.9}}]}
					]
				}
			]
		}`))
	})
	defer server.Close()

	result, err := client.Parse(context.Background(), "docs/invoice.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.Equal(t, "Basic test-key", gotAuth)
	assert.Equal(t, "pdf", gotField)

	assert.Equal(t, "# Invoice", result.Markdown)
	require.Len(t, result.Chunks, 1)
	assert.Equal(t, "table", result.Chunks[0].ChunkType)
	assert.Equal(t, "c-1", result.Chunks[0].ChunkID)
	require.Len(t, result.Chunks[0].Grounding, 1)
	assert.Equal(t, 1, result.Chunks[0].Grounding[0].Page)
	assert.Equal(t, 0.8, result.Chunks[0].Grounding[0].Box.R)

	assert.Equal(t, "docs/invoice.pdf", result.Schema.FileName)
	assert.Equal(t, len("%PDF-1.4"), result.Schema.FileSize)
	assert.Equal(t, "agentic-doc", result.Metadata.Library)
	assert.NotEmpty(t, result.Metadata.Timestamp)
}

func TestParse_EmptyResultsIsHardFailure(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	})
	defer server.Close()

	result, err := client.Parse(context.Background(), "docs/a.pdf", []byte("content"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoResults)
	assert.Nil(t, result)
}

func TestParse_ChunkDefaults(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"data": [
				{
					"markdown": "text only",
					"chunks": [
						{"text": "no type tag"},
						{"text": "boxless grounding", "chunk_type": "title",
						 "grounding": [{"page": 3}]}
					]
				}
			]
		}`))
	})
	defer server.Close()

	result, err := client.Parse(context.Background(), "scan.jpg", []byte("jpeg"))
	require.NoError(t, err)

	require.Len(t, result.Chunks, 2)
	assert.Equal(t, "text", result.Chunks[0].ChunkType)
	assert.Empty(t, result.Chunks[0].Grounding)
	assert.Equal(t, "title", result.Chunks[1].ChunkType)
	assert.Empty(t, result.Chunks[1].Grounding, "grounding without a box is dropped")
}

func TestParse_OnlyFirstResultIsUsed(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"data": [
				{"markdown": "first", "chunks": []},
				{"markdown": "second", "chunks": []}
			]
		}`))
	})
	defer server.Close()

	result, err := client.Parse(context.Background(), "a.pdf", []byte("content"))
	require.NoError(t, err)
	assert.Equal(t, "first", result.Markdown)
}

func TestParse_ServiceErrorStatus(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
	defer server.Close()

	_, err := client.Parse(context.Background(), "a.pdf", []byte("content"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

func TestParse_ImageFormField(t *testing.T) {
	var gotField string

	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		for field := range r.MultipartForm.File {
			gotField = field
		}
		w.Write([]byte(`{"data": [{"markdown": "ok", "chunks": []}]}`))
	})
	defer server.Close()

	_, err := client.Parse(context.Background(), "photos/receipt.jpg", []byte("jpeg"))
	require.NoError(t, err)
	assert.Equal(t, "image", gotField)
}
