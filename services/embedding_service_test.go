package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itish2003/studysense/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req models.OllamaEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "all-minilm", req.Model)
		if req.Prompt == "fail" {
			http.Error(w, "model not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(models.OllamaEmbedResponse{Embedding: []float32{0.1, 0.2, 0.3}})
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.Client(), srv.URL+"/", "all-minilm")

	vec, err := e.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)

	_, err = e.Embed(context.Background(), "fail")
	assert.ErrorContains(t, err, "404")
}

func TestCachedEmbedder(t *testing.T) {
	inner := &wordEmbedder{}
	e := NewCachedEmbedder(inner, time.Minute)
	ctx := context.Background()

	first, err := e.Embed(ctx, "what is a binary tree")
	require.NoError(t, err)
	second, err := e.Embed(ctx, "what is a binary tree")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	_, err = e.Embed(ctx, "something else")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedEmbedder_DoesNotCacheErrors(t *testing.T) {
	e := NewCachedEmbedder(failingEmbedder{}, time.Minute)
	_, err := e.Embed(context.Background(), "x")
	assert.Error(t, err)
	_, err = e.Embed(context.Background(), "x")
	assert.Error(t, err)
}
