package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akinalp/scribe/config"
	"github.com/akinalp/scribe/pkg"
)

func TestAI_Describe(t *testing.T) {
	var gotPrompt, gotKey, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")

		var req generateRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && len(req.Contents) > 0 && len(req.Contents[0].Parts) > 0 {
			gotPrompt = req.Contents[0].Parts[0].Text
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  Go is a language.  "}]}}]}`))
	}))
	defer srv.Close()

	svc := NewAIService(config.AIConfig{APIKey: "k", Model: "m", BaseURL: srv.URL + "/"}, srv.Client())

	text, err := svc.Describe(context.Background(), " Go ")
	require.NoError(t, err)
	assert.Equal(t, "Go is a language.", text)
	assert.Equal(t, "Write a 200 words clear description about Go.", gotPrompt)
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "/models/m:generateContent", gotPath)
}

func TestAI_DescribeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx := context.Background()

	_, err := NewAIService(config.AIConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, srv.Client()).Describe(ctx, "  ")
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = NewAIService(config.AIConfig{Model: "m", BaseURL: srv.URL}, srv.Client()).Describe(ctx, "Go")
	assert.ErrorIs(t, err, pkg.ErrUnavailable)

	_, err = NewAIService(config.AIConfig{APIKey: "k", Model: "m", BaseURL: srv.URL}, srv.Client()).Describe(ctx, "Go")
	assert.ErrorIs(t, err, pkg.ErrUnavailable)
}
