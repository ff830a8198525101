package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akinalp/scribe/config"
	"github.com/akinalp/scribe/pkg"
)

const maxTopicLength = 200

// AIService drafts article descriptions with a hosted text model.
type AIService interface {
	Describe(ctx context.Context, topic string) (string, error)
}

type aiService struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewAIService builds the service. A nil client gets a default with a 30s timeout.
func NewAIService(cfg config.AIConfig, httpClient *http.Client) AIService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &aiService{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

func (s *aiService) Describe(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return "", fmt.Errorf("%w: topic is required", pkg.ErrBadRequest)
	}
	if len(topic) > maxTopicLength {
		return "", fmt.Errorf("%w: topic must be at most %d characters", pkg.ErrBadRequest, maxTopicLength)
	}
	if s.apiKey == "" {
		return "", fmt.Errorf("%w: description generation is not configured", pkg.ErrUnavailable)
	}

	body, err := json.Marshal(generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{{Text: fmt.Sprintf("Write a 200 words clear description about %s.", topic)}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		s.baseURL, url.PathEscape(s.model), url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("[ai] generate request failed: %v", err)
		return "", fmt.Errorf("%w: description service unreachable", pkg.ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[ai] generate returned %d: %s", resp.StatusCode, snippet)
		return "", fmt.Errorf("%w: description service returned %d", pkg.ErrUnavailable, resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: malformed description response", pkg.ErrUnavailable)
	}

	var sb strings.Builder
	for _, c := range out.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty description returned", pkg.ErrUnavailable)
	}
	return text, nil
}
