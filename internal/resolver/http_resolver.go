package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/genricoloni/multiview/internal/domain"
	"go.uber.org/zap"
)

const _maxResponseSize = 1 * 1024 * 1024 // 1 MB

// ErrEmptyURL is returned when the service answers without a stream URL
var ErrEmptyURL = errors.New("stream service returned an empty url")

type streamResponse struct {
	URL string `json:"url"`
}

// HTTPResolver asks a token service for the playable URL of a content
type HTTPResolver struct {
	logger  *zap.Logger
	client  *http.Client
	baseURL string
}

// NewHTTPResolver creates a resolver for the service at baseURL
func NewHTTPResolver(baseURL string, logger *zap.Logger) *HTTPResolver {
	return &HTTPResolver{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// ResolveStreamURL requests GET <base>/contents/<id>/stream with the
// subscription token as a bearer credential
func (r *HTTPResolver) ResolveStreamURL(ctx context.Context, token string, content domain.ContentRef) (string, error) {
	if content.ID == "" {
		return "", errors.New("content has no id")
	}

	endpoint := fmt.Sprintf("%s/contents/%s/stream", r.baseURL, url.PathEscape(content.ID))
	if content.Type != domain.ContentTypeAny {
		endpoint += "?contentType=" + url.QueryEscape(string(content.Type))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "multiview/1.0")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err != nil || mt != "application/json" {
		return "", fmt.Errorf("response is not json: %s", resp.Header.Get("Content-Type"))
	}

	var body streamResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, _maxResponseSize)).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if body.URL == "" {
		return "", ErrEmptyURL
	}

	r.logger.Debug("Stream url resolved", zap.String("content", content.ID))
	return body.URL, nil
}
