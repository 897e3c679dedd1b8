// Package resolver turns content references into playable stream URLs.
package resolver

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/genricoloni/multiview/internal/domain"
	"go.uber.org/zap"
)

// Direct treats the content id as the media location. It accepts http and
// https URLs and existing local files.
type Direct struct{}

// ResolveStreamURL returns the content id unchanged when it is playable
func (Direct) ResolveStreamURL(_ context.Context, _ string, content domain.ContentRef) (string, error) {
	target := content.ID
	if target == "" {
		return "", ErrEmptyURL
	}

	if u, err := url.Parse(target); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
		}
		if u.Host == "" {
			return "", fmt.Errorf("url %q has no host", target)
		}
		return target, nil
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("media file: %w", err)
	}
	return abs, nil
}

// New returns the HTTP resolver when baseURL is set and Direct otherwise
func New(baseURL string, logger *zap.Logger) domain.StreamResolver {
	if baseURL == "" {
		logger.Info("No stream service configured, playing content ids as URLs")
		return Direct{}
	}
	return NewHTTPResolver(baseURL, logger)
}
