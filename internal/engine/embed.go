package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/clipdeck/clipdeck/internal/httpclient"
)

// MatchEmbedURL runs an input URL against an embed provider's recognition
// patterns and returns the captured video id. Inputs that carry a file or
// match none of the patterns are unsuitable; embed engines never claim
// uploads.
func MatchEmbedURL(in Input, patterns []*regexp.Regexp) (string, error) {
	if in.File != nil {
		return "", fmt.Errorf("%w: embeds accept URLs only", ErrUnsuitable)
	}
	raw := strings.TrimSpace(in.URL)
	if raw == "" {
		return "", fmt.Errorf("%w: no url provided", ErrUnsuitable)
	}
	for _, p := range patterns {
		m := p.FindStringSubmatch(raw)
		if len(m) >= 2 && m[1] != "" {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: url does not match provider patterns", ErrUnsuitable)
}

// OEmbed is the subset of the oEmbed response embed engines consume.
type OEmbed struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ThumbnailURL string  `json:"thumbnail_url"`
	Duration     float64 `json:"duration"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
}

// FetchOEmbed retrieves and decodes an oEmbed document. Metadata lookup is
// best-effort for callers: they log and continue on error rather than fail
// the parse.
func FetchOEmbed(ctx context.Context, client *httpclient.Client, endpoint string) (*OEmbed, error) {
	resp, err := client.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("fetch oembed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch oembed: unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read oembed response: %w", err)
	}
	var doc OEmbed
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode oembed response: %w", err)
	}
	return &doc, nil
}
