// Package docsapi is the client for the external document generation service.
package docsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/GringoXY/4-gamers-mailing/internal/config"
	"github.com/GringoXY/4-gamers-mailing/internal/events"
)

// DefaultFilename is used when the response carries no filename hint.
const DefaultFilename = "default.pdf"

const maxErrorBodySize = 512

// Generator produces a document for a domain event. An empty filename with
// empty content means the event has no document; callers must not treat that
// as an error.
type Generator interface {
	Generate(ctx context.Context, event events.Event) (filename string, content []byte, err error)
}

// Client calls the document generation HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg *config.DocsAPIConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Generate POSTs the event JSON to the variant's endpoint and returns the
// binary document plus the filename from the Content-Disposition header.
// Events without a document endpoint yield an empty result without a call.
// Any non-2xx response is an error scoped to the record being dispatched.
func (c *Client) Generate(ctx context.Context, event events.Event) (string, []byte, error) {
	path := event.DocumentPath()
	if path == "" {
		return "", nil, nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal %s event: %w", event.EventType(), err)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create document request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("document request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return "", nil, fmt.Errorf("failed to generate document: status %d, content: %s",
			resp.StatusCode, string(snippet))
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read document body: %w", err)
	}

	return filenameFromHeader(resp.Header.Get("Content-Disposition")), content, nil
}

// filenameFromHeader extracts the filename hint from a Content-Disposition
// header, falling back to DefaultFilename.
func filenameFromHeader(header string) string {
	if header == "" {
		return DefaultFilename
	}

	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return DefaultFilename
	}

	if filename := params["filename"]; filename != "" {
		return filename
	}
	return DefaultFilename
}
