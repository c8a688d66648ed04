package alpha

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/ingest"
)

// Client sends exports to a running liftlog server, which owns the store.
type Client struct {
	serverURL  string
	httpClient *http.Client
}

// NewClient creates a client for the server at serverURL.
func NewClient(serverURL string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Import POSTs a CSV export to the server's import endpoint.
func (c *Client) Import(ctx context.Context, r io.Reader, week string, dryRun bool) (*ingest.Result, error) {
	q := url.Values{"week": {week}}
	if dryRun {
		q.Set("dry_run", strconv.FormatBool(dryRun))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/import/alpha?"+q.Encode(), r)
	if err != nil {
		return nil, fmt.Errorf("building import request: %w", err)
	}
	req.Header.Set("Content-Type", "text/csv")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
	}

	var result ingest.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding import result: %w", err)
	}
	return &result, nil
}
