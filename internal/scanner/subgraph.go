// Package scanner talks to V2 subgraphs: bulk pair scans, stale-pool
// candidate generation and deepest-pool lookups.
package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	requestTimeout = 30 * time.Second
	maxTries       = 3
	backoffBase    = 400 * time.Millisecond
)

// Client posts GraphQL queries to one subgraph endpoint with retries.
type Client struct {
	endpoint string
	http     *http.Client
	log      zerolog.Logger
}

func NewClient(endpoint string, log zerolog.Logger) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: requestTimeout},
		log:      log,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors json.RawMessage `json:"errors"`
}

// Post runs a query and unmarshals the data payload into out. Transient
// failures retry with exponential backoff.
func (c *Client) Post(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("marshal query: %w", err)
	}

	var lastErr error
	for try := 0; try < maxTries; try++ {
		if try > 0 {
			delay := backoffBase << (try - 1)
			c.log.Debug().Dur("delay", delay).Err(lastErr).Msg("retrying subgraph query")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		lastErr = c.once(ctx, body, out)
		if lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("subgraph query failed after %d tries: %w", maxTries, lastErr)
}

func (c *Client) once(ctx context.Context, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %s", resp.Status)
	}

	var gr graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Errors) > 0 {
		return fmt.Errorf("graphql errors: %s", gr.Errors)
	}
	return json.Unmarshal(gr.Data, out)
}
