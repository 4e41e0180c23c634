package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	domainerrors "cpindex/contexts/governance/cpi-engine/domain/errors"
)

const currentDelegateQuery = `query ($delegator: String!) {
  delegateChangeds(
    orderBy: blockTimestamp
    orderDirection: desc
    where: { delegator: $delegator }
    first: 1
  ) {
    toDelegate
  }
}`

const votingPowerQuery = `query ($delegate: String!) {
  delegateVotesChangeds(
    orderBy: blockTimestamp
    orderDirection: desc
    first: 1
    where: { delegate: $delegate }
  ) {
    newBalance
    delegate
  }
}`

// Client resolves live delegation state from the governance-token
// subgraph.
type Client struct {
	URL        string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func NewClient(url string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	}
}

func (c *Client) CurrentDelegate(ctx context.Context, delegator string) (string, error) {
	var payload struct {
		DelegateChangeds []struct {
			ToDelegate string `json:"toDelegate"`
		} `json:"delegateChangeds"`
	}
	if err := c.query(ctx, currentDelegateQuery, map[string]string{"delegator": delegator}, &payload); err != nil {
		return "", err
	}
	if len(payload.DelegateChangeds) == 0 {
		return "", domainerrors.ErrDelegateNotFound
	}
	return payload.DelegateChangeds[0].ToDelegate, nil
}

func (c *Client) VotingPower(ctx context.Context, address string) (string, error) {
	var payload struct {
		DelegateVotesChangeds []struct {
			NewBalance string `json:"newBalance"`
			Delegate   string `json:"delegate"`
		} `json:"delegateVotesChangeds"`
	}
	if err := c.query(ctx, votingPowerQuery, map[string]string{"delegate": address}, &payload); err != nil {
		return "", err
	}
	if len(payload.DelegateVotesChangeds) == 0 || payload.DelegateVotesChangeds[0].NewBalance == "" {
		return "0", nil
	}
	return payload.DelegateVotesChangeds[0].NewBalance, nil
}

func (c *Client) query(ctx context.Context, query string, variables map[string]string, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return fmt.Errorf("marshal graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return c.upstreamError("graph_query_failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return c.upstreamError("graph_read_failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return c.upstreamError("graph_status_failed", fmt.Errorf("subgraph returned status %d", resp.StatusCode))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return c.upstreamError("graph_decode_failed", err)
	}
	if len(envelope.Errors) > 0 {
		return c.upstreamError("graph_errors", fmt.Errorf("subgraph error: %s", envelope.Errors[0].Message))
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return c.upstreamError("graph_decode_failed", err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) upstreamError(event string, err error) error {
	if c.Logger != nil {
		c.Logger.Error("subgraph call failed",
			"event", event,
			"module", "governance/cpi-engine",
			"layer", "adapter",
			"url", c.URL,
			"error", err.Error(),
		)
	}
	return fmt.Errorf("query subgraph: %w: %v", domainerrors.ErrUpstreamUnavailable, err)
}
