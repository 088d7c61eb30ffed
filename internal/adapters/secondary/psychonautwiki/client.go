package psychonautwiki

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const substancesQuery = `query Substances($query: String!) {
  substances(query: $query) {
    name
    url
    class { chemical psychoactive }
    roas {
      name
      dose {
        units
        threshold
        heavy
        common { min max }
        light { min max }
        strong { min max }
      }
      duration {
        onset { min max units }
        comeup { min max units }
        peak { min max units }
        offset { min max units }
        afterglow { min max units }
        total { min max units }
      }
    }
    addictionPotential
    tolerance { full half zero }
    images { image }
  }
}`

// truncateString обрезает строку до указанной длины
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Client клиент GraphQL API PsychonautWiki
type Client struct {
	cfg        *Config
	HTTPClient *http.Client
	Log        *slog.Logger
}

func NewClient(cfg *Config, log *slog.Logger) *Client {
	transport := &http.Transport{}

	if cfg.ShouldSkipSSL() {
		transport.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true,
		}
	}

	return &Client{
		cfg: cfg,
		HTTPClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		Log: log,
	}
}

// SearchSubstances ищет вещества по имени. Пустой список - не ошибка
func (c *Client) SearchSubstances(ctx context.Context, query string) ([]SubstanceDTO, error) {
	jsonData, err := json.Marshal(graphQLRequest{
		Query:     substancesQuery,
		Variables: map[string]any{"query": strings.TrimSpace(query)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.Log.Debug("psychonautwiki returned non-200 status",
			"status_code", resp.StatusCode,
			"body_preview", truncateString(string(body), 200),
		)
		return nil, fmt.Errorf("psychonautwiki error [status=%d]: %s", resp.StatusCode, truncateString(string(body), 500))
	}

	var result SubstancesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		c.Log.Debug("failed to unmarshal psychonautwiki response",
			"error", err,
			"body_preview", truncateString(string(body), 200),
		)
		return nil, fmt.Errorf("psychonautwiki unmarshal failed: %w", err)
	}

	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("psychonautwiki graphql error: %s", result.Errors[0].Message)
	}

	return result.Data.Substances, nil
}
