package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"rfpmerge/internal/config"
)

// Client calls an external text summarization service over HTTP. The
// service contract is a single POST endpoint taking the text and the
// desired sentence count and returning the condensed text.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	pacer      *requestPacer
}

type summarizeRequest struct {
	Text      string `json:"text"`
	Sentences int    `json:"sentenceCount"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
	Message string `json:"message"`
}

func NewClient(cfg config.Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.SummarizerTimeoutMs) * time.Millisecond},
		pacer:      newRequestPacer(cfg.SummarizerRateLimitRPS),
	}
}

func (c *Client) Summarize(ctx context.Context, text string, sentences int) (string, error) {
	if strings.TrimSpace(c.cfg.SummarizerBaseURL) == "" {
		return "", errors.New("missing SUMMARIZER_BASE_URL")
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty text")
	}

	payload, err := json.Marshal(summarizeRequest{Text: text, Sentences: sentences})
	if err != nil {
		return "", err
	}

	endpoint := strings.TrimRight(c.cfg.SummarizerBaseURL, "/") + "/summarize"

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		c.pacer.wait()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.cfg.SummarizerToken != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.SummarizerToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			if isRetryableStatus(resp.StatusCode) && attempt < 3 {
				backoff := time.Duration(250*(1<<(attempt-1))+rand.Intn(100)) * time.Millisecond
				time.Sleep(backoff)
				lastErr = fmt.Errorf("summarizer status %d", resp.StatusCode)
				continue
			}
			return "", fmt.Errorf("summarizer error: status=%d body=%s", resp.StatusCode, string(body))
		}

		var out summarizeResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return "", err
		}
		if strings.TrimSpace(out.Summary) == "" {
			return "", fmt.Errorf("summarizer returned no summary: %s", out.Message)
		}
		return out.Summary, nil
	}

	if lastErr == nil {
		lastErr = errors.New("summarizer request failed")
	}
	return "", lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}
