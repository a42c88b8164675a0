// Package webhook forwards completed vacancies to an external sink.
// Delivery is fire-and-forget from the turn's perspective: failure is
// reported as a boolean, never as an error that could fail generation.
package webhook

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"vacancybot/internal/vacancy"
)

const contentType = "application/json"

// Sink is what the orchestrator depends on.
type Sink interface {
	Notify(ctx context.Context, rec vacancy.Vacancy, document string) bool
}

type payload struct {
	Record      vacancy.Vacancy `json:"record"`
	Document    string          `json:"document"`
	GeneratedAt time.Time       `json:"generated_at"`
}

type Client struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(url string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Notify posts the record and document to the sink and reports success.
func (c *Client) Notify(ctx context.Context, rec vacancy.Vacancy, document string) bool {
	body, err := sonic.Marshal(payload{
		Record:      rec,
		Document:    document,
		GeneratedAt: time.Now(),
	})
	if err != nil {
		c.logger.Warn("marshal webhook payload", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		c.logger.Warn("build webhook request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("webhook delivery failed", zap.String("url", c.url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("webhook rejected payload",
			zap.String("url", c.url),
			zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}

var _ Sink = (*Client)(nil)
