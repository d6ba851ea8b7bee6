package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ScalpDeck/internal/model"
)

// HTTPClient implements API against the agent's JSON-over-HTTP service.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client

	limiter *rate.Limiter
	logger  *zap.Logger
}

// Options tunes the HTTP client.
type Options struct {
	Timeout       time.Duration
	ProxyURL      string
	RatePerSecond float64
	RateBurst     int
}

// NewHTTPClient creates a client with optional proxy support and request pacing.
func NewHTTPClient(baseURL string, opts Options, logger *zap.Logger) *HTTPClient {
	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 1
	}
	return &HTTPClient{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(limit, opts.RateBurst),
		logger:  logger.With(zap.String("caller", "AgentClient")),
	}
}

func (c *HTTPClient) Name() string { return "http" }

func (c *HTTPClient) Initialize(ctx context.Context, req InitRequest) (InitAck, error) {
	var ack InitAck
	if err := c.do(ctx, http.MethodPost, "/agent/initialize", nil, req, &ack); err != nil {
		return InitAck{}, err
	}
	return ack, nil
}

func (c *HTTPClient) Status(ctx context.Context) (model.AgentStatus, error) {
	var st model.AgentStatus
	if err := c.do(ctx, http.MethodGet, "/agent/status", nil, nil, &st); err != nil {
		return model.AgentStatus{}, err
	}
	return st, nil
}

func (c *HTTPClient) Decide(ctx context.Context, symbol string) (model.Decision, error) {
	var d model.Decision
	body := map[string]string{"symbol": symbol}
	if err := c.do(ctx, http.MethodPost, "/agent/decide", nil, body, &d); err != nil {
		return model.Decision{}, err
	}
	if err := d.Validate(); err != nil {
		return model.Decision{}, fmt.Errorf("decode /agent/decide: %w", err)
	}
	return d, nil
}

func (c *HTTPClient) MarketData(ctx context.Context, symbol, period, interval string) (model.MarketSnapshot, error) {
	q := url.Values{}
	if period != "" {
		q.Set("period", period)
	}
	if interval != "" {
		q.Set("interval", interval)
	}
	var snap model.MarketSnapshot
	if err := c.do(ctx, http.MethodGet, "/market/"+url.PathEscape(symbol), q, nil, &snap); err != nil {
		return model.MarketSnapshot{}, err
	}
	if snap.Symbol == "" {
		snap.Symbol = symbol
	}
	return snap, nil
}

func (c *HTTPClient) History(ctx context.Context) (model.TradeHistory, error) {
	var h model.TradeHistory
	if err := c.do(ctx, http.MethodGet, "/agent/history", nil, nil, &h); err != nil {
		return model.TradeHistory{}, err
	}
	return h, nil
}

// Health probes the service root; any 2xx is alive.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/", nil, nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	endpoint, err := url.JoinPath(c.BaseURL, path)
	if err != nil {
		return fmt.Errorf("build request url: %w", err)
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s %s: rate limit: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("agent request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Endpoint: method + " " + path, Code: resp.StatusCode, Body: string(respBody)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
