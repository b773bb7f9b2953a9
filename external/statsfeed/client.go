package statsfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-draft/internal/domain/playerstats"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const maxResponseBytes = 4 << 20

var errFeedTransient = crerr.New("stats feed transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads per-gameweek player stat lines from the upstream feed.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	maxRetries int
	backoff    time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      strings.TrimSpace(cfg.Token),
		maxRetries: max(cfg.MaxRetries, 0),
		backoff:    backoff,
		logger:     logger,
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}
}

func (c *Client) GameweekStats(ctx context.Context, gameweek int) ([]playerstats.StatLine, error) {
	if gameweek < 1 {
		return nil, fmt.Errorf("%w: gameweek must be >= 1", usecase.ErrInvalidInput)
	}
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: stats feed base url is not configured", usecase.ErrDependencyUnavailable)
	}
	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "stats feed circuit breaker rejected request", "state", c.breaker.State(), "gameweek", gameweek)
		return nil, fmt.Errorf("%w: stats feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}

	fullURL := c.baseURL + "/gameweeks/" + strconv.Itoa(gameweek) + "/stats"
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if reqErr != nil && isTransient(reqErr) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	var payload statsEnvelope
	if err := sonic.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode stats feed payload: %w", err)
	}

	lines := make([]playerstats.StatLine, 0, len(payload.Data))
	for _, item := range payload.Data {
		playerID := strings.TrimSpace(item.PlayerID)
		if playerID == "" {
			continue
		}
		lineGameweek := item.Gameweek
		if lineGameweek == 0 {
			lineGameweek = gameweek
		}
		if lineGameweek != gameweek {
			continue
		}
		lines = append(lines, playerstats.StatLine{
			PlayerID: playerID,
			Gameweek: lineGameweek,
			Minutes:  max(item.Minutes, 0),
			Points:   item.Points,
		})
	}
	return lines, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		raw, err := c.fetchOnce(ctx, fullURL)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if !isTransient(err) || attempt == c.maxRetries {
			break
		}

		timer := time.NewTimer(time.Duration(attempt+1) * c.backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "stats feed request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, crerr.Wrapf(crerr.Mark(err, errFeedTransient), "send request")
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return nil, crerr.Wrapf(crerr.Mark(err, errFeedTransient), "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := fmt.Errorf("stats feed status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
		if isRetryableStatus(resp.StatusCode) {
			return nil, crerr.Mark(statusErr, errFeedTransient)
		}
		return nil, statusErr
	}

	return append([]byte(nil), buf.B...), nil
}

func isTransient(err error) bool {
	return err != nil && crerr.Is(err, errFeedTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

type statsEnvelope struct {
	Data []statItem `json:"data"`
}

type statItem struct {
	PlayerID string `json:"player_id"`
	Gameweek int    `json:"gameweek"`
	Minutes  int    `json:"minutes"`
	Points   int    `json:"points"`
}

var _ playerstats.Feed = (*Client)(nil)
