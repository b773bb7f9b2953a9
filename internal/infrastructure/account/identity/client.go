package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-draft/internal/domain/participant"
	"github.com/riskibarqy/fantasy-draft/internal/platform/cache"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-draft/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

var errIdentityTransient = crerr.New("identity provider transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	IntrospectPath string
	AdminKey       string
	Timeout        time.Duration
	CacheTTL       time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
}

// Client resolves bearer tokens to participants through the identity
// provider's introspection endpoint.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	breaker       *resilience.CircuitBreaker
	cache         *cache.Store[participant.Principal]
	logger        *logging.Logger
	now           func() time.Time
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
		httpClient.Timeout = 5 * time.Second
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(cfg.BaseURL, cfg.IntrospectPath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		breaker:       resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		cache:         cache.NewStore[participant.Principal](ttl),
		logger:        logger,
		now:           time.Now,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (participant.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return participant.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	return c.cache.GetOrLoad(ctx, hashToken(token), func(ctx context.Context) (participant.Principal, error) {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "identity circuit breaker rejected request", "state", c.breaker.State())
			return participant.Principal{}, fmt.Errorf("%w: identity provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}

		principal, err := c.introspect(ctx, token)
		if err != nil && crerr.Is(err, errIdentityTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		return principal, err
	})
}

func (c *Client) introspect(ctx context.Context, token string) (participant.Principal, error) {
	body := bytebufferpool.Get()
	defer bytebufferpool.Put(body)

	if err := sonic.ConfigDefault.NewEncoder(body).Encode(introspectRequest{Token: token}); err != nil {
		return participant.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, strings.NewReader(body.String()))
	if err != nil {
		return participant.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return participant.Principal{}, ctx.Err()
		}
		return participant.Principal{}, crerr.Mark(
			fmt.Errorf("%w: request introspection: %v", usecase.ErrDependencyUnavailable, err),
			errIdentityTransient,
		)
	}
	defer resp.Body.Close()

	respBody := bytebufferpool.Get()
	defer bytebufferpool.Put(respBody)
	if _, err := respBody.ReadFrom(io.LimitReader(resp.Body, 1<<20)); err != nil {
		return participant.Principal{}, crerr.Mark(
			fmt.Errorf("%w: read introspect response: %v", usecase.ErrDependencyUnavailable, err),
			errIdentityTransient,
		)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return participant.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		c.logger.WarnContext(ctx, "identity provider rejected admin key", "status_code", resp.StatusCode)
		return participant.Principal{}, fmt.Errorf("%w: identity provider rejected credentials", usecase.ErrDependencyUnavailable)
	case resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests:
		return participant.Principal{}, crerr.Mark(
			fmt.Errorf("%w: identity provider status %d", usecase.ErrDependencyUnavailable, resp.StatusCode),
			errIdentityTransient,
		)
	case resp.StatusCode != http.StatusOK:
		return participant.Principal{}, fmt.Errorf("identity introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(respBody.B, &decoded); err != nil {
		return participant.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}
	if !decoded.Active {
		return participant.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if decoded.ExpiresAt > 0 && !time.Unix(decoded.ExpiresAt, 0).After(c.now()) {
		return participant.Principal{}, fmt.Errorf("%w: expired token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return participant.Principal{}, fmt.Errorf("invalid introspect response: user_id is empty")
	}

	return participant.Principal{
		ParticipantID: strings.TrimSpace(decoded.UserID),
		Email:         decoded.Email,
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active    bool   `json:"active"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func buildURL(baseURL, path string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return baseURL + path
}
