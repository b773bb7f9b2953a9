package jobqueue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-draft/internal/platform/logging"
	"github.com/riskibarqy/fantasy-draft/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultQStashBaseURL = "https://qstash.upstash.io"

var errQStashTransient = crerr.New("qstash transient failure")

type QStashConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Token      string
	// TargetBaseURL is this service's public origin; QStash calls it back.
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
	Logger           *logging.Logger
}

// QStashPublisher hands delayed internal jobs to Upstash QStash, which
// forwards them to the internal job routes with the job token attached.
type QStashPublisher struct {
	httpClient       *http.Client
	baseURL          string
	token            string
	targetBaseURL    string
	retries          int
	internalJobToken string
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
}

// NewQStashPublisher fails on a missing token or a non-http base URL.
func NewQStashPublisher(cfg QStashConfig) (*QStashPublisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	rawBase := cfg.BaseURL
	if strings.TrimSpace(rawBase) == "" {
		rawBase = DefaultQStashBaseURL
	}
	baseURL, err := validateHTTPBaseURL(rawBase)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(cfg.TargetBaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, crerr.New("QSTASH_TOKEN is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	return &QStashPublisher{
		httpClient:       httpClient,
		baseURL:          baseURL,
		token:            token,
		targetBaseURL:    targetBaseURL,
		retries:          max(cfg.Retries, 0),
		internalJobToken: strings.TrimSpace(cfg.InternalJobToken),
		logger:           logger,
		breaker:          resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

// Enqueue publishes a POST of payload to path on the target service after
// delay. QStash drops a second publish with the same deduplicationID.
func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}
	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State(), "path", path)
		return fmt.Errorf("qstash is temporarily unavailable: %w", err)
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "marshal job payload")
	}

	targetURL := p.targetBaseURL + path
	publishURL := p.baseURL + "/v2/publish/" + targetURL
	delayHeader := formatDelay(delay)
	deduplicationID = strings.TrimSpace(deduplicationID)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", targetURL),
			attribute.String("qstash.delay", delayHeader),
			attribute.String("qstash.deduplication_id", deduplicationID),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request",
		"target_url", targetURL,
		"curl_preview", p.curlPreview(publishURL, delayHeader, deduplicationID, body),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	if p.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(p.retries))
	}
	if delay > 0 {
		req.Header.Set("Upstash-Delay", delayHeader)
	}
	if deduplicationID != "" {
		req.Header.Set("Upstash-Deduplication-Id", deduplicationID)
	}
	if p.internalJobToken != "" {
		req.Header.Set("Upstash-Forward-X-Internal-Job-Token", p.internalJobToken)
	}

	err = p.send(req, targetURL)
	if err != nil && crerr.Is(err, errQStashTransient) {
		p.breaker.RecordFailure()
	} else {
		p.breaker.RecordSuccess()
	}
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published",
		"path", path,
		"delay", delayHeader,
		"deduplication_id", deduplicationID,
	)
	return nil
}

func (p *QStashPublisher) send(req *http.Request, targetURL string) error {
	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return ctxErr
		}
		return crerr.Wrapf(crerr.Mark(err, errQStashTransient), "publish qstash job target_url=%s", targetURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 == 2 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	statusErr := fmt.Errorf("publish qstash job status=%d target_url=%s body=%s",
		resp.StatusCode,
		targetURL,
		strings.TrimSpace(string(raw)),
	)
	if isRetryableStatus(resp.StatusCode) {
		return crerr.Mark(statusErr, errQStashTransient)
	}
	return statusErr
}

// curlPreview renders the publish call with secrets masked for debug logs.
func (p *QStashPublisher) curlPreview(publishURL, delay, deduplicationID string, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	part := func(s string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(s)
	}
	header := func(h string) {
		part("-H")
		part(shellQuote(h))
	}

	part("curl -X POST")
	part(shellQuote(publishURL))
	header("Authorization: Bearer ***")
	header("Content-Type: application/json")
	if p.retries > 0 {
		header("Upstash-Retries: " + strconv.Itoa(p.retries))
	}
	if delay != "0s" {
		header("Upstash-Delay: " + delay)
	}
	if deduplicationID != "" {
		header("Upstash-Deduplication-Id: " + deduplicationID)
	}
	if p.internalJobToken != "" {
		header("Upstash-Forward-X-Internal-Job-Token: ***")
	}
	part("-d")
	part(shellQuote(string(body)))

	return buf.String()
}

func formatDelay(delay time.Duration) string {
	seconds := int64(delay.Round(time.Second) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return strconv.FormatInt(seconds, 10) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
