package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config holds HTTP transport settings.
type Config struct {
	// Timeout is the per-request timeout.
	Timeout time.Duration

	// RetryMax is the maximum number of transport-level retries for
	// connect errors, 5xx, and 429.
	RetryMax int

	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration

	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// RequestsPerSecond optionally caps the local request rate before the
	// wire. Zero disables the cap; the leaky-bucket throttle upstream is
	// the primary rate control.
	RequestsPerSecond float64
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		RetryMax:     2,
		RetryWaitMin: 1 * time.Second,
		RetryWaitMax: 30 * time.Second,
	}
}

// HTTPTransport is the production Transport. Retries are delegated to
// retryablehttp, which backs off exponentially with jitter and honors
// Retry-After on 429.
type HTTPTransport struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewHTTPTransport creates a transport with the given configuration.
func NewHTTPTransport(cfg Config, logger zerolog.Logger) *HTTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = &retryLogger{logger: logger}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &HTTPTransport{
		client:  client,
		limiter: limiter,
		logger:  logger,
	}
}

// Post implements Transport.
func (t *HTTPTransport) Post(ctx context.Context, url string, headers map[string]string, body []byte) (*Response, error) {
	if t.limiter != nil {
		if err := t.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// retryLogger adapts zerolog to retryablehttp's leveled logger interface.
type retryLogger struct {
	logger zerolog.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Error(), msg, keysAndValues)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Warn(), msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Info(), msg, keysAndValues)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.event(l.logger.Debug(), msg, keysAndValues)
}

func (l *retryLogger) event(evt *zerolog.Event, msg string, keysAndValues []interface{}) {
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		evt = evt.Interface(key, keysAndValues[i+1])
	}
	evt.Msg(msg)
}
