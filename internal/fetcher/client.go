package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/quantmind-br/scaffold-go/internal/domain"
	"github.com/quantmind-br/scaffold-go/internal/utils"
)

// DefaultMaxSize bounds the archive body when no limit is configured
const DefaultMaxSize int64 = 100 * 1024 * 1024

// Client downloads template archives over plain HTTP
type Client struct {
	httpClient *http.Client
	retrier    *Retrier
	userAgent  string
	maxSize    int64
	logger     *utils.Logger
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	// HTTPClient overrides the underlying client; Timeout is ignored when set
	HTTPClient *http.Client
	// Timeout of 0 leaves the request unbounded
	Timeout time.Duration
	// MaxRetries of 0 means a single attempt
	MaxRetries int
	// RetryInterval is the first backoff delay, 1s when unset
	RetryInterval time.Duration

	MaxSize   int64
	UserAgent string
	Logger    *utils.Logger
}

// DefaultClientOptions returns default client options
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		Timeout:    0,
		MaxRetries: 0,
		MaxSize:    DefaultMaxSize,
	}
}

// NewClient creates a new archive client
func NewClient(opts ClientOptions) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Client{
		httpClient: httpClient,
		retrier: NewRetrier(RetrierOptions{
			MaxRetries:      opts.MaxRetries,
			InitialInterval: opts.RetryInterval,
			MaxInterval:     30 * time.Second,
			Multiplier:      2.0,
		}),
		userAgent: opts.UserAgent,
		maxSize:   opts.MaxSize,
		logger:    logger.WithComponent("fetcher"),
	}
}

// Fetch downloads the complete body at url.
// Any failure is returned as a *domain.FetchError.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	logger := c.logger.WithURL(url)
	logger.Debug().Msg("Downloading archive")

	body, err := RetryWithValue(ctx, c.retrier, func() ([]byte, error) {
		return c.doRequest(ctx, url)
	})
	if err != nil {
		var retryable *domain.RetryableError
		if errors.As(err, &retryable) {
			err = retryable.Err
		}
		var fetchErr *domain.FetchError
		if !errors.As(err, &fetchErr) {
			err = domain.NewFetchError(url, 0, err)
		}
		return nil, err
	}

	logger.Debug().Int("bytes", len(body)).Msg("Archive downloaded")
	return body, nil
}

// doRequest performs a single GET
func (c *Client) doRequest(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, domain.NewFetchError(url, 0, fmt.Errorf("failed to create request: %w", err))
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewFetchError(url, 0, classifyTransportError(ctx, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		cause := fmt.Errorf("HTTP %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests {
			cause = fmt.Errorf("%w: HTTP %d", domain.ErrRateLimited, resp.StatusCode)
		}
		fetchErr := domain.NewFetchError(url, resp.StatusCode, cause)
		if ShouldRetryStatus(resp.StatusCode) {
			return nil, &domain.RetryableError{
				Err:        fetchErr,
				RetryAfter: int(ParseRetryAfter(resp.Header.Get("Retry-After")).Seconds()),
			}
		}
		return nil, fetchErr
	}

	if resp.ContentLength > c.maxSize {
		return nil, domain.NewFetchError(url, resp.StatusCode,
			fmt.Errorf("%w: %d bytes > %d", domain.ErrTooLarge, resp.ContentLength, c.maxSize))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxSize+1))
	if err != nil {
		return nil, domain.NewFetchError(url, resp.StatusCode,
			fmt.Errorf("failed to read response body: %w", classifyTransportError(ctx, err)))
	}
	if int64(len(body)) > c.maxSize {
		return nil, domain.NewFetchError(url, resp.StatusCode,
			fmt.Errorf("%w: more than %d bytes", domain.ErrTooLarge, c.maxSize))
	}

	return body, nil
}

// classifyTransportError tags client timeouts so they can be retried,
// while caller cancellation stays permanent.
func classifyTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrTimeout, err)
	}
	return fmt.Errorf("request failed: %w", err)
}
