package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/harlowprint/backoffice-backend/pkg/config"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
)

var (
	errAccessTokenRequired = errors.New("shopify access token is required")
	errStoreDomainRequired = errors.New("shopify store domain is required")
	errLoggerRequired      = errors.New("shopify logger is required")
)

// Client wraps the Shopify Admin REST and GraphQL APIs with centralized
// auth, rate-limit retry, pagination, and error mapping.
type Client struct {
	cfg        config.ShopifyConfig
	domain     string
	baseURL    string
	graphqlURL string
	httpClient *http.Client
	logger     *logger.Logger

	// sleep is swapped out in tests to avoid real backoff waits.
	sleep func(time.Duration)
}

// NewClient validates credentials and builds the platform client.
func NewClient(cfg config.ShopifyConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	domain := cfg.Domain()
	if domain == "" {
		return nil, errStoreDomainRequired
	}
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errAccessTokenRequired
	}

	base := fmt.Sprintf("https://%s/admin/api/%s", domain, cfg.APIVersion)
	return &Client{
		cfg:        cfg,
		domain:     domain,
		baseURL:    base,
		graphqlURL: base + "/graphql.json",
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logg,
		sleep:      time.Sleep,
	}, nil
}

// Domain reports the normalized store domain.
func (c *Client) Domain() string {
	if c == nil {
		return ""
	}
	return c.domain
}

// Ping verifies the Admin API is reachable with the configured token.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Shop struct {
			ID int64 `json:"id"`
		} `json:"shop"`
	}
	_, err := c.doREST(ctx, http.MethodGet, c.baseURL+"/shop.json", nil, &out)
	return err
}

// doREST performs one logical REST call. HTTP 429 responses are retried
// with a fixed backoff and an unchanged payload, up to cfg.MaxRetries times.
func (c *Client) doREST(ctx context.Context, method, rawURL string, body any, out any) (http.Header, error) {
	var payload []byte
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		payload = encoded
	}

	attempts := c.cfg.MaxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(payload))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Access-Token", c.cfg.AccessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("shopify %s %s", method, redactURL(rawURL)))
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, readErr, "reading shopify response")
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			c.logger.Warn(c.logger.WithFields(ctx, map[string]any{
				"attempt": attempt + 1,
				"backoff": c.cfg.RateLimitBackoff.String(),
			}), "shopify rate limited, backing off")
			lastErr = pkgerrors.New(pkgerrors.CodeRateLimit, "shopify rate limit exceeded")
			c.sleep(c.cfg.RateLimitBackoff)
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, restError(resp.StatusCode, method, rawURL, respBody)
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding shopify response")
			}
		}
		return resp.Header, nil
	}
	if lastErr == nil {
		lastErr = pkgerrors.New(pkgerrors.CodeRateLimit, "shopify rate limit retries exhausted")
	}
	return nil, lastErr
}

func restError(status int, method, rawURL string, body []byte) error {
	msg := fmt.Sprintf("shopify %s %s returned %d", method, redactURL(rawURL), status)
	err := pkgerrors.New(codeForStatus(status), msg)
	if len(body) > 0 {
		var details any
		if json.Unmarshal(body, &details) == nil {
			err = err.WithDetails(details)
		}
	}
	return err
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusConflict:
		return pkgerrors.CodeConflict
	case http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}

// nextPageURL extracts the rel="next" target from a Link header, or "".
func nextPageURL(header http.Header) string {
	link := header.Get("Link")
	if link == "" {
		return ""
	}
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}
	return ""
}

func redactURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	parsed.RawQuery = ""
	return parsed.String()
}
