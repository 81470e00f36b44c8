package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/mmcdole/neurostream/internal/domain"
)

const (
	defaultTimeout          = 30 * time.Second
	defaultFailureThreshold = 5
	defaultBreakerTimeout   = 30 * time.Second
	maxBodySize             = 8 << 20
)

// Config holds the client settings
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	UserAgent        string
	FailureThreshold uint32        // consecutive transport failures before the breaker opens
	BreakerTimeout   time.Duration // how long the breaker stays open
}

// Client implements domain.RecommendRepository, domain.DetailRepository and
// domain.TrailerRepository against the NeuroStream backend
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[response]
	logger     *slog.Logger
}

// response is what a request produced before status mapping
type response struct {
	status int
	body   []byte
}

// NewClient creates a new API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = defaultBreakerTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "NeuroStream/dev"
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}

	threshold := cfg.FailureThreshold
	c.breaker = gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
		Name:        "neurostream-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
		// Only transport failures count against the backend
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, domain.ErrServiceUnavailable)
		},
	})
	return c
}

// BreakerState returns the circuit breaker state for display and tests
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// doRequest performs an HTTP request through the circuit breaker
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) (response, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, query.Encode())
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("api request", "method", method, "url", reqURL, "request_id", requestID)

	resp, err := c.breaker.Execute(func() (response, error) {
		r, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return response{}, ctx.Err()
			}
			return response{}, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
		}
		defer r.Body.Close()

		data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
		if err != nil {
			if ctx.Err() != nil {
				return response{}, ctx.Err()
			}
			return response{}, fmt.Errorf("%w: failed to read response: %v", domain.ErrServiceUnavailable, err)
		}
		return response{status: r.StatusCode, body: data}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn("api request rejected", "url", reqURL, "breaker", c.breaker.State().String())
			return response{}, fmt.Errorf("%w: %v", domain.ErrServiceUnavailable, err)
		}
		if !errors.Is(err, context.Canceled) {
			c.logger.Error("api request failed", "url", reqURL, "request_id", requestID, "error", err)
		}
		return response{}, err
	}

	c.logger.Debug("api response", "status", resp.status, "bytes", len(resp.body), "request_id", requestID)
	return resp, nil
}

// statusError maps a non-2xx response to a domain error
func (c *Client) statusError(resp response) error {
	if resp.status == http.StatusNotFound {
		return domain.ErrNotFound
	}
	msg := backendError(resp.body)
	c.logger.Error("api request error", "status", resp.status, "error", msg)
	if msg != "" {
		return fmt.Errorf("%w %d: %s", domain.ErrUnexpectedStatus, resp.status, msg)
	}
	return fmt.Errorf("%w %d", domain.ErrUnexpectedStatus, resp.status)
}

// backendError extracts the message from an {error} body, if there is one
func backendError(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	return e.Error
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// Recommend fetches one page of recommendations. An empty slice means the
// backend has nothing more for these parameters.
func (c *Client) Recommend(ctx context.Context, params domain.RecommendParams) ([]domain.Item, error) {
	mode := params.Mode
	if mode == "" {
		mode = domain.ModeSearch
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	payload := recommendRequest{
		Type:  string(params.Type),
		Mode:  string(mode),
		Query: params.Query,
		Page:  page,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/recommend", nil, payload)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		return nil, c.statusError(resp)
	}

	body := bytes.TrimSpace(resp.body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	if body[0] == '{' {
		if msg := backendError(body); msg != "" {
			return nil, fmt.Errorf("%w: %s", domain.ErrMalformedResponse, msg)
		}
		return nil, fmt.Errorf("%w: expected an array", domain.ErrMalformedResponse)
	}

	var dtos []itemDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return MapItems(dtos), nil
}

// GetDetail fetches the detail record for one item
func (c *Client) GetDetail(ctx context.Context, category domain.Category, id string) (*domain.Detail, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	path := fmt.Sprintf("/api/details/%s/%s", url.PathEscape(string(category)), url.PathEscape(id))
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) {
		return nil, c.statusError(resp)
	}

	var dto detailDTO
	if err := json.Unmarshal(resp.body, &dto); err != nil {
		c.logger.Error("JSON parse error", "error", err, "bodyLen", len(resp.body))
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if dto.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, dto.Error)
	}
	return MapDetail(dto), nil
}

// FindTrailer looks up a trailer by cleaned title. A missing trailer is a
// zero Trailer, not an error.
func (c *Client) FindTrailer(ctx context.Context, category domain.Category, titleSlug, year string) (domain.Trailer, error) {
	query := url.Values{}
	query.Set("year", year)
	query.Set("type", trailerType(category))

	path := "/api/trailer/" + url.PathEscape(titleSlug)
	resp, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return domain.Trailer{}, err
	}
	if resp.status == http.StatusNotFound {
		return domain.Trailer{}, nil
	}
	if !isSuccess(resp.status) {
		return domain.Trailer{}, c.statusError(resp)
	}

	var dto trailerDTO
	if err := json.Unmarshal(resp.body, &dto); err != nil {
		return domain.Trailer{}, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return domain.Trailer{Key: dto.Key}, nil
}

// trailerType is the singular type name the trailer endpoint expects
func trailerType(category domain.Category) string {
	if category == domain.CategoryGames {
		return "game"
	}
	return "movie"
}
