package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"zgw/internal/reference"
	"zgw/internal/zgwjwt"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/circuit"
	"zgw/pkg/platform/sentinel"
	"zgw/pkg/requestcontext"
)

// Client is the HTTP PeerClient. Calls run under a bounded timeout so a hung
// peer fails fast and compensation can fire; consecutive failures per peer
// open a circuit that short-circuits further calls during cooldown.
type Client struct {
	registry reference.Registry
	http     *http.Client
	logger   *slog.Logger

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds each peer call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func NewClient(registry reference.Registry, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		registry: registry,
		http:     &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
		breakers: map[string]*circuit.Breaker{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) breakerFor(apiRoot string) *circuit.Breaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.breakers[apiRoot]
	if !ok {
		b = circuit.New(apiRoot, circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second))
		c.breakers[apiRoot] = b
	}
	return b
}

var errPeerUnavailable = fmt.Errorf("peer unavailable: %w", sentinel.ErrUnavailable)

func (c *Client) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	svc, err := c.registry.Match(ctx, url)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeBadURL, "the URL does not belong to a registered service")
		}
		return nil, fmt.Errorf("match service for %s: %w", url, err)
	}

	breaker := c.breakerFor(svc.APIRoot)
	if breaker.IsOpen() {
		return nil, errPeerUnavailable
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal mirror payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadURL, "the mirror URL is invalid")
	}
	token, err := zgwjwt.Mint(svc.ClientID, svc.Secret, requestcontext.UserID(ctx), requestcontext.UserRepresentation(ctx))
	if err != nil {
		return nil, fmt.Errorf("mint token for %s: %w", svc.Label, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if _, change := breaker.RecordFailure(); change.Opened {
			c.logger.Warn("peer circuit opened", "service", svc.Label, "api_root", svc.APIRoot)
		}
		return nil, errPeerUnavailable
	}
	if resp.StatusCode >= 500 {
		resp.Body.Close()
		if _, change := breaker.RecordFailure(); change.Opened {
			c.logger.Warn("peer circuit opened", "service", svc.Label, "api_root", svc.APIRoot)
		}
		return nil, fmt.Errorf("peer returned status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}
	if change := breaker.RecordSuccess(); change.Closed {
		c.logger.Info("peer circuit closed", "service", svc.Label)
	}
	return resp, nil
}

// CreateMirror POSTs the mirror row and returns the URL the peer assigned.
func (c *Client) CreateMirror(ctx context.Context, collectionURL string, body any) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, collectionURL, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("peer rejected mirror create with status %d", resp.StatusCode)
	}

	var created struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&created); err != nil || created.URL == "" {
		return "", dErrors.New(dErrors.CodeInvalidResource, "the peer did not return the mirror row URL")
	}
	return created.URL, nil
}

// DeleteMirror removes the mirror row. A 404 counts as success; the mirror is
// already gone and deletes stay idempotent.
func (c *Client) DeleteMirror(ctx context.Context, mirrorURL string) error {
	resp, err := c.do(ctx, http.MethodDelete, mirrorURL, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("peer rejected mirror delete with status %d", resp.StatusCode)
	}
}
