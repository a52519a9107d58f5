package reference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"zgw/internal/zgwjwt"
	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/platform/circuit"
	"zgw/pkg/platform/sentinel"
	"zgw/pkg/requestcontext"
)

const (
	defaultFetchTimeout = 10 * time.Second
	maxRemoteBody       = 4 << 20
)

var tracer = otel.Tracer("zgw/internal/reference")

// RemoteObject is a resolved remote resource. Callers decode Body into their
// own proxy type; Remote() distinguishes it from local rows.
type RemoteObject struct {
	URL  string
	Body json.RawMessage
}

func (RemoteObject) Remote() bool { return true }

// Cache stores resolved remote bodies for a short TTL so repeated validation
// of the same type URLs does not hammer the catalogs.
type Cache interface {
	Get(ctx context.Context, url string) ([]byte, bool)
	Set(ctx context.Context, url string, body []byte)
}

// Resolver fetches remote resources with per-service credentials. Failing
// peers trip a circuit breaker per API root so a down catalog degrades into
// fast bad-url responses instead of stacked timeouts.
type Resolver struct {
	registry Registry
	client   *http.Client
	cache    Cache
	logger   *slog.Logger

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithHTTPClient overrides the HTTP client used for peer calls.
func WithHTTPClient(client *http.Client) ResolverOption {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

// WithCache attaches a body cache.
func WithCache(cache Cache) ResolverOption {
	return func(r *Resolver) { r.cache = cache }
}

func NewResolver(registry Registry, logger *slog.Logger, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		registry: registry,
		client:   &http.Client{Timeout: defaultFetchTimeout},
		logger:   logger,
		breakers: map[string]*circuit.Breaker{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) breakerFor(apiRoot string) *circuit.Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[apiRoot]
	if !ok {
		b = circuit.New(apiRoot, circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second))
		r.breakers[apiRoot] = b
	}
	return b
}

// Fetch retrieves a remote resource. Unknown hosts, unreachable peers and
// non-2xx responses all surface as bad-url; callers never see transport
// details, only the stable error code.
func (r *Resolver) Fetch(ctx context.Context, rawURL string) (*RemoteObject, error) {
	ctx, span := tracer.Start(ctx, "reference.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("reference.url", rawURL))

	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, dErrors.New(dErrors.CodeBadURL, "reference is not a valid URL")
	}

	if r.cache != nil {
		if body, ok := r.cache.Get(ctx, rawURL); ok {
			span.SetAttributes(attribute.Bool("reference.cache_hit", true))
			return &RemoteObject{URL: rawURL, Body: body}, nil
		}
	}

	svc, err := r.registry.Match(ctx, rawURL)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeBadURL, "the URL does not belong to a registered service")
		}
		return nil, fmt.Errorf("match service for %s: %w", rawURL, err)
	}

	breaker := r.breakerFor(svc.APIRoot)
	if breaker.IsOpen() {
		span.SetStatus(codes.Error, "circuit open")
		return nil, dErrors.New(dErrors.CodeBadURL, "the service behind the URL is currently unreachable")
	}

	body, err := r.get(ctx, svc, rawURL)
	if err != nil {
		if _, change := breaker.RecordFailure(); change.Opened {
			r.logger.Warn("peer circuit opened", "service", svc.Label, "api_root", svc.APIRoot)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if change := breaker.RecordSuccess(); change.Closed {
		r.logger.Info("peer circuit closed", "service", svc.Label)
	}

	if r.cache != nil {
		r.cache.Set(ctx, rawURL, body)
	}
	return &RemoteObject{URL: rawURL, Body: body}, nil
}

func (r *Resolver) get(ctx context.Context, svc *Service, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadURL, "reference is not a valid URL")
	}

	token, err := zgwjwt.Mint(svc.ClientID, svc.Secret, requestcontext.UserID(ctx), requestcontext.UserRepresentation(ctx))
	if err != nil {
		return nil, fmt.Errorf("mint token for %s: %w", svc.Label, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("remote reference fetch failed", "url", rawURL, "error", err)
		return nil, dErrors.New(dErrors.CodeBadURL, "the URL could not be retrieved")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Warn("remote reference returned error status", "url", rawURL, "status", resp.StatusCode)
		return nil, dErrors.New(dErrors.CodeBadURL, "the URL could not be retrieved")
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadURL, "the URL could not be retrieved")
	}
	if !json.Valid(body) {
		return nil, dErrors.New(dErrors.CodeInvalidResource, "the URL did not return a valid resource")
	}
	return body, nil
}

// FetchInto fetches a remote resource and decodes it into the given proxy
// type. A body that does not match the expected shape is invalid-resource.
func (r *Resolver) FetchInto(ctx context.Context, rawURL string, target any) error {
	obj, err := r.Fetch(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(obj.Body, target); err != nil {
		return dErrors.New(dErrors.CodeInvalidResource, "the URL did not return a resource of the expected type")
	}
	return nil
}

// Validate checks that a remote URL resolves to a retrievable resource.
// Used for URL fields we store but never interpret.
func (r *Resolver) Validate(ctx context.Context, field, rawURL string) error {
	if _, err := r.Fetch(ctx, rawURL); err != nil {
		return dErrors.Param(field, dErrors.CodeOf(err), "the URL does not point at a retrievable resource")
	}
	return nil
}
