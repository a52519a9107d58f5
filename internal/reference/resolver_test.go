package reference

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "zgw/pkg/domain-errors"
	"zgw/pkg/requestcontext"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestFetchAuthenticatesWithPeerCredentials(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"url":"` + r.URL.String() + `","omschrijving":"melding"}`))
	}))
	defer server.Close()

	registry := NewInMemoryRegistry(Service{
		Label:    "ztc",
		APIRoot:  server.URL + "/api/v1",
		ClientID: "zrc-client",
		Secret:   "s3cret",
	})
	resolver := NewResolver(registry, testLogger())

	ctx := requestcontext.WithUserID(context.Background(), "user-1")
	obj, err := resolver.Fetch(ctx, server.URL+"/api/v1/zaaktypen/abc")
	require.NoError(t, err)
	assert.True(t, obj.Remote())
	assert.Contains(t, string(obj.Body), "melding")
	assert.True(t, strings.HasPrefix(gotAuth, "Bearer "), "expected a bearer token, got %q", gotAuth)
}

func TestFetchUnknownServiceIsBadURL(t *testing.T) {
	resolver := NewResolver(NewInMemoryRegistry(), testLogger())

	_, err := resolver.Fetch(context.Background(), "https://unknown.example.org/api/v1/zaaktypen/abc")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadURL))
}

func TestFetchErrorStatusIsBadURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	registry := NewInMemoryRegistry(Service{Label: "ztc", APIRoot: server.URL, ClientID: "c", Secret: "s"})
	resolver := NewResolver(registry, testLogger())

	_, err := resolver.Fetch(context.Background(), server.URL+"/zaaktypen/abc")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadURL))
}

func TestFetchInvalidJSONIsInvalidResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	registry := NewInMemoryRegistry(Service{Label: "ztc", APIRoot: server.URL, ClientID: "c", Secret: "s"})
	resolver := NewResolver(registry, testLogger())

	_, err := resolver.Fetch(context.Background(), server.URL+"/zaaktypen/abc")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidResource))
}

func TestFetchUsesCache(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Write([]byte(`{"url":"x"}`))
	}))
	defer server.Close()

	registry := NewInMemoryRegistry(Service{Label: "ztc", APIRoot: server.URL, ClientID: "c", Secret: "s"})
	resolver := NewResolver(registry, testLogger(), WithCache(NewMemoryCache()))

	for range 3 {
		_, err := resolver.Fetch(context.Background(), server.URL+"/zaaktypen/abc")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls, "second and third fetch should be served from cache")
}

func TestFetchCircuitOpensAfterRepeatedFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	registry := NewInMemoryRegistry(Service{Label: "ztc", APIRoot: server.URL, ClientID: "c", Secret: "s"})
	resolver := NewResolver(registry, testLogger())

	for range 5 {
		_, err := resolver.Fetch(context.Background(), server.URL+"/zaaktypen/abc")
		require.Error(t, err)
	}
	server.Close()

	// Circuit is open now; the fetch fails fast without a network call.
	_, err := resolver.Fetch(context.Background(), server.URL+"/zaaktypen/abc")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadURL))
}

func TestFetchInto(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"url":"https://ztc.example.org/api/v1/zaaktypen/abc","concept":true}`))
	}))
	defer server.Close()

	registry := NewInMemoryRegistry(Service{Label: "ztc", APIRoot: server.URL, ClientID: "c", Secret: "s"})
	resolver := NewResolver(registry, testLogger())

	var proxy struct {
		URL     string `json:"url"`
		Concept bool   `json:"concept"`
	}
	require.NoError(t, resolver.FetchInto(context.Background(), server.URL+"/zaaktypen/abc", &proxy))
	assert.True(t, proxy.Concept)
}
