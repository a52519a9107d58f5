package mirror

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zgw/internal/reference"
	dErrors "zgw/pkg/domain-errors"
)

func testClient(serverURL string) *Client {
	registry := reference.NewInMemoryRegistry(reference.Service{
		Label:    "brc",
		APIRoot:  serverURL,
		ClientID: "zrc-client",
		Secret:   "s3cret",
	})
	return NewClient(registry, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateMirrorReturnsAssignedURL(t *testing.T) {
	var gotAuth, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"url": r.Host + "/bio/1", "informatieobject": body["informatieobject"]})
	}))
	defer server.Close()

	client := testClient(server.URL)
	url, err := client.CreateMirror(context.Background(), server.URL+"/besluitinformatieobjecten",
		map[string]string{"informatieobject": "https://drc.example.org/d/1"})
	require.NoError(t, err)
	assert.Contains(t, url, "/bio/1")
	assert.True(t, strings.HasPrefix(gotAuth, "Bearer "))
	assert.Equal(t, "application/json", gotContentType)
}

func TestCreateMirrorUnknownServiceIsBadURL(t *testing.T) {
	client := NewClient(reference.NewInMemoryRegistry(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.CreateMirror(context.Background(), "https://unknown.example.org/x", nil)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadURL))
}

func TestDeleteMirrorTreats404AsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := testClient(server.URL)
	assert.NoError(t, client.DeleteMirror(context.Background(), server.URL+"/bio/1"))
}

func TestDeleteMirrorRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer server.Close()

	client := testClient(server.URL)
	assert.Error(t, client.DeleteMirror(context.Background(), server.URL+"/bio/1"))
}

func TestClientCircuitOpensOnRepeatedServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := testClient(server.URL)
	for range 5 {
		_, err := client.CreateMirror(context.Background(), server.URL+"/bio", nil)
		require.Error(t, err)
	}
	require.Equal(t, 5, calls)

	// Circuit is open; no further network call is made.
	_, err := client.CreateMirror(context.Background(), server.URL+"/bio", nil)
	require.Error(t, err)
	assert.Equal(t, 5, calls)
}
