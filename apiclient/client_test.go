package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAllNormalizesWireVariants(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id": 1, "imageurl": "https://cdn.example.com/a.jpg", "category": "tops", "color": "Black", "description": "Black Tee"},
			{"id": "2", "image_url": "https://cdn.example.com/b.jpg", "category": "shoes", "color": "White", "description": "White Sneakers"},
			{"id": 3, "imageData": "data:image/jpeg;base64,xyz", "category": "bottoms", "color": "Blue", "description": "Blue Jeans"}
		]`))
	}))
	defer server.Close()

	client := New(server.URL, StaticToken("token-123"))
	items, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)

	// numeric and quoted ids both come out as plain strings
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "2", items[1].ID)
	assert.Equal(t, "3", items[2].ID)

	// all three image field spellings land in ImageRef
	assert.Equal(t, "https://cdn.example.com/a.jpg", items[0].ImageRef)
	assert.Equal(t, "https://cdn.example.com/b.jpg", items[1].ImageRef)
	assert.Equal(t, "data:image/jpeg;base64,xyz", items[2].ImageRef)
}

func TestFetchAllNoToken(t *testing.T) {
	client := New("http://localhost:1", nil)
	_, err := client.FetchAll(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Reason, "no access token")
}

func TestFetchAllRejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "invalid or expired jwt"}`))
	}))
	defer server.Close()

	client := New(server.URL, StaticToken("stale"))
	_, err := client.FetchAll(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestFetchAllTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := New(server.URL, StaticToken("token"))
	_, err := client.FetchAll(context.Background())

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.NotNil(t, errors.Unwrap(transportErr))
}

func TestCreateReturnsCanonicalItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42, "imageurl": "https://cdn.example.com/42.jpg", "category": "tops", "color": "Black", "description": "Black Tee"}`))
	}))
	defer server.Close()

	client := New(server.URL, StaticToken("token"))
	item, err := client.Create(context.Background(), ItemDraft{
		ImageData:   "aGVsbG8=",
		MimeType:    "image/jpeg",
		Category:    "tops",
		Color:       "Black",
		Style:       "casual",
		Season:      "all-season",
		Description: "Black Tee",
	})
	require.NoError(t, err)
	assert.Equal(t, "42", item.ID)
	assert.Equal(t, "https://cdn.example.com/42.jpg", item.ImageRef)
}

func TestDeleteRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/7", r.URL.Path)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "You do not own this item"}`))
	}))
	defer server.Close()

	client := New(server.URL, StaticToken("token"))
	err := client.Delete(context.Background(), "7")

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusForbidden, remoteErr.StatusCode)
	assert.Equal(t, "You do not own this item", remoteErr.Message)
}

func TestAnalyzeOk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)
		// analyze is open, no Authorization header expected
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"category": "tops", "color": "Navy Blue", "pattern": "solid", "style": "casual", "season": "all-season", "description": "Navy Tee"}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	analysis, err := client.Analyze(context.Background(), "aGVsbG8=", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "tops", analysis.Category)
	assert.Equal(t, "Navy Tee", analysis.Description)
}

func TestAnalyzeServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Server missing GENAI_API_KEY environment variable"}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	_, err := client.Analyze(context.Background(), "aGVsbG8=", "image/jpeg")

	var unavailable *ServiceUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Contains(t, unavailable.Message, "GENAI_API_KEY")
}

func TestAnalyzeBadRequestIsRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Missing imageData or mimetype"}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	_, err := client.Analyze(context.Background(), "", "")

	var remoteErr *RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadRequest, remoteErr.StatusCode)
}
