package aliexpress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "aliexpress-datahub.p.rapidapi.com")

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "aliexpress-datahub.p.rapidapi.com", client.host)
	assert.Equal(t, "https://aliexpress-datahub.p.rapidapi.com", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestSearchItems_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/item_search_2", r.URL.Path)
		assert.Equal(t, "usb c hub", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "test-api-key", r.Header.Get("X-RapidAPI-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":{"status":{"code":200},"items":[{"title":"USB C Hub"},{"title":"7in1 Hub"}]}}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", "example.test")
	client.SetBaseURL(server.URL)

	result, err := client.SearchItems(context.Background(), "usb c hub", 1)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.Status)
	assert.Len(t, result.Items, 2)
	assert.Equal(t, "200", result.ProviderStatusCode)
	assert.Contains(t, result.URL, "q=usb+c+hub")
	assert.NotEmpty(t, result.RawHead)
	assert.False(t, result.BudgetExceeded)
}

func TestSearchItems_AlternateItemContainers(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{
			name: "result.items",
			body: `{"result":{"items":[{},{}]}}`,
			want: 2,
		},
		{
			name: "result.resultList",
			body: `{"result":{"resultList":[{}]}}`,
			want: 1,
		},
		{
			name: "data.items",
			body: `{"data":{"items":[{},{},{}]}}`,
			want: 3,
		},
		{
			name: "top-level items",
			body: `{"items":[{}]}`,
			want: 1,
		},
		{
			name: "no recognizable container",
			body: `{"result":{"count":5}}`,
			want: 0,
		},
		{
			name: "items not an array",
			body: `{"items":{"title":"x"}}`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient("test-api-key", "example.test")
			client.SetBaseURL(server.URL)

			result, err := client.SearchItems(context.Background(), "widget", 1)

			require.NoError(t, err)
			assert.Len(t, result.Items, tt.want)
		})
	}
}

func TestSearchItems_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>Upstream proxy error</html>`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", "example.test")
	client.SetBaseURL(server.URL)

	result, err := client.SearchItems(context.Background(), "widget", 1)

	// Malformed payloads degrade to zero items, never to an error
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, "<html>Upstream proxy error</html>", result.RawHead)
}

func TestSearchItems_UpstreamFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"quota exceeded"}`))
	}))
	defer server.Close()

	client := NewClient("test-api-key", "example.test")
	client.SetBaseURL(server.URL)

	result, err := client.SearchItems(context.Background(), "widget", 1)

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, result.Status)
	assert.Empty(t, result.Items)
}

func TestSearchItems_TransportError(t *testing.T) {
	client := NewClient("test-api-key", "example.test")
	client.SetBaseURL("http://127.0.0.1:1")

	_, err := client.SearchItems(context.Background(), "widget", 1)

	assert.Error(t, err)
}

func TestProviderStatusCode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"object status with code", `{"result":{"status":{"code":4002,"data":"rate limit"}}}`, "4002"},
		{"scalar status", `{"result":{"status":"ok"}}`, "ok"},
		{"numeric scalar status", `{"result":{"status":200}}`, "200"},
		{"missing status", `{"result":{}}`, ""},
		{"no result", `{}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded interface{}
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &decoded))
			assert.Equal(t, tt.want, providerStatusCode(decoded))
		})
	}
}

func TestRawHead_Truncation(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}

	assert.Len(t, rawHead(long), rawHeadLen)
	assert.Equal(t, "short", rawHead([]byte("short")))
}
