package keycrm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPayload() *OrderPayload {
	return &OrderPayload{
		SourceID:   1,
		ExternalID: 7,
		Buyer:      Buyer{FullName: "Test Buyer", Phone: "+380501234567"},
		Payments:   []PaymentInfo{{PaymentMethodID: 2, Amount: 10, Status: "not_paid"}},
		Products:   []ProductLine{},
	}
}

func TestCreateOrderSuccess(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusCreated} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/order", r.URL.Path)
			assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
			assert.Equal(t, "no-cache", r.Header.Get("Pragma"))

			var body OrderPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(7), body.ExternalID)

			w.WriteHeader(status)
		}))

		client := NewClient(server.URL, zerolog.Nop())
		err := client.CreateOrder(context.Background(), "secret-key", false, testPayload())
		assert.NoError(t, err)
		server.Close()
	}
}

func TestCreateOrderNon2xxIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("server error"))
	}))
	defer server.Close()

	client := NewClient(server.URL, zerolog.Nop())
	err := client.CreateOrder(context.Background(), "secret-key", false, testPayload())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "server error", apiErr.Body)
	assert.Contains(t, err.Error(), "code 500")
	assert.Contains(t, err.Error(), "server error")
}

func TestCreateOrderTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL, zerolog.Nop())
	err := client.CreateOrder(context.Background(), "secret-key", false, testPayload())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failure must not look like an API response")
}

func TestDefaultBaseURL(t *testing.T) {
	client := NewClient("", zerolog.Nop())
	assert.Equal(t, DefaultBaseURL, client.baseURL)

	client = NewClient("https://example.com/v1/", zerolog.Nop())
	assert.Equal(t, "https://example.com/v1", client.baseURL)
}
