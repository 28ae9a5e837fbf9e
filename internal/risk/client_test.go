package risk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDelivered(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "risk-key")
	res := c.Send(context.Background(), "user-1", "AAPL", "Price changed by 6.00%", decimal.NewFromInt(106))

	assert.True(t, res.Delivered)
	assert.Equal(t, "Bearer risk-key", gotAuth)
	assert.Equal(t, "user-1", gotBody["userId"])
	assert.Equal(t, "AAPL", gotBody["symbol"])
	assert.Equal(t, "Price changed by 6.00%", gotBody["reason"])
	assert.Equal(t, "106", gotBody["currentPrice"])
}

func TestSendFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "risk-key")
	res := c.Send(context.Background(), "user-1", "AAPL", "reason", decimal.NewFromInt(100))

	assert.False(t, res.Delivered)
	assert.Contains(t, res.Reason, "status 500")
}

func TestSendFailedTransport(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "risk-key")
	res := c.Send(context.Background(), "user-1", "AAPL", "reason", decimal.NewFromInt(100))

	assert.False(t, res.Delivered)
	assert.NotEmpty(t, res.Reason)
}
