package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, quoteBody, candleBody string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/quote":
			w.Write([]byte(quoteBody))
		case "/stock/candle":
			assert.Equal(t, "D", r.URL.Query().Get("resolution"))
			w.Write([]byte(candleBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestGetPrice(t *testing.T) {
	srv := newTestServer(t, `{"c":187.44,"o":185.0,"pc":186.2,"t":1700000000}`, `{}`)
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	price, err := c.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "187.44", price.String())
}

func TestGetPriceZeroIsNoQuote(t *testing.T) {
	srv := newTestServer(t, `{"c":0}`, `{}`)
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := c.GetPrice(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestGetRiskQuote(t *testing.T) {
	quote := `{"c":106.0,"o":100.0,"pc":96.0}`
	candles := `{"o":[98.5,100.0],"h":[101,107],"l":[97,99],"c":[96.0,106.0],"s":"ok"}`
	srv := newTestServer(t, quote, candles)
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	rq, err := c.GetRiskQuote(context.Background(), "AAPL")
	require.NoError(t, err)

	// Open comes from the newest candle, previous close from the older one.
	assert.Equal(t, "106", rq.LastPrice.String())
	assert.Equal(t, "100", rq.OpenPrice.String())
	assert.Equal(t, "96", rq.PreviousClose.String())
}

func TestGetRiskQuoteInsufficientCandles(t *testing.T) {
	quote := `{"c":106.0}`
	candles := `{"o":[100.0],"c":[106.0],"s":"ok"}`
	srv := newTestServer(t, quote, candles)
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := c.GetRiskQuote(context.Background(), "AAPL")
	assert.Error(t, err)
}

func TestAPIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "limit exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := c.GetPrice(context.Background(), "AAPL")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}
