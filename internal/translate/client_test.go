package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upperServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "auto", req.Source)
		assert.Equal(t, "text", req.Format)
		out := make([]string, len(req.Q))
		for i, q := range req.Q {
			out[i] = req.Target + ":" + strings.ToUpper(q)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"translatedText": out})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranslatePreservesOrder(t *testing.T) {
	var calls atomic.Int32
	srv := upperServer(t, &calls)
	c := NewClient(Config{Endpoints: []string{srv.URL}})

	got := c.Translate(context.Background(), []string{"wat?", "hoe?", "wat?"}, "en")
	assert.Equal(t, []string{"en:WAT?", "en:HOE?", "en:WAT?"}, got)
	assert.EqualValues(t, 1, calls.Load())
}

func TestTranslateFallsBackToNextEndpoint(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer broken.Close()
	var calls atomic.Int32
	good := upperServer(t, &calls)

	c := NewClient(Config{Endpoints: []string{broken.URL, good.URL}})
	got := c.Translate(context.Background(), []string{"thee?"}, "de")
	assert.Equal(t, []string{"de:THEE?"}, got)
}

func TestTranslateReturnsInputWhenAllEndpointsFail(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	short := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"translatedText": []string{}})
	}))
	defer short.Close()

	c := NewClient(Config{Endpoints: []string{slow.URL, short.URL}, Timeout: 50 * time.Millisecond})
	in := []string{"Wat is je favoriete thee?"}
	assert.Equal(t, in, c.Translate(context.Background(), in, "en"))
}

func TestTranslateUsesCache(t *testing.T) {
	var calls atomic.Int32
	srv := upperServer(t, &calls)
	cache := NewMemoryCache()
	c := NewClient(Config{Endpoints: []string{srv.URL}}, WithCache(cache))

	c.Translate(context.Background(), []string{"a?", "b?"}, "en")
	got := c.Translate(context.Background(), []string{"b?", "a?"}, "en-GB")
	assert.Equal(t, []string{"en:B?", "en:A?"}, got)
	assert.EqualValues(t, 1, calls.Load())
	assert.Len(t, cache.m, 2)
}

func TestTranslateWithoutEndpointsOrTarget(t *testing.T) {
	c := NewClient(Config{})
	in := []string{"x?"}
	assert.Equal(t, in, c.Translate(context.Background(), in, "en"))

	var calls atomic.Int32
	srv := upperServer(t, &calls)
	c = NewClient(Config{Endpoints: []string{srv.URL}})
	assert.Equal(t, in, c.Translate(context.Background(), in, "not a tag!"))
	assert.Zero(t, calls.Load())
}

func TestNormalizeTarget(t *testing.T) {
	assert.Equal(t, "nl", NormalizeTarget("nl-BE"))
	assert.Equal(t, "en", NormalizeTarget(" en "))
	assert.Equal(t, "", NormalizeTarget("??"))
}
