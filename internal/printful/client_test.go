package printful

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirandola/podforge/internal/clock"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) (*Client, *clock.Fake) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ck := clock.NewFake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	base := []Option{
		WithBaseURL(srv.URL),
		WithClock(ck),
		WithMinInterval(0),
		WithRetryPolicy(NoBackoff(3)),
	}
	return NewClient("test-token", "store-1", append(base, opts...)...), ck
}

func TestDoSuccess(t *testing.T) {
	var gotAuth, gotStore string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotStore = r.Header.Get("X-PF-Store-Id")
		_, _ = w.Write([]byte(`{"code":200,"result":{"id":7}}`))
	})

	result, err := c.Do(context.Background(), http.MethodGet, "/store", nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{"id":7}`, string(result))
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "store-1", gotStore)
}

func TestDoAPIErrorIsNotRetried(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"error":{"message":"bad payload","reason":"BadRequest"}}`))
	})

	_, err := c.Do(context.Background(), http.MethodPost, "/store/products", map[string]string{"x": "y"})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.Code)
	assert.Equal(t, "bad payload", apiErr.Message)
	assert.Equal(t, 1, calls)
}

func TestDoRateLimitHonorsRetryAfter(t *testing.T) {
	var calls int
	c, ck := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"code":200,"result":{}}`))
	})

	_, err := c.Do(context.Background(), http.MethodGet, "/store", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Contains(t, ck.Slept(), 7*time.Second)
}

func TestDoRateLimitFallbackWait(t *testing.T) {
	var calls int
	c, ck := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"code":200,"result":{}}`))
	})

	_, err := c.Do(context.Background(), http.MethodGet, "/store", nil)
	require.NoError(t, err)
	assert.Contains(t, ck.Slept(), 60*time.Second)
}

func TestDoRetriesNonJSONBody(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("<html>upstream error</html>"))
			return
		}
		_, _ = w.Write([]byte(`{"code":200,"result":{"ok":true}}`))
	})

	result, err := c.Do(context.Background(), http.MethodGet, "/store", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(result))
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttempts(t *testing.T) {
	var calls int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("nope"))
	})

	_, err := c.Do(context.Background(), http.MethodGet, "/store", nil)
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "all 3 attempts failed")
}

func TestDoPacesRequests(t *testing.T) {
	c, ck := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"result":{}}`))
	}, WithMinInterval(time.Second))

	ctx := context.Background()
	_, err := c.Do(ctx, http.MethodGet, "/store", nil)
	require.NoError(t, err)
	_, err = c.Do(ctx, http.MethodGet, "/store", nil)
	require.NoError(t, err)

	// The fake clock does not advance between requests, so the second
	// one waits the full interval.
	assert.Contains(t, ck.Slept(), time.Second)
}

func TestCreateProductIDShapes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID int64
	}{
		{
			name:   "id at result root",
			body:   `{"code":200,"result":{"id":11}}`,
			wantID: 11,
		},
		{
			name:   "id nested under sync_product",
			body:   `{"code":200,"result":{"sync_product":{"id":22}}}`,
			wantID: 22,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				_, _ = w.Write([]byte(tt.body))
			})

			id, err := c.CreateProduct(context.Background(), ProductPayload{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestCreateProductNoID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"result":{}}`))
	})

	_, err := c.CreateProduct(context.Background(), ProductPayload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no product id")
}

func TestGetProduct(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/store/products/42", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"code":200,
			"result":{
				"sync_product":{"id":42,"name":"skull - Tee","variants":3},
				"sync_variants":[{"id":1},{"id":2},{"id":3}]
			}
		}`))
	})

	p, err := c.GetProduct(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.SyncProduct.ID)
	assert.Len(t, p.SyncVariants, 3)
}
