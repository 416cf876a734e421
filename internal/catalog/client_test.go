package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"github.com/cenkalti/backoff/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(fn roundTripFunc, opts ...Option) *Client {
	opts = append([]Option{
		WithHTTPClient(&http.Client{Transport: fn}),
		WithBackOff(func() backoff.BackOff { return &backoff.ZeroBackOff{} }),
	}, opts...)
	return NewClient(Config{BaseURL: "https://catalog.test/functions/v1/", Token: "secret", RateLimitRPS: 1000}, opts...)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection dropped mid-body") }

const envelopeJSON = `{
  "data": {
    "ean": "7038010009457",
    "products": [
      {
        "id": 11, "name": "Gulrot", "brand": "Bama", "image": "https://img.test/a.jpg",
        "current_price": {"price": 20.99, "date": "2024-03-08 10:00:00"},
        "price_history": [{"price": 19.9, "date": "2024-03-01 00:00:00"}],
        "store": {"name": "KIWI", "code": "KIWI"}
      },
      {"id": 12, "name": "Gulrot", "current_price": 21.5, "store": {"name": "MENY"}}
    ],
    "nutrition": [{"code": "energi_kcal", "display_name": "Kalorier", "amount": 41, "unit": "kcal"}],
    "allergens": [{"code": "gluten", "display_name": "Gluten", "contains": "NO"}]
  }
}`

func TestFetchByEAN(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/functions/v1/get-product-by-ean", r.URL.Path)
		assert.Equal(t, "7038010009457", r.URL.Query().Get("ean"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		return respond(http.StatusOK, envelopeJSON), nil
	})

	env, err := client.FetchByEAN(context.Background(), "7038010009457")
	require.NoError(t, err)
	require.NotNil(t, env.Data)
	require.Len(t, env.Data.Products, 2)

	first := env.Data.Products[0]
	assert.Equal(t, "KIWI", first.StoreName())
	require.NotNil(t, first.CurrentPrice)
	assert.Equal(t, 20.99, first.CurrentPrice.Price)
	assert.Equal(t, "2024-03-08 10:00:00", first.CurrentPrice.Date)

	second := env.Data.Products[1]
	require.NotNil(t, second.CurrentPrice, "bare number price is accepted")
	assert.Equal(t, 21.5, second.CurrentPrice.Price)
	assert.Empty(t, second.CurrentPrice.Date)

	require.Len(t, env.Data.Nutrition, 1)
	assert.False(t, env.Data.Allergens[0].Present())
}

func TestFetchByEAN_NotFound(t *testing.T) {
	for name, resp := range map[string]func() *http.Response{
		"status 404":    func() *http.Response { return respond(http.StatusNotFound, `{}`) },
		"model message": func() *http.Response { return respond(http.StatusBadRequest, `{"message":"No query results for model [Product]"}`) },
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(func(*http.Request) (*http.Response, error) { return resp(), nil })
			_, err := client.FetchByEAN(context.Background(), "123")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestFetchByEAN_RetriesTransientErrors(t *testing.T) {
	attempt := 0
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		attempt++
		switch attempt {
		case 1:
			return respond(http.StatusTooManyRequests, `slow down`), nil
		case 2:
			return nil, errors.New("connection reset")
		case 3:
			return respond(http.StatusBadGateway, `bad gateway`), nil
		}
		return respond(http.StatusOK, envelopeJSON), nil
	})

	env, err := client.FetchByEAN(context.Background(), "7038010009457")
	require.NoError(t, err)
	assert.Equal(t, "7038010009457", env.Data.EAN)
	assert.Equal(t, 4, attempt)
}

func TestFetchByEAN_EmptyDataIsNoProduct(t *testing.T) {
	for name, body := range map[string]string{
		"empty array": `{"data":[]}`,
		"null":        `{"data":null}`,
		"missing":     `{}`,
		"scalar":      `{"data":"none"}`,
	} {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(func(*http.Request) (*http.Response, error) {
				return respond(http.StatusOK, body), nil
			})
			env, err := client.FetchByEAN(context.Background(), "7038010009457")
			require.NoError(t, err)
			require.NotNil(t, env)
			assert.Nil(t, env.Data)
		})
	}
}

func TestFetchByEAN_QuotedPrices(t *testing.T) {
	body := `{"data":{"ean":"7038010009457","products":[
	  {"id":1,"current_price":"29.90","price_history":[{"price":"27,50","date":"2024-03-01"},{"price":26,"date":"2024-02-01"}]},
	  {"id":2,"current_price":{"price":"31.00","date":"2024-03-08"}},
	  {"id":3,"current_price":"","price_history":[{"price":null,"date":"2024-01-01"}]}
	]}}`
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return respond(http.StatusOK, body), nil
	})

	env, err := client.FetchByEAN(context.Background(), "7038010009457")
	require.NoError(t, err)
	require.NotNil(t, env.Data)
	require.Len(t, env.Data.Products, 3)

	first := env.Data.Products[0]
	require.NotNil(t, first.CurrentPrice)
	assert.Equal(t, 29.90, first.CurrentPrice.Price)
	require.Len(t, first.PriceHistory, 2)
	assert.Equal(t, 27.50, first.PriceHistory[0].Price)
	assert.Equal(t, 26.0, first.PriceHistory[1].Price)

	second := env.Data.Products[1]
	assert.Equal(t, &Price{Price: 31, Date: "2024-03-08"}, second.CurrentPrice)

	third := env.Data.Products[2]
	assert.Equal(t, 0.0, third.CurrentPrice.Price)
	assert.Equal(t, 0.0, third.PriceHistory[0].Price)
}

func TestFetchByEAN_RetriesBodyReadErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	attempt := 0
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		attempt++
		if attempt == 1 {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(failingReader{}), Header: make(http.Header)}, nil
		}
		return respond(http.StatusOK, envelopeJSON), nil
	}, WithLogger(zap.New(core)))

	env, err := client.FetchByEAN(context.Background(), "7038010009457")
	require.NoError(t, err)
	assert.Equal(t, "7038010009457", env.Data.EAN)
	assert.Equal(t, 2, attempt)

	entries := logs.FilterMessage("catalog retrying").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "connection dropped mid-body")
}

func TestFetchByEAN_GivesUpAfterMaxAttempts(t *testing.T) {
	attempt := 0
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		attempt++
		return respond(http.StatusServiceUnavailable, `maintenance`), nil
	})

	_, err := client.FetchByEAN(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=503")
	assert.Contains(t, err.Error(), "maintenance")
	assert.Equal(t, defaultMaxAttempts, attempt)
}

func TestFetchByEAN_ClientErrorIsNotRetried(t *testing.T) {
	attempt := 0
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		attempt++
		return respond(http.StatusUnauthorized, `invalid token`), nil
	})

	_, err := client.FetchByEAN(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
	assert.Equal(t, 1, attempt)
}

func TestFetchByEAN_MissingToken(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://catalog.test"}, WithHTTPClient(&http.Client{
		Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			t.Fatal("no request expected without token")
			return nil, nil
		}),
	}))

	_, err := client.FetchByEAN(context.Background(), "1")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestFetchByEAN_ContextCanceled(t *testing.T) {
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		return nil, r.Context().Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchByEAN(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_ResponseShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":1,"ean":"1","name":"A"},{"id":2,"ean":"2","name":"B"}]`, 2},
		{"data array", `{"data":[{"id":1,"ean":"1","name":"A"}]}`, 1},
		{"data products", `{"data":{"products":[{"id":1},{"id":2},{"id":3}]}}`, 3},
		{"null data", `{"data":null}`, 0},
		{"unknown object", `{"results":[{"id":1}]}`, 0},
		{"scalar", `"nope"`, 0},
		{"data scalar", `{"data":42}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(func(r *http.Request) (*http.Response, error) {
				assert.Equal(t, "/functions/v1/search-products", r.URL.Path)
				assert.Equal(t, "gulrot", r.URL.Query().Get("search"))
				assert.Equal(t, "5", r.URL.Query().Get("size"))
				return respond(http.StatusOK, tt.body), nil
			})

			got, err := client.Search(context.Background(), "gulrot", 5)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestSearch_NotFoundIsEmpty(t *testing.T) {
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return respond(http.StatusNotFound, ``), nil
	})

	got, err := client.Search(context.Background(), "nothing", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPriceUnmarshal(t *testing.T) {
	var v struct {
		A *Price `json:"a"`
		B *Price `json:"b"`
		C *Price `json:"c"`
	}
	err := decodeJSON(`{"a": {"price": 1.5, "date": "2024-01-01"}, "b": "2", "c": null}`, &v)
	require.NoError(t, err)
	assert.Equal(t, &Price{Price: 1.5, Date: "2024-01-01"}, v.A)
	assert.Equal(t, &Price{Price: 2}, v.B)
	assert.Nil(t, v.C)

	assert.Error(t, decodeJSON(`{"a": true}`, &v))
}

func decodeJSON(s string, v any) error {
	return json.Unmarshal([]byte(s), v)
}
