package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/require"
)

func newStubES(t *testing.T, status int, body string) *elasticsearch.Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func TestSearchDecodesHits(t *testing.T) {
	es := newStubES(t, http.StatusOK, `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_source": {"id": 7, "name": "keyboard", "description": "mechanical", "price": 500, "quantity": 3}},
				{"_source": {"id": 9, "name": "keycap set", "description": "pbt", "price": 120, "quantity": 10}}
			]
		}
	}`)

	total, products, err := Search(context.Background(), es, "products", "keyboard", 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, products, 2)

	require.Equal(t, uint(7), products[0].ID)
	require.Equal(t, "keyboard", products[0].Name)
	require.EqualValues(t, 500, products[0].Price)
	require.EqualValues(t, 3, products[0].Quantity)
	require.Equal(t, uint(9), products[1].ID)
	require.Equal(t, "keycap set", products[1].Name)
}

func TestSearchNoMatches(t *testing.T) {
	es := newStubES(t, http.StatusOK, `{"hits": {"total": {"value": 0}, "hits": []}}`)

	total, products, err := Search(context.Background(), es, "products", "nothing", 0, 10)
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, products)
}

func TestSearchErrorResponse(t *testing.T) {
	es := newStubES(t, http.StatusServiceUnavailable, `{"error": "unavailable"}`)

	_, _, err := Search(context.Background(), es, "products", "keyboard", 0, 10)
	require.Error(t, err)
}
