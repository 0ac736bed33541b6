package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{
			BaseURL:    baseURL,
			AppID:      "test-app",
			AppKey:     "test-key",
			MaxResults: 30,
			Timeout:    5 * time.Second,
		},
	}
}

func TestSearchParsesHits(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"hits": []map[string]interface{}{
				{"recipe": map[string]interface{}{
					"uri":             "recipe#1",
					"label":           "Pasta Primavera",
					"ingredientLines": []string{"200g pasta", "1 zucchini"},
					"cuisineType":     []string{"italian"},
				}},
				{"recipe": map[string]interface{}{}}, // 無 uri，應略過
			},
		})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	recipes, err := client.Search(context.Background(), SearchParameters{
		Query:        "pasta",
		HealthLabels: []string{"vegetarian", "super-food"}, // 第二個不在白名單
		Excluded:     []string{"nuts", "broccoli"},
		Time:         "1-30",
	}, 10)

	require.NoError(t, err)
	require.Len(t, recipes, 1)
	assert.Equal(t, "recipe#1", recipes[0].URI)
	assert.Equal(t, "Pasta Primavera", recipes[0].Label)

	assert.Equal(t, "pasta", gotQuery.Get("q"))
	assert.Equal(t, "10", gotQuery.Get("to"))
	assert.Equal(t, []string{"vegetarian"}, gotQuery["health"])
	assert.Equal(t, []string{"nuts", "broccoli"}, gotQuery["excluded"])
	assert.Equal(t, "1-30", gotQuery.Get("time"))
}

func TestSearchGenericQueryFallback(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]interface{}{"hits": []interface{}{}})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))

	// 無 query、無任何有效 health 標籤 → q=dinner
	_, err := client.Search(context.Background(), SearchParameters{
		HealthLabels: []string{"super-food"},
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, "dinner", gotQuery.Get("q"))
	assert.Empty(t, gotQuery["health"])

	// 完全無條件 → q=recipe
	_, err = client.Search(context.Background(), SearchParameters{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "recipe", gotQuery.Get("q"))
	assert.Equal(t, "30", gotQuery.Get("to"))
}

func TestSearchZeroHitsIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"hits": []interface{}{}})
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	recipes, err := client.Search(context.Background(), SearchParameters{Query: "unicorn"}, 5)
	require.NoError(t, err)
	assert.Empty(t, recipes)
}

func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testConfig(srv.URL))
	_, err := client.Search(context.Background(), SearchParameters{Query: "pasta"}, 5)
	require.Error(t, err)

	var cerr *common.CustomError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, common.ErrCodeUpstream, cerr.Code)
}
