package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"varbrowser/api/models"
	serviceInfo "varbrowser/api/models/constants/service-info"
	"varbrowser/api/observability"
	"varbrowser/api/repositories/duckdb"
	"varbrowser/api/services/cache"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	cfg := &models.Config{}
	cfg.Api.SemVer = "0.1.0"
	cfg.Store.Backend = "duckdb"

	repo, err := duckdb.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, seed(context.Background(), filepath.Join("fixtures", "testdata", "seed.yml"), repo, zap.NewNop()))

	resultCache, err := cache.NewMemoryCache(100)
	require.NoError(t, err)
	t.Cleanup(resultCache.Close)

	registry := prometheus.NewRegistry()
	return newServer(serverDeps{
		Config:     cfg,
		Repository: repo,
		Cache:      resultCache,
		Metrics:    observability.NewMetrics(registry),
		Gatherer:   registry,
		Logger:     zap.NewNop(),
	})
}

func get(t *testing.T, e *echo.Echo, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func getJsonBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body, _ := io.ReadAll(rec.Body)

	var bodyJson map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &bodyJson), string(body))
	return bodyJson
}

func bucket(t *testing.T, body map[string]interface{}, name string) map[string]interface{} {
	t.Helper()
	result, ok := body["result"].(map[string]interface{})
	require.True(t, ok, "no result in %v", body)
	b, ok := result[name].(map[string]interface{})
	require.True(t, ok, "no %s bucket in %v", name, result)
	return b
}

func firstPageIds(t *testing.T, b map[string]interface{}) []string {
	t.Helper()
	pages := b["pages"].([]interface{})
	require.NotEmpty(t, pages)

	var ids []string
	for _, r := range pages[0].([]interface{}) {
		ids = append(ids, r.(map[string]interface{})["patient_id"].(string))
	}
	return ids
}

func TestShortReadPatients(t *testing.T) {
	e := newTestServer(t)

	t.Run("should return three buckets when preloading", func(t *testing.T) {
		rec := get(t, e, "/get_patients?unique_key=chr1_100_A_T&preload=TRUE")
		assert.Equal(t, http.StatusOK, rec.Code)

		body := getJsonBody(t, rec)
		assert.Equal(t, "chr1_100_A_T", body["variant_key"])
		assert.NotContains(t, body, "variant_id")
		assert.Equal(t, 1.0, body["homo_count"])
		assert.Equal(t, 1.0, body["hetero_count"])

		all := bucket(t, body, "all")
		assert.Equal(t, 2.0, all["total"])
		assert.Equal(t, 1.0, all["total_pages"])
		assert.Equal(t, []string{"SR-001", "SR-002"}, firstPageIds(t, all))
		assert.Equal(t, []string{"SR-001"}, firstPageIds(t, bucket(t, body, "homo")))
		assert.Equal(t, []string{"SR-002"}, firstPageIds(t, bucket(t, body, "hetero")))
	})

	t.Run("should resolve an rsID", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/get_patients?unique_key=rs2500&filter=hetero"))

		assert.Equal(t, "chr2_2500_G_C", body["variant_key"])
		assert.Equal(t, []string{"SR-002"}, firstPageIds(t, bucket(t, body, "hetero")))
	})

	t.Run("should render missing patient fields as empty strings", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/get_patients?unique_key=chr1_100_A_T&filter=hetero"))

		record := bucket(t, body, "hetero")["pages"].([]interface{})[0].([]interface{})[0].(map[string]interface{})
		assert.Equal(t, "M", record["gender"])
		assert.Equal(t, "", record["diagnosis"])
	})

	t.Run("should report a missing identity with a 200", func(t *testing.T) {
		rec := get(t, e, "/get_patients")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "No unique_key provided", getJsonBody(t, rec)["error"])
	})

	t.Run("should report an unknown variant with a 200", func(t *testing.T) {
		rec := get(t, e, "/get_patients?unique_key=rs404")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Variant not found", getJsonBody(t, rec)["error"])
	})

	t.Run("should search across patient fields", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/get_patients?unique_key=chr1_100_A_T&search=CARDIO"))

		all := bucket(t, body, "all")
		assert.Equal(t, 1.0, all["total"])
		assert.Equal(t, []string{"SR-001"}, firstPageIds(t, all))
	})
}

func TestLongReadPatients(t *testing.T) {
	e := newTestServer(t)

	t.Run("should keep every call in all and echo the variant id", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/get_patients_longread_ajax?variant_id=%20chr1_100_A_T%20&page=1"))

		assert.Equal(t, "chr1_100_A_T", body["variant_id"])
		assert.Equal(t, "chr1_100_A_T", body["variant_key"])
		assert.Equal(t, 1.0, body["homo_count"])
		assert.Equal(t, 0.0, body["hetero_count"])
		assert.Equal(t, []string{"LR-001", "LR-002"}, firstPageIds(t, bucket(t, body, "all")))
	})

	t.Run("should return an empty page past the end", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/get_patients_longread_ajax?variant_id=chr1_100_A_T&page=9"))

		all := bucket(t, body, "all")
		assert.Equal(t, 2.0, all["total"])
		assert.Empty(t, firstPageIds(t, all))
	})

	t.Run("should return an empty page for a huge page number", func(t *testing.T) {
		rec := get(t, e, "/get_patients_longread_ajax?variant_id=chr1_100_A_T&page=368934881474191033")
		assert.Equal(t, http.StatusOK, rec.Code)

		all := bucket(t, getJsonBody(t, rec), "all")
		assert.Equal(t, 2.0, all["total"])
		assert.Empty(t, firstPageIds(t, all))
	})

	t.Run("should default a malformed page and filter", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/get_patients_longread_ajax?variant_id=chr1_100_A_T&page=abc&filter=bogus"))

		assert.Len(t, firstPageIds(t, bucket(t, body, "all")), 2)
	})

	t.Run("should report a missing identity with a 200", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/get_patients_longread_ajax?variant_id="))
		assert.Equal(t, "No variant_id provided", body["error"])
	})

	t.Run("should not resolve long-read variants by their raw id", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/get_patients_longread_ajax?variant_id=1_100_A_T"))
		assert.Equal(t, "Variant not found", body["error"])
	})
}

func TestDatasetRoute(t *testing.T) {
	e := newTestServer(t)

	t.Run("should serve either dataset by path", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/variants/longread/patients?id=chr9_900_T_TA&filter=hetero"))
		assert.Equal(t, []string{"LR-002"}, firstPageIds(t, bucket(t, body, "hetero")))

		body = getJsonBody(t, get(t, e, "/variants/ShortRead/patients?id=rs100&filter=homo"))
		assert.Equal(t, []string{"SR-001"}, firstPageIds(t, bucket(t, body, "homo")))
	})

	t.Run("should name the id parameter when it is missing", func(t *testing.T) {
		rec := get(t, e, "/variants/longread/patients?variant_id=chr1_100_A_T")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "No id provided", getJsonBody(t, rec)["error"])
	})

	t.Run("should reject an unknown dataset", func(t *testing.T) {
		rec := get(t, e, "/variants/exome/patients?id=rs100")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestVariantDetail(t *testing.T) {
	e := newTestServer(t)

	t.Run("should merge a key present in both datasets", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/variant_detail?query=chr1_100_A_T"))

		assert.Equal(t, "chr1_100_A_T", body["query"])
		combined := body["combined_variants"].([]interface{})
		require.Len(t, combined, 1)

		mv := combined[0].(map[string]interface{})
		assert.Equal(t, "rs100", mv["variant_id"])
		assert.Equal(t, 0.125, mv["af_shortread"])
		assert.Equal(t, 0.5, mv["af_longread"])
		assert.Equal(t, 3.0, mv["ac"])
	})

	t.Run("should null long-read fields for a short-read only rsID", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/variants/detail?query=rs2500"))

		combined := body["combined_variants"].([]interface{})
		require.Len(t, combined, 1)
		mv := combined[0].(map[string]interface{})
		assert.Equal(t, "chr2_2500_G_C", mv["unique_key"])
		assert.Nil(t, mv["af_longread"])
	})

	t.Run("should return an empty list for an empty query", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/variants/detail"))

		assert.Equal(t, "", body["query"])
		assert.Empty(t, body["combined_variants"])
		assert.NotNil(t, body["combined_variants"])
	})
}

func TestServiceEndpoints(t *testing.T) {
	e := newTestServer(t)

	t.Run("should greet on the root", func(t *testing.T) {
		rec := get(t, e, "/")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), string(serviceInfo.SERVICE_WELCOME))
	})

	t.Run("should describe the service", func(t *testing.T) {
		body := getJsonBody(t, get(t, e, "/service-info"))

		assert.Equal(t, string(serviceInfo.SERVICE_ID), body["id"])
		assert.Equal(t, "0.1.0", body["version"])
		assert.Equal(t, "duckdb", body["storage"])
	})

	t.Run("should tag responses with a request id", func(t *testing.T) {
		rec := get(t, e, "/service-info")
		assert.Len(t, rec.Header().Get("X-Request-Id"), 36)
	})

	t.Run("should expose request metrics", func(t *testing.T) {
		get(t, e, "/get_patients?unique_key=chr1_100_A_T")
		get(t, e, "/get_patients?unique_key=chr1_100_A_T")

		rec := get(t, e, "/metrics")
		assert.Equal(t, http.StatusOK, rec.Code)

		metrics := rec.Body.String()
		assert.True(t, strings.Contains(metrics, `varbrowser_requests_total{endpoint="/get_patients",outcome="ok"} 2`), metrics)
		assert.Contains(t, metrics, `varbrowser_cache_lookups_total{dataset="shortread",result="hit"} 1`)
	})
}

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["seed"])
}

func TestOpenRepositoryRejectsUnknownBackend(t *testing.T) {
	cfg := &models.Config{}
	cfg.Store.Backend = "sqlite"

	_, err := openRepository(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
