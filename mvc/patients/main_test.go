package patients

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"varbrowser/api/contexts"
	"varbrowser/api/models/constants"
	"varbrowser/api/models/indexes"
	"varbrowser/api/observability"
	"varbrowser/api/services/cache"
	"varbrowser/api/services/datasets"
	patientsService "varbrowser/api/services/patients"
)

// brokenStores resolves every variant and fails every scan.
type brokenStores struct{}

func (brokenStores) GetVariantsByUniqueKey(ctx context.Context, ds constants.Dataset, uniqueKey string) ([]indexes.Variant, error) {
	return []indexes.Variant{{Chromosome: "chr1", Position: 100, Ref: "A", Alt: "T"}}, nil
}

func (brokenStores) GetVariantsByExternalId(ctx context.Context, ds constants.Dataset, externalId string) ([]indexes.Variant, error) {
	return nil, nil
}

func (brokenStores) ScanGenotypes(ctx context.Context, ds constants.Dataset, variant indexes.Variant) ([]indexes.GenotypeCall, error) {
	return nil, errors.New("connection reset")
}

func TestGetPatients(t *testing.T) {
	c, err := cache.NewMemoryCache(10)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	metrics := observability.NewMetrics(prometheus.NewRegistry())

	setUpEcho := func(req patientsService.Request) (*contexts.VarbrowserContext, *httptest.ResponseRecorder) {
		e := echo.New()
		rec := httptest.NewRecorder()
		ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/get_patients", nil), rec)
		ctx.SetPath("/get_patients")
		gc := &contexts.VarbrowserContext{
			Context:         ctx,
			ZapLogger:       zap.NewNop(),
			Metrics:         metrics,
			PatientService:  patientsService.NewPatientService(c, metrics),
			Adapter:         datasets.ShortRead(brokenStores{}),
			PatientsRequest: req,
		}
		return gc, rec
	}

	getJsonBody := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		body, _ := io.ReadAll(rec.Body)
		var bodyJson map[string]interface{}
		json.Unmarshal(body, &bodyJson)
		return bodyJson
	}

	t.Run("should return 500 with a generic message when the scan fails", func(t *testing.T) {
		gc, rec := setUpEcho(patientsService.Request{Identity: "chr1_100_A_T", Page: 1})

		assert.NoError(t, GetPatients(gc))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, somethingWrong, getJsonBody(rec)["error"])
		assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("/get_patients", "error")))
	})

	t.Run("should name the missing parameter", func(t *testing.T) {
		gc, rec := setUpEcho(patientsService.Request{Identity: "   ", Page: 1})

		assert.NoError(t, GetPatients(gc))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "No unique_key provided", getJsonBody(rec)["error"])
	})

	t.Run("should name the parameter the route read", func(t *testing.T) {
		gc, rec := setUpEcho(patientsService.Request{Page: 1})
		gc.IdentityParam = "id"

		assert.NoError(t, GetPatients(gc))
		assert.Equal(t, "No id provided", getJsonBody(rec)["error"])
	})

	t.Run("should report an unresolved rsID as not found", func(t *testing.T) {
		gc, rec := setUpEcho(patientsService.Request{Identity: "rs1", Page: 1})

		assert.NoError(t, GetPatients(gc))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, variantNotFound, getJsonBody(rec)["error"])
	})
}
