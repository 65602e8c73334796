package patientsService

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"varbrowser/api/models/constants"
	patientFilter "varbrowser/api/models/constants/patient-filter"
	"varbrowser/api/models/dtos"
	"varbrowser/api/observability"
	"varbrowser/api/services/aggregation"
	"varbrowser/api/services/cache"
	"varbrowser/api/services/datasets"
	"varbrowser/api/services/paging"
)

var ErrMissingInput = errors.New("missing variant identity")

// Request is a parsed "get patients for variant" query.
type Request struct {
	Identity string
	Page     int
	Filter   constants.PatientFilter
	Search   string
	Preload  bool
}

type PatientService struct {
	cache   cache.ResultCache
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewPatientService(c cache.ResultCache, metrics *observability.Metrics) *PatientService {
	if metrics == nil {
		metrics = observability.Nop()
	}
	return &PatientService{
		cache:   c,
		ttl:     cache.DefaultTTL,
		metrics: metrics,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for cache and scan diagnostics.
func (ps *PatientService) SetLogger(logger *zap.Logger) {
	ps.logger = logger
}

// GetPatients resolves the variant, aggregates its calls (or reuses a cached
// aggregation), then filters and paginates the requested buckets.
// Lookup failures are returned as repositories.ErrNotFound or ErrMissingInput.
func (ps *PatientService) GetPatients(ctx context.Context, a datasets.Adapter, req Request) (dtos.PatientsResponse, error) {
	identity := strings.TrimSpace(req.Identity)
	if identity == "" {
		return dtos.PatientsResponse{}, ErrMissingInput
	}

	result, err := ps.aggregate(ctx, a, identity)
	if err != nil {
		return dtos.PatientsResponse{}, err
	}

	res := dtos.PatientsResponse{
		VariantKey:  result.VariantKey,
		HomoCount:   result.HomoCount,
		HeteroCount: result.HeteroCount,
	}
	if a.StaticCacheKey() {
		res.VariantId = identity
	}

	// search always runs on top of whatever came from the cache
	all := paging.Filter(result.All, req.Search)
	homo := paging.Filter(result.Homo, req.Search)
	hetero := paging.Filter(result.Hetero, req.Search)

	if req.Preload {
		res.Result = map[string]dtos.PatientBucket{
			string(patientFilter.All):    paging.Paginate(all, paging.PerPage),
			string(patientFilter.Homo):   paging.Paginate(homo, paging.PerPage),
			string(patientFilter.Hetero): paging.Paginate(hetero, paging.PerPage),
		}
		return res, nil
	}

	var bucket []dtos.PatientRecord
	switch req.Filter {
	case patientFilter.Homo:
		bucket = homo
	case patientFilter.Hetero:
		bucket = hetero
	default:
		req.Filter = patientFilter.All
		bucket = all
	}
	res.Result = map[string]dtos.PatientBucket{
		string(req.Filter): paging.PageOf(bucket, req.Page, paging.PerPage),
	}
	return res, nil
}

func (ps *PatientService) aggregate(ctx context.Context, a datasets.Adapter, identity string) (aggregation.Result, error) {
	ds := a.Dataset()

	if a.StaticCacheKey() {
		if cached, ok := ps.lookupCache(ds, identity); ok {
			return cached, nil
		}
	}

	variant, err := a.LookupVariant(ctx, identity)
	if err != nil {
		return aggregation.Result{}, err
	}

	key := identity
	if !a.StaticCacheKey() {
		key = variant.UniqueKey()
		if cached, ok := ps.lookupCache(ds, key); ok {
			return cached, nil
		}
	}

	started := time.Now()
	calls, err := a.ScanGenotypes(ctx, variant)
	if err != nil {
		return aggregation.Result{}, fmt.Errorf("scan %s genotypes for %s: %w", ds, variant.UniqueKey(), err)
	}
	result := aggregation.Aggregate(calls, a.IncludeInAll)
	result.VariantKey = variant.UniqueKey()

	ps.metrics.ScanDurationSeconds.WithLabelValues(string(ds)).Observe(time.Since(started).Seconds())
	ps.metrics.ScannedCalls.WithLabelValues(string(ds)).Observe(float64(len(calls)))
	ps.logger.Debug("aggregated genotype calls",
		zap.String("dataset", string(ds)),
		zap.String("cacheKey", cache.Key(ds, key)),
		zap.Int("calls", len(calls)),
		zap.Duration("took", time.Since(started)))

	ps.cache.Put(ds, key, result, ps.ttl)
	return result, nil
}

func (ps *PatientService) lookupCache(ds constants.Dataset, key string) (aggregation.Result, bool) {
	cached, ok := ps.cache.Get(ds, key)
	outcome := "miss"
	if ok {
		outcome = "hit"
	}
	ps.metrics.CacheLookupsTotal.WithLabelValues(string(ds), outcome).Inc()
	return cached, ok
}
