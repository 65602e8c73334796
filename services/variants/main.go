package variantsService

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahmetb/go-linq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/guregu/null.v3"

	"varbrowser/api/models/constants/dataset"
	"varbrowser/api/models/dtos"
	"varbrowser/api/models/indexes"
	"varbrowser/api/repositories"
)

type (
	VariantService struct {
		store  repositories.VariantStore
		logger *zap.Logger
	}

	// lookups holds what each dataset returned for one query. Long-read
	// matches are keyed by the composite-key-shaped identifier they were
	// found with.
	lookups struct {
		shortRead []indexes.Variant
		longRead  map[string]indexes.Variant
	}
)

func NewVariantService(store repositories.VariantStore) *VariantService {
	return &VariantService{
		store:  store,
		logger: zap.NewNop(),
	}
}

func (vs *VariantService) SetLogger(logger *zap.Logger) {
	vs.logger = logger
}

// Merge resolves a free-text query against both datasets and returns one
// record per composite key seen on either side. Records are ordered by key.
func (vs *VariantService) Merge(ctx context.Context, query string) (dtos.VariantDetailResponse, error) {
	query = strings.TrimSpace(query)
	res := dtos.VariantDetailResponse{
		CombinedVariants: []dtos.MergedVariant{},
		Query:            query,
	}
	if query == "" {
		return res, nil
	}

	var (
		found lookups
		err   error
	)
	if indexes.IsUniqueKeyQuery(query) {
		found, err = vs.byUniqueKey(ctx, query)
	} else {
		found, err = vs.byExternalId(ctx, query)
	}
	if err != nil {
		return res, err
	}

	res.CombinedVariants = mergeLookups(found)
	vs.logger.Debug("merged variant lookups",
		zap.String("query", query),
		zap.Int("shortRead", len(found.shortRead)),
		zap.Int("longRead", len(found.longRead)),
		zap.Int("merged", len(res.CombinedVariants)))
	return res, nil
}

func (vs *VariantService) byUniqueKey(ctx context.Context, key string) (lookups, error) {
	found := lookups{longRead: map[string]indexes.Variant{}}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		variants, err := vs.store.GetVariantsByUniqueKey(gctx, dataset.ShortRead, key)
		if err != nil {
			return fmt.Errorf("short-read lookup of %s: %w", key, err)
		}
		found.shortRead = variants
		return nil
	})

	var longRead []indexes.Variant
	g.Go(func() error {
		variants, err := vs.store.GetVariantsByExternalId(gctx, dataset.LongRead, key)
		if err != nil {
			return fmt.Errorf("long-read lookup of %s: %w", key, err)
		}
		longRead = variants
		return nil
	})

	if err := g.Wait(); err != nil {
		return found, err
	}
	if len(longRead) > 0 {
		found.longRead[key] = longRead[0]
	}
	return found, nil
}

func (vs *VariantService) byExternalId(ctx context.Context, externalId string) (lookups, error) {
	found := lookups{longRead: map[string]indexes.Variant{}}

	variants, err := vs.store.GetVariantsByExternalId(ctx, dataset.ShortRead, externalId)
	if err != nil {
		return found, fmt.Errorf("short-read lookup of %s: %w", externalId, err)
	}
	found.shortRead = variants
	if len(variants) == 0 {
		return found, nil
	}

	// long-read identifiers are composite-key shaped
	derived := variants[0].UniqueKey()
	longRead, err := repositories.FirstVariant(vs.store.GetVariantsByExternalId(ctx, dataset.LongRead, derived))
	switch {
	case err == nil:
		found.longRead[derived] = longRead
	case !errors.Is(err, repositories.ErrNotFound):
		return found, fmt.Errorf("long-read lookup of %s: %w", derived, err)
	}
	return found, nil
}

func mergeLookups(found lookups) []dtos.MergedVariant {
	shortByKey := map[string]indexes.Variant{}
	for _, v := range found.shortRead {
		if _, seen := shortByKey[v.UniqueKey()]; !seen {
			shortByKey[v.UniqueKey()] = v
		}
	}

	keys := make([]string, 0)
	linq.From(found.shortRead).
		SelectT(func(v indexes.Variant) string { return v.UniqueKey() }).
		Union(linq.From(found.longRead).SelectT(func(kv linq.KeyValue) string { return kv.Key.(string) })).
		OrderByT(func(k string) string { return k }).
		ToSlice(&keys)

	merged := make([]dtos.MergedVariant, 0, len(keys))
	for _, key := range keys {
		short, hasShort := shortByKey[key]
		long, hasLong := found.longRead[key]
		merged = append(merged, mergeVariant(key, short, hasShort, long, hasLong))
	}
	return merged
}

// mergeVariant prefers short-read positional fields. Frequency fields stay
// per dataset; ac and an only exist in the short-read dataset.
func mergeVariant(key string, short indexes.Variant, hasShort bool, long indexes.Variant, hasLong bool) dtos.MergedVariant {
	mv := dtos.MergedVariant{UniqueKey: key}

	positional := long
	if hasShort {
		positional = short
	}
	if hasShort || hasLong {
		mv.Chromosome = null.StringFrom(positional.Chromosome)
		mv.Position = null.IntFrom(positional.Position)
		mv.Ref = null.StringFrom(positional.Ref)
		mv.Alt = null.StringFrom(positional.Alt)
	}

	if hasShort {
		// a short-read id is always present, possibly empty; null means no short-read record
		mv.VariantId = null.StringFrom(short.ExternalId)
		mv.AfShortRead = short.Af
		mv.Ac = short.Ac
		mv.An = short.An
	}
	if hasLong {
		mv.AfLongRead = long.Af
	}
	return mv
}
