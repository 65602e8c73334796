// Package datasets adapts each sequencing dataset's stores to the single
// patients engine. The differences between datasets live here as
// configuration, not in the engine.
package datasets

import (
	"context"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/constants/dataset"
	"varbrowser/api/models/indexes"
	"varbrowser/api/repositories"
	"varbrowser/api/services/aggregation"
)

type Adapter interface {
	Dataset() constants.Dataset

	// LookupVariant resolves a request identity to one variant or repositories.ErrNotFound.
	LookupVariant(ctx context.Context, identity string) (indexes.Variant, error)
	ScanGenotypes(ctx context.Context, variant indexes.Variant) ([]indexes.GenotypeCall, error)

	// IncludeInAll decides membership of the "all" bucket.
	IncludeInAll(zyg constants.Zygosity) bool

	// StaticCacheKey reports whether results are cached under the raw request
	// identity, checked before the variant is looked up. Such datasets also
	// echo the identity back as variant_id.
	StaticCacheKey() bool

	// IdentityParam is the query parameter the legacy endpoint reads the identity from.
	IdentityParam() string
}

type Stores interface {
	repositories.VariantStore
	repositories.GenotypeStore
}

type shortRead struct {
	stores Stores
}

// ShortRead accepts a composite key or an rsID, caches by composite key and
// counts only carriers in "all".
func ShortRead(stores Stores) Adapter {
	return &shortRead{stores: stores}
}

func (a *shortRead) Dataset() constants.Dataset { return dataset.ShortRead }

func (a *shortRead) LookupVariant(ctx context.Context, identity string) (indexes.Variant, error) {
	if indexes.IsUniqueKeyQuery(identity) {
		return repositories.FirstVariant(a.stores.GetVariantsByUniqueKey(ctx, dataset.ShortRead, identity))
	}
	return repositories.FirstVariant(a.stores.GetVariantsByExternalId(ctx, dataset.ShortRead, identity))
}

func (a *shortRead) ScanGenotypes(ctx context.Context, variant indexes.Variant) ([]indexes.GenotypeCall, error) {
	return a.stores.ScanGenotypes(ctx, dataset.ShortRead, variant)
}

func (a *shortRead) IncludeInAll(zyg constants.Zygosity) bool { return aggregation.CarriersOnly(zyg) }

func (a *shortRead) StaticCacheKey() bool { return false }

func (a *shortRead) IdentityParam() string { return "unique_key" }

type longRead struct {
	stores Stores
}

// LongRead resolves by external id only and keeps every call in "all".
func LongRead(stores Stores) Adapter {
	return &longRead{stores: stores}
}

func (a *longRead) Dataset() constants.Dataset { return dataset.LongRead }

func (a *longRead) LookupVariant(ctx context.Context, identity string) (indexes.Variant, error) {
	return repositories.FirstVariant(a.stores.GetVariantsByExternalId(ctx, dataset.LongRead, identity))
}

func (a *longRead) ScanGenotypes(ctx context.Context, variant indexes.Variant) ([]indexes.GenotypeCall, error) {
	return a.stores.ScanGenotypes(ctx, dataset.LongRead, variant)
}

func (a *longRead) IncludeInAll(zyg constants.Zygosity) bool { return aggregation.EveryCall(zyg) }

func (a *longRead) StaticCacheKey() bool { return true }

func (a *longRead) IdentityParam() string { return "variant_id" }

// ForDataset returns the adapter for a known dataset.
func ForDataset(ds constants.Dataset, stores Stores) (Adapter, bool) {
	switch ds {
	case dataset.ShortRead:
		return ShortRead(stores), true
	case dataset.LongRead:
		return LongRead(stores), true
	}
	return nil, false
}
