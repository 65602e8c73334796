// Package repositories defines the per-dataset variant, patient and
// genotype stores the services read from. Backends live in sub-packages.
package repositories

import (
	"context"
	"errors"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/constants/dataset"
	"varbrowser/api/models/indexes"
)

var ErrNotFound = errors.New("variant not found")

// VariantStore resolves variant records within one dataset.
type VariantStore interface {
	// GetVariantsByUniqueKey returns every variant whose composite key matches.
	GetVariantsByUniqueKey(ctx context.Context, ds constants.Dataset, uniqueKey string) ([]indexes.Variant, error)
	// GetVariantsByExternalId returns every variant whose external identifier matches, in insertion order.
	GetVariantsByExternalId(ctx context.Context, ds constants.Dataset, externalId string) ([]indexes.Variant, error)
}

// GenotypeStore scans genotype calls for one variant, joined with patient fields.
type GenotypeStore interface {
	ScanGenotypes(ctx context.Context, ds constants.Dataset, variant indexes.Variant) ([]indexes.GenotypeCall, error)
}

// DuplicateCall is a (variant, patient) pair with more than one genotype row.
type DuplicateCall struct {
	VariantKey string `db:"variant_key"`
	PatientId  string `db:"patient_id"`
	Count      int64  `db:"calls"`
}

// Auditor reports data problems that skew aggregation.
type Auditor interface {
	FindDuplicateGenotypes(ctx context.Context, ds constants.Dataset) ([]DuplicateCall, error)
}

// Writer loads records into a dataset. Used by seeding.
type Writer interface {
	PutVariants(ctx context.Context, ds constants.Dataset, variants []indexes.Variant) error
	PutPatients(ctx context.Context, ds constants.Dataset, patients []indexes.Patient) error
	PutGenotypes(ctx context.Context, ds constants.Dataset, genotypes []indexes.Genotype) error
}

// Repository is everything a storage backend provides.
type Repository interface {
	VariantStore
	GenotypeStore
	Auditor
	Writer
	Close() error
}

// FirstVariant returns the first match or ErrNotFound.
func FirstVariant(variants []indexes.Variant, err error) (indexes.Variant, error) {
	if err != nil {
		return indexes.Variant{}, err
	}
	if len(variants) == 0 {
		return indexes.Variant{}, ErrNotFound
	}
	return variants[0], nil
}

// PrepareVariant applies the dataset's write-time normalization,
// mirroring what each dataset's loader historically did on save.
func PrepareVariant(ds constants.Dataset, v indexes.Variant) indexes.Variant {
	if ds == dataset.LongRead {
		v.ExternalId = indexes.NormalizeExternalId(v.ExternalId)
	}
	return v
}
