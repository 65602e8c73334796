package variantsService

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v3"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/constants/dataset"
	"varbrowser/api/models/dtos"
	"varbrowser/api/models/indexes"
)

type fakeVariantStore struct {
	variants map[constants.Dataset][]indexes.Variant
	err      error
}

func (f *fakeVariantStore) GetVariantsByUniqueKey(ctx context.Context, ds constants.Dataset, key string) ([]indexes.Variant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []indexes.Variant
	for _, v := range f.variants[ds] {
		if v.UniqueKey() == key {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVariantStore) GetVariantsByExternalId(ctx context.Context, ds constants.Dataset, id string) ([]indexes.Variant, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []indexes.Variant
	for _, v := range f.variants[ds] {
		if v.ExternalId == id {
			out = append(out, v)
		}
	}
	return out, nil
}

var (
	shortA = indexes.Variant{Chromosome: "chr1", Position: 100, ExternalId: "rs100", Ref: "A", Alt: "T",
		Ac: null.IntFrom(4), Af: null.FloatFrom(0.1), An: null.IntFrom(40)}
	longA = indexes.Variant{Chromosome: "chr1", Position: 100, ExternalId: "chr1_100_A_T", Ref: "A", Alt: "T",
		Af: null.FloatFrom(0.3)}
	longOnly = indexes.Variant{Chromosome: "chr7", Position: 7, ExternalId: "chr7_7_C_G", Ref: "C", Alt: "G",
		Af: null.FloatFrom(0.5)}
)

func merge(t *testing.T, store *fakeVariantStore, query string) dtos.VariantDetailResponse {
	t.Helper()
	res, err := NewVariantService(store).Merge(context.Background(), query)
	require.NoError(t, err)
	return res
}

func TestMerge(t *testing.T) {
	t.Run("should return one record without long-read fields for a short-read only key", func(t *testing.T) {
		store := &fakeVariantStore{variants: map[constants.Dataset][]indexes.Variant{
			dataset.ShortRead: {shortA},
		}}

		res := merge(t, store, "chr1_100_A_T")

		assert.Equal(t, "chr1_100_A_T", res.Query)
		require.Len(t, res.CombinedVariants, 1)
		mv := res.CombinedVariants[0]
		assert.Equal(t, "chr1_100_A_T", mv.UniqueKey)
		assert.False(t, mv.AfLongRead.Valid)
		assert.Equal(t, 0.1, mv.AfShortRead.Float64)
		assert.Equal(t, "rs100", mv.VariantId.String)
		assert.Equal(t, int64(4), mv.Ac.Int64)
	})

	t.Run("should merge both datasets for a shared key", func(t *testing.T) {
		long := longA
		long.Chromosome = "1"
		store := &fakeVariantStore{variants: map[constants.Dataset][]indexes.Variant{
			dataset.ShortRead: {shortA},
			dataset.LongRead:  {long},
		}}

		res := merge(t, store, "chr1_100_A_T")

		require.Len(t, res.CombinedVariants, 1)
		mv := res.CombinedVariants[0]
		assert.Equal(t, "chr1", mv.Chromosome.String, "short-read positional fields win")
		assert.Equal(t, 0.1, mv.AfShortRead.Float64)
		assert.Equal(t, 0.3, mv.AfLongRead.Float64)
	})

	t.Run("should null short-read fields for a long-read only key", func(t *testing.T) {
		store := &fakeVariantStore{variants: map[constants.Dataset][]indexes.Variant{
			dataset.LongRead: {longOnly},
		}}

		res := merge(t, store, "chr7_7_C_G")

		require.Len(t, res.CombinedVariants, 1)
		mv := res.CombinedVariants[0]
		assert.Equal(t, "chr7", mv.Chromosome.String)
		assert.Equal(t, int64(7), mv.Position.Int64)
		assert.Equal(t, 0.5, mv.AfLongRead.Float64)
		assert.False(t, mv.AfShortRead.Valid)
		assert.False(t, mv.VariantId.Valid)
		assert.False(t, mv.Ac.Valid)
		assert.False(t, mv.An.Valid)
	})

	t.Run("should resolve an rsID then find long-read by the derived key", func(t *testing.T) {
		store := &fakeVariantStore{variants: map[constants.Dataset][]indexes.Variant{
			dataset.ShortRead: {shortA},
			dataset.LongRead:  {longA},
		}}

		res := merge(t, store, "  rs100 ")

		assert.Equal(t, "rs100", res.Query)
		require.Len(t, res.CombinedVariants, 1)
		assert.Equal(t, 0.3, res.CombinedVariants[0].AfLongRead.Float64)
	})

	t.Run("should not query long-read when an rsID is unknown", func(t *testing.T) {
		store := &fakeVariantStore{variants: map[constants.Dataset][]indexes.Variant{
			dataset.LongRead: {longA},
		}}

		res := merge(t, store, "rs100")
		assert.Empty(t, res.CombinedVariants)
	})

	t.Run("should return one record per key when an rsID maps to several variants", func(t *testing.T) {
		shortB := shortA
		shortB.Alt = "G"
		store := &fakeVariantStore{variants: map[constants.Dataset][]indexes.Variant{
			dataset.ShortRead: {shortA, shortB},
			dataset.LongRead:  {longA},
		}}

		res := merge(t, store, "rs100")

		require.Len(t, res.CombinedVariants, 2)
		byKey := map[string]dtos.MergedVariant{}
		for _, mv := range res.CombinedVariants {
			byKey[mv.UniqueKey] = mv
		}
		assert.True(t, byKey["chr1_100_A_T"].AfLongRead.Valid)
		assert.False(t, byKey["chr1_100_A_G"].AfLongRead.Valid)
	})

	t.Run("should render an empty short-read id as an empty string", func(t *testing.T) {
		noId := shortA
		noId.ExternalId = ""
		store := &fakeVariantStore{variants: map[constants.Dataset][]indexes.Variant{
			dataset.ShortRead: {noId},
		}}

		res := merge(t, store, "chr1_100_A_T")

		require.Len(t, res.CombinedVariants, 1)
		mv := res.CombinedVariants[0]
		assert.True(t, mv.VariantId.Valid)
		assert.Equal(t, "", mv.VariantId.String)

		body, err := json.Marshal(mv)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"variant_id":""`)
	})

	t.Run("should return an empty list for an empty query", func(t *testing.T) {
		res := merge(t, &fakeVariantStore{}, "   ")

		assert.Equal(t, "", res.Query)
		assert.NotNil(t, res.CombinedVariants)
		assert.Empty(t, res.CombinedVariants)
	})

	t.Run("should surface store failures", func(t *testing.T) {
		boom := errors.New("store down")
		_, err := NewVariantService(&fakeVariantStore{err: boom}).Merge(context.Background(), "chr1_100_A_T")
		assert.True(t, errors.Is(err, boom))

		_, err = NewVariantService(&fakeVariantStore{err: boom}).Merge(context.Background(), "rs1")
		assert.True(t, errors.Is(err, boom))
	})
}
