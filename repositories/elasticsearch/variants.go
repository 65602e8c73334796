package elasticsearch

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/indexes"
)

func (s *Store) GetVariantsByUniqueKey(ctx context.Context, ds constants.Dataset, uniqueKey string) ([]indexes.Variant, error) {
	return s.termVariants(ctx, ds, "uniqueKey", uniqueKey)
}

func (s *Store) GetVariantsByExternalId(ctx context.Context, ds constants.Dataset, externalId string) ([]indexes.Variant, error) {
	return s.termVariants(ctx, ds, "variantId", externalId)
}

func (s *Store) termVariants(ctx context.Context, ds constants.Dataset, field string, value string) ([]indexes.Variant, error) {
	idx, err := s.index(ds, variantsIndex)
	if err != nil {
		return nil, err
	}

	result, err := s.search(ctx, idx, map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				field: value,
			},
		},
		"sort": []map[string]interface{}{
			{"seq": "asc"},
		},
		"size": variantLookupSize,
	})
	if err != nil {
		return nil, err
	}

	docHits, err := hits(result)
	if err != nil {
		return nil, err
	}

	variants := make([]indexes.Variant, 0, len(docHits))
	for _, hit := range docHits {
		var doc indexes.VariantDocument
		if err := mapstructure.Decode(hit.Path("_source").Data(), &doc); err != nil {
			return nil, fmt.Errorf("decode %s variant: %w", ds, err)
		}
		variants = append(variants, doc.ToVariant())
	}
	return variants, nil
}
