package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/guregu/null.v3"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/indexes"
	"varbrowser/api/repositories"
)

// ScanGenotypes walks every genotype document of the variant ordered by
// its ingestion sequence, then joins the patients in batches. Calls whose
// patient document is missing are dropped.
func (s *Store) ScanGenotypes(ctx context.Context, ds constants.Dataset, variant indexes.Variant) ([]indexes.GenotypeCall, error) {
	idx, err := s.index(ds, genotypesIndex)
	if err != nil {
		return nil, err
	}

	var (
		docs       []indexes.GenotypeDocument
		searchFrom interface{}
	)
	for {
		query := map[string]interface{}{
			"query": map[string]interface{}{
				"term": map[string]interface{}{
					"variantKey": variant.UniqueKey(),
				},
			},
			"sort": []map[string]interface{}{
				{"seq": "asc"},
			},
			"size": scanPageSize,
		}
		if searchFrom != nil {
			query["search_after"] = searchFrom
		}

		result, err := s.search(ctx, idx, query)
		if err != nil {
			return nil, err
		}
		page, err := hits(result)
		if err != nil {
			return nil, err
		}

		for _, hit := range page {
			var doc indexes.GenotypeDocument
			if err := mapstructure.Decode(hit.Path("_source").Data(), &doc); err != nil {
				return nil, fmt.Errorf("decode %s genotype: %w", ds, err)
			}
			docs = append(docs, doc)
			searchFrom = hit.Path("sort").Data()
		}

		if len(page) < scanPageSize {
			break
		}
	}

	patients, err := s.getPatients(ctx, ds, docs)
	if err != nil {
		return nil, err
	}

	calls := make([]indexes.GenotypeCall, 0, len(docs))
	for _, doc := range docs {
		patient, ok := patients[doc.PatientId]
		if !ok {
			continue
		}
		calls = append(calls, indexes.GenotypeCall{
			PatientId: doc.PatientId,
			Genotype:  doc.Genotype,
			Gender:    null.StringFromPtr(patient.Gender),
			Diagnosis: null.StringFromPtr(patient.Diagnosis),
		})
	}
	return calls, nil
}

func (s *Store) getPatients(ctx context.Context, ds constants.Dataset, docs []indexes.GenotypeDocument) (map[string]indexes.PatientDocument, error) {
	idx, err := s.index(ds, patientsIndex)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	seen := map[string]bool{}
	for _, d := range docs {
		if !seen[d.PatientId] {
			seen[d.PatientId] = true
			ids = append(ids, d.PatientId)
		}
	}

	patients := make(map[string]indexes.PatientDocument, len(ids))
	for start := 0; start < len(ids); start += mgetBatchSize {
		end := start + mgetBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(map[string]interface{}{"ids": ids[start:end]}); err != nil {
			return nil, fmt.Errorf("encode patient ids: %w", err)
		}
		res, err := s.es.Mget(&buf, s.es.Mget.WithContext(ctx), s.es.Mget.WithIndex(idx))
		if err != nil {
			return nil, fmt.Errorf("mget %s: %w", idx, err)
		}
		result, err := parseResponse(res, "mget "+idx)
		if err != nil {
			return nil, err
		}

		found, err := result.Path("docs").Children()
		if err != nil {
			return nil, fmt.Errorf("malformed mget response: %w", err)
		}
		for _, doc := range found {
			if ok, _ := doc.Path("found").Data().(bool); !ok {
				continue
			}
			var p indexes.PatientDocument
			if err := mapstructure.Decode(doc.Path("_source").Data(), &p); err != nil {
				return nil, fmt.Errorf("decode %s patient: %w", ds, err)
			}
			patients[p.PatientId] = p
		}
	}
	return patients, nil
}

// FindDuplicateGenotypes buckets genotype documents on (variantKey, patientId)
// and keeps the buckets holding more than one call.
func (s *Store) FindDuplicateGenotypes(ctx context.Context, ds constants.Dataset) ([]repositories.DuplicateCall, error) {
	idx, err := s.index(ds, genotypesIndex)
	if err != nil {
		return nil, err
	}

	result, err := s.search(ctx, idx, map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			"duplicates": map[string]interface{}{
				"multi_terms": map[string]interface{}{
					"terms": []map[string]interface{}{
						{"field": "variantKey"},
						{"field": "patientId"},
					},
					"min_doc_count": 2,
					"size":          10000, // increases the number of buckets returned (default is 10)
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	if !result.ExistsP("aggregations.duplicates.buckets") {
		return nil, nil
	}
	buckets, err := result.Path("aggregations.duplicates.buckets").Children()
	if err != nil {
		return nil, fmt.Errorf("malformed aggregation response: %w", err)
	}

	dups := make([]repositories.DuplicateCall, 0, len(buckets))
	for _, b := range buckets {
		key, err := b.Path("key").Children()
		if err != nil || len(key) != 2 {
			return nil, fmt.Errorf("malformed duplicate bucket %s", b.String())
		}
		variantKey, _ := key[0].Data().(string)
		patientId, _ := key[1].Data().(string)
		count, _ := b.Path("doc_count").Data().(float64)

		dups = append(dups, repositories.DuplicateCall{
			VariantKey: variantKey,
			PatientId:  patientId,
			Count:      int64(count),
		})
	}
	return dups, nil
}
