package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/elastic/go-elasticsearch/v7/esutil"
	"go.uber.org/zap"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/indexes"
	"varbrowser/api/repositories"
)

type bulkDoc struct {
	id     string
	action string
	body   interface{}
}

// PutVariants creates one document per variant, keyed by its composite key,
// so a key that already exists in the dataset fails the batch. Documents
// carry an ingestion sequence so lookups return them in insertion order.
func (s *Store) PutVariants(ctx context.Context, ds constants.Dataset, variants []indexes.Variant) error {
	idx, err := s.index(ds, variantsIndex)
	if err != nil {
		return err
	}

	next, err := s.nextSeq(ctx, idx)
	if err != nil {
		return err
	}

	docs := make([]bulkDoc, 0, len(variants))
	for i, v := range variants {
		doc := indexes.NewVariantDocument(repositories.PrepareVariant(ds, v))
		doc.Seq = next + int64(i)
		docs = append(docs, bulkDoc{id: doc.UniqueKey, action: "create", body: doc})
	}
	return s.bulk(ctx, idx, docs)
}

// PutPatients upserts patients by id.
func (s *Store) PutPatients(ctx context.Context, ds constants.Dataset, patients []indexes.Patient) error {
	idx, err := s.index(ds, patientsIndex)
	if err != nil {
		return err
	}

	docs := make([]bulkDoc, 0, len(patients))
	for _, p := range patients {
		docs = append(docs, bulkDoc{
			id:     p.PatientId,
			action: "index",
			body: indexes.PatientDocument{
				PatientId: p.PatientId,
				Gender:    p.Gender.Ptr(),
				Diagnosis: p.Diagnosis.Ptr(),
			},
		})
	}
	return s.bulk(ctx, idx, docs)
}

// PutGenotypes appends genotype calls after the highest sequence number
// already stored, so scans keep returning them in insertion order.
func (s *Store) PutGenotypes(ctx context.Context, ds constants.Dataset, genotypes []indexes.Genotype) error {
	idx, err := s.index(ds, genotypesIndex)
	if err != nil {
		return err
	}

	next, err := s.nextSeq(ctx, idx)
	if err != nil {
		return err
	}

	docs := make([]bulkDoc, 0, len(genotypes))
	for i, g := range genotypes {
		docs = append(docs, bulkDoc{
			action: "index",
			body: indexes.GenotypeDocument{
				Seq:        next + int64(i),
				VariantKey: g.VariantKey,
				PatientId:  g.PatientId,
				Genotype:   g.Genotype,
			},
		})
	}
	return s.bulk(ctx, idx, docs)
}

func (s *Store) nextSeq(ctx context.Context, idx string) (int64, error) {
	result, err := s.search(ctx, idx, map[string]interface{}{
		"size": 0,
		"aggs": map[string]interface{}{
			"max_seq": map[string]interface{}{
				"max": map[string]interface{}{"field": "seq"},
			},
		},
	})
	if err != nil {
		return 0, err
	}

	// value is null on an empty index
	maxSeq, ok := result.Path("aggregations.max_seq.value").Data().(float64)
	if !ok {
		return 0, nil
	}
	return int64(maxSeq) + 1, nil
}

func (s *Store) bulk(ctx context.Context, idx string, docs []bulkDoc) error {
	if len(docs) == 0 {
		return nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:  idx,
		Client: s.es,
		// documents must be searchable once the seed returns
		Refresh: "wait_for",
	})
	if err != nil {
		return fmt.Errorf("create bulk indexer: %w", err)
	}

	var (
		failuresMux sync.Mutex
		failures    []string
	)
	for _, d := range docs {
		data, err := json.Marshal(d.body)
		if err != nil {
			return fmt.Errorf("encode %s document: %w", idx, err)
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     d.action,
			DocumentID: d.id,
			Body:       bytes.NewReader(data),

			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				reason := fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason)
				if err != nil {
					reason = err.Error()
				}
				failuresMux.Lock()
				failures = append(failures, reason)
				failuresMux.Unlock()
			},
		})
		if err != nil {
			return fmt.Errorf("queue %s document: %w", idx, err)
		}
	}

	if err := bi.Close(ctx); err != nil {
		return fmt.Errorf("flush %s: %w", idx, err)
	}

	stats := bi.Stats()
	s.logger.Debug("bulk indexed",
		zap.String("index", idx),
		zap.Uint64("indexed", stats.NumIndexed+stats.NumCreated),
		zap.Uint64("failed", stats.NumFailed))

	if len(failures) > 0 {
		return fmt.Errorf("%d of %d %s documents failed, first: %s", len(failures), len(docs), idx, failures[0])
	}
	return nil
}
