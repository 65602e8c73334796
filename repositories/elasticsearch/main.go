// Package elasticsearch stores each dataset in three indices:
// <prefix>-<dataset>-variants, -patients and -genotypes.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Jeffail/gabs"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"go.uber.org/zap"

	"varbrowser/api/models"
	"varbrowser/api/models/constants"
	"varbrowser/api/models/constants/dataset"
	"varbrowser/api/models/indexes"
	"varbrowser/api/repositories"
)

const (
	variantsIndex  = "variants"
	patientsIndex  = "patients"
	genotypesIndex = "genotypes"

	// page size used when walking genotype hits with search_after
	scanPageSize = 1000
	// max ids per _mget round trip
	mgetBatchSize = 1000
	// a single identity never resolves to more variants than this
	variantLookupSize = 100
)

var indexMappings = map[string]map[string]interface{}{
	variantsIndex:  indexes.VARIANT_INDEX_MAPPING,
	patientsIndex:  indexes.PATIENT_INDEX_MAPPING,
	genotypesIndex: indexes.GENOTYPE_INDEX_MAPPING,
}

type Store struct {
	es     *elasticsearch.Client
	prefix string
	debug  bool
	logger *zap.Logger
}

var _ repositories.Repository = (*Store)(nil)

func NewStore(es *elasticsearch.Client, cfg *models.Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		es:     es,
		prefix: cfg.Elasticsearch.IndexPrefix,
		debug:  cfg.Debug,
		logger: logger,
	}
}

// Close is a no-op; the elasticsearch client holds no resources to release.
func (s *Store) Close() error {
	return nil
}

func (s *Store) index(ds constants.Dataset, name string) (string, error) {
	if !dataset.IsKnown(string(ds)) {
		return "", fmt.Errorf("unknown dataset %q", ds)
	}
	return fmt.Sprintf("%s-%s-%s", s.prefix, ds, name), nil
}

// EnsureIndices creates every dataset index that does not exist yet.
func (s *Store) EnsureIndices(ctx context.Context) error {
	for _, ds := range dataset.All {
		for name, mapping := range indexMappings {
			idx, _ := s.index(ds, name)

			res, err := s.es.Indices.Exists([]string{idx}, s.es.Indices.Exists.WithContext(ctx))
			if err != nil {
				return fmt.Errorf("check index %s: %w", idx, err)
			}
			res.Body.Close()
			if res.StatusCode == http.StatusOK {
				continue
			}

			var buf bytes.Buffer
			if err := json.NewEncoder(&buf).Encode(map[string]interface{}{"mappings": mapping}); err != nil {
				return fmt.Errorf("encode mapping for %s: %w", idx, err)
			}
			res, err = s.es.Indices.Create(idx,
				s.es.Indices.Create.WithContext(ctx),
				s.es.Indices.Create.WithBody(&buf))
			if err != nil {
				return fmt.Errorf("create index %s: %w", idx, err)
			}
			if _, err := parseResponse(res, "create index "+idx); err != nil {
				return err
			}
			s.logger.Info("created index", zap.String("index", idx))
		}
	}
	return nil
}

func (s *Store) search(ctx context.Context, idx string, query map[string]interface{}) (*gabs.Container, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	if s.debug {
		// view the outbound elasticsearch query
		s.logger.Debug("elasticsearch query", zap.String("index", idx), zap.String("body", buf.String()))
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(idx),
		s.es.Search.WithBody(&buf),
		s.es.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", idx, err)
	}
	return parseResponse(res, "search "+idx)
}

// parseResponse closes the response body and parses it, turning
// non-2xx statuses into errors.
func parseResponse(res *esapi.Response, what string) (*gabs.Container, error) {
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", what, err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%s: elasticsearch returned %s: %s", what, res.Status(), body)
	}

	parsed, err := gabs.ParseJSON(body)
	if err != nil {
		return nil, fmt.Errorf("%s: parse response: %w", what, err)
	}
	return parsed, nil
}

// hits returns the hits.hits array of a search response.
func hits(result *gabs.Container) ([]*gabs.Container, error) {
	if !result.ExistsP("hits.hits") {
		return nil, fmt.Errorf("malformed search response: no hits")
	}
	return result.Path("hits.hits").Children()
}
