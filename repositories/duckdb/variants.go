package duckdb

import (
	"context"
	"fmt"

	"gopkg.in/guregu/null.v3"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/indexes"
	"varbrowser/api/repositories"
)

type variantRow struct {
	Chromosome string      `db:"chromosome"`
	Position   int64       `db:"position"`
	ExternalId null.String `db:"external_id"`
	Ref        string      `db:"ref"`
	Alt        string      `db:"alt"`
	Ac         null.Int    `db:"ac"`
	Af         null.Float  `db:"af"`
	An         null.Int    `db:"an"`
}

func (r variantRow) toVariant() indexes.Variant {
	return indexes.Variant{
		Chromosome: r.Chromosome,
		Position:   r.Position,
		ExternalId: r.ExternalId.ValueOrZero(),
		Ref:        r.Ref,
		Alt:        r.Alt,
		Ac:         r.Ac,
		Af:         r.Af,
		An:         r.An,
	}
}

type genotypeCallRow struct {
	PatientId string      `db:"patient_id"`
	Genotype  string      `db:"genotype"`
	Gender    null.String `db:"gender"`
	Diagnosis null.String `db:"diagnosis"`
}

// GetVariantsByUniqueKey looks up variants by their chrom_pos_ref_alt key.
func (s *Store) GetVariantsByUniqueKey(ctx context.Context, ds constants.Dataset, uniqueKey string) ([]indexes.Variant, error) {
	return s.selectVariants(ctx, ds, "unique_key", uniqueKey)
}

// GetVariantsByExternalId looks up variants by external identifier.
func (s *Store) GetVariantsByExternalId(ctx context.Context, ds constants.Dataset, externalId string) ([]indexes.Variant, error) {
	return s.selectVariants(ctx, ds, "external_id", externalId)
}

func (s *Store) selectVariants(ctx context.Context, ds constants.Dataset, column string, value string) ([]indexes.Variant, error) {
	t, err := table(ds, "variants")
	if err != nil {
		return nil, err
	}

	var rows []variantRow
	query := fmt.Sprintf(`SELECT chromosome, position, external_id, ref, alt, ac, af, an
		FROM %s WHERE %s = ? ORDER BY row_id`, t, column)
	if err := s.db.SelectContext(ctx, &rows, query, value); err != nil {
		return nil, fmt.Errorf("query %s variants by %s: %w", ds, column, err)
	}

	variants := make([]indexes.Variant, 0, len(rows))
	for _, r := range rows {
		variants = append(variants, r.toVariant())
	}
	return variants, nil
}

// ScanGenotypes returns every genotype call for the variant joined with its
// patient, in insertion order.
func (s *Store) ScanGenotypes(ctx context.Context, ds constants.Dataset, variant indexes.Variant) ([]indexes.GenotypeCall, error) {
	g, err := table(ds, "genotypes")
	if err != nil {
		return nil, err
	}
	p, _ := table(ds, "patients")

	rows, err := s.db.QueryxContext(ctx, fmt.Sprintf(`SELECT g.patient_id, g.genotype, p.gender, p.diagnosis
		FROM %s g JOIN %s p ON p.patient_id = g.patient_id
		WHERE g.variant_key = ?
		ORDER BY g.row_id`, g, p), variant.UniqueKey())
	if err != nil {
		return nil, fmt.Errorf("scan %s genotypes: %w", ds, err)
	}
	defer rows.Close()

	var calls []indexes.GenotypeCall
	for rows.Next() {
		var r genotypeCallRow
		if err := rows.StructScan(&r); err != nil {
			return nil, fmt.Errorf("scan genotype row: %w", err)
		}
		calls = append(calls, indexes.GenotypeCall{
			PatientId: r.PatientId,
			Genotype:  r.Genotype,
			Gender:    r.Gender,
			Diagnosis: r.Diagnosis,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate genotypes: %w", err)
	}
	return calls, nil
}

// FindDuplicateGenotypes lists (variant, patient) pairs with more than one call.
func (s *Store) FindDuplicateGenotypes(ctx context.Context, ds constants.Dataset) ([]repositories.DuplicateCall, error) {
	g, err := table(ds, "genotypes")
	if err != nil {
		return nil, err
	}

	var dups []repositories.DuplicateCall
	if err := s.db.SelectContext(ctx, &dups, fmt.Sprintf(`SELECT variant_key, patient_id, COUNT(*) AS calls
		FROM %s
		GROUP BY variant_key, patient_id
		HAVING COUNT(*) > 1
		ORDER BY variant_key, patient_id`, g)); err != nil {
		return nil, fmt.Errorf("query %s duplicate genotypes: %w", ds, err)
	}
	return dups, nil
}
