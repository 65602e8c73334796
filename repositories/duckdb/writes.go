package duckdb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v3"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/indexes"
	"varbrowser/api/repositories"
)

var _ repositories.Repository = (*Store)(nil)

// PutVariants inserts variants in one transaction. A composite key that
// already exists in the dataset fails the whole batch.
func (s *Store) PutVariants(ctx context.Context, ds constants.Dataset, variants []indexes.Variant) error {
	t, err := table(ds, "variants")
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`INSERT INTO %s
			(unique_key, chromosome, position, external_id, ref, alt, ac, af, an)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, t)
		for _, v := range variants {
			v = repositories.PrepareVariant(ds, v)
			externalId := null.NewString(v.ExternalId, v.ExternalId != "")
			if _, err := tx.ExecContext(ctx, query,
				v.UniqueKey(), v.Chromosome, v.Position, externalId, v.Ref, v.Alt,
				v.Ac, v.Af, v.An,
			); err != nil {
				return fmt.Errorf("insert %s variant %s: %w", ds, v.UniqueKey(), err)
			}
		}
		return nil
	})
}

// PutPatients upserts patients by id.
func (s *Store) PutPatients(ctx context.Context, ds constants.Dataset, patients []indexes.Patient) error {
	t, err := table(ds, "patients")
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`INSERT OR REPLACE INTO %s (patient_id, gender, diagnosis) VALUES (?, ?, ?)`, t)
		for _, p := range patients {
			if _, err := tx.ExecContext(ctx, query, p.PatientId, p.Gender, p.Diagnosis); err != nil {
				return fmt.Errorf("insert %s patient %s: %w", ds, p.PatientId, err)
			}
		}
		return nil
	})
}

// PutGenotypes appends genotype calls; their insertion order is the scan order.
func (s *Store) PutGenotypes(ctx context.Context, ds constants.Dataset, genotypes []indexes.Genotype) error {
	t, err := table(ds, "genotypes")
	if err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		query := fmt.Sprintf(`INSERT INTO %s (variant_key, patient_id, genotype) VALUES (?, ?, ?)`, t)
		for _, g := range genotypes {
			if _, err := tx.ExecContext(ctx, query, g.VariantKey, g.PatientId, g.Genotype); err != nil {
				return fmt.Errorf("insert %s genotype %s@%s: %w", ds, g.PatientId, g.VariantKey, err)
			}
		}
		return nil
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
