// Package fixtures loads YAML seed files into a storage backend.
package fixtures

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/guregu/null.v3"
	yaml "gopkg.in/yaml.v2"

	"varbrowser/api/models/constants"
	"varbrowser/api/models/constants/dataset"
	"varbrowser/api/models/indexes"
	"varbrowser/api/repositories"
)

type (
	Seed struct {
		ShortRead Dataset `yaml:"shortread"`
		LongRead  Dataset `yaml:"longread"`
	}

	Dataset struct {
		Variants  []Variant  `yaml:"variants"`
		Patients  []Patient  `yaml:"patients"`
		Genotypes []Genotype `yaml:"genotypes"`
	}

	Variant struct {
		Chromosome string   `yaml:"chromosome"`
		Position   int64    `yaml:"position"`
		VariantId  string   `yaml:"variant_id"`
		Ref        string   `yaml:"ref"`
		Alt        string   `yaml:"alt"`
		Ac         *int64   `yaml:"ac"`
		Af         *float64 `yaml:"af"`
		An         *int64   `yaml:"an"`
	}

	Patient struct {
		PatientId string  `yaml:"patient_id"`
		Gender    *string `yaml:"gender"`
		Diagnosis *string `yaml:"diagnosis"`
	}

	Genotype struct {
		// composite key of the variant, chrom_pos_ref_alt
		Variant   string `yaml:"variant"`
		PatientId string `yaml:"patient_id"`
		Genotype  string `yaml:"genotype"`
	}
)

func Load(path string) (*Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

func Parse(r io.Reader) (*Seed, error) {
	var seed Seed
	decoder := yaml.NewDecoder(r)
	decoder.SetStrict(true)
	if err := decoder.Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &seed, nil
}

// Apply writes both datasets, variants and patients before genotypes.
func (s *Seed) Apply(ctx context.Context, w repositories.Writer) error {
	for _, ds := range []struct {
		name constants.Dataset
		data Dataset
	}{
		{dataset.ShortRead, s.ShortRead},
		{dataset.LongRead, s.LongRead},
	} {
		if err := ds.data.apply(ctx, ds.name, w); err != nil {
			return fmt.Errorf("seed %s: %w", ds.name, err)
		}
	}
	return nil
}

func (d Dataset) apply(ctx context.Context, ds constants.Dataset, w repositories.Writer) error {
	variants := make([]indexes.Variant, 0, len(d.Variants))
	for _, v := range d.Variants {
		variants = append(variants, indexes.Variant{
			Chromosome: v.Chromosome,
			Position:   v.Position,
			ExternalId: v.VariantId,
			Ref:        v.Ref,
			Alt:        v.Alt,
			Ac:         null.IntFromPtr(v.Ac),
			Af:         null.FloatFromPtr(v.Af),
			An:         null.IntFromPtr(v.An),
		})
	}

	patients := make([]indexes.Patient, 0, len(d.Patients))
	for _, p := range d.Patients {
		patients = append(patients, indexes.Patient{
			PatientId: p.PatientId,
			Gender:    null.StringFromPtr(p.Gender),
			Diagnosis: null.StringFromPtr(p.Diagnosis),
		})
	}

	genotypes := make([]indexes.Genotype, 0, len(d.Genotypes))
	for _, g := range d.Genotypes {
		genotypes = append(genotypes, indexes.Genotype{
			VariantKey: g.Variant,
			PatientId:  g.PatientId,
			Genotype:   g.Genotype,
		})
	}

	if err := w.PutVariants(ctx, ds, variants); err != nil {
		return err
	}
	if err := w.PutPatients(ctx, ds, patients); err != nil {
		return err
	}
	return w.PutGenotypes(ctx, ds, genotypes)
}
