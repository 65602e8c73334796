package indexes

import (
	"fmt"
	"strings"

	"gopkg.in/guregu/null.v3"
)

const (
	UniqueKeySeparator    = "_"
	ExternalIdChromPrefix = "chr"
)

// Variant is one row of a dataset's variant table.
// Long-read variants carry no allele count or allele number.
type Variant struct {
	Chromosome string     `json:"chromosome"`
	Position   int64      `json:"position"`
	ExternalId string     `json:"variantId"`
	Ref        string     `json:"ref"`
	Alt        string     `json:"alt"`
	Ac         null.Int   `json:"ac"`
	Af         null.Float `json:"af"`
	An         null.Int   `json:"an"`
}

// UniqueKey serializes the composite (chromosome, position, ref, alt) key.
func (v Variant) UniqueKey() string {
	return FormatUniqueKey(v.Chromosome, v.Position, v.Ref, v.Alt)
}

func FormatUniqueKey(chrom string, pos int64, ref, alt string) string {
	return fmt.Sprintf("%s_%d_%s_%s", chrom, pos, ref, alt)
}

// IsUniqueKeyQuery reports whether a free-text identity looks like a composite key
// rather than an external identifier.
func IsUniqueKeyQuery(query string) bool {
	return strings.Contains(query, UniqueKeySeparator)
}

// NormalizeExternalId prefixes present identifiers with "chr" if they lack it.
func NormalizeExternalId(id string) string {
	if id != "" && !strings.HasPrefix(id, ExternalIdChromPrefix) {
		return ExternalIdChromPrefix + id
	}
	return id
}

type Patient struct {
	PatientId string      `json:"patientId"`
	Gender    null.String `json:"gender"`
	Diagnosis null.String `json:"diagnosis"`
}

// Genotype links one variant to one patient within a dataset.
type Genotype struct {
	VariantKey string `json:"variantKey"`
	PatientId  string `json:"patientId"`
	Genotype   string `json:"genotype"`
}

// GenotypeCall is a genotype row joined with its patient, as scanned
// from a genotype store in insertion order.
type GenotypeCall struct {
	PatientId string
	Genotype  string
	Gender    null.String
	Diagnosis null.String
}

// -- elasticsearch document shapes

type VariantDocument struct {
	Seq        int64    `json:"seq" mapstructure:"seq"`
	UniqueKey  string   `json:"uniqueKey" mapstructure:"uniqueKey"`
	Chromosome string   `json:"chromosome" mapstructure:"chromosome"`
	Position   int64    `json:"position" mapstructure:"position"`
	ExternalId string   `json:"variantId" mapstructure:"variantId"`
	Ref        string   `json:"ref" mapstructure:"ref"`
	Alt        string   `json:"alt" mapstructure:"alt"`
	Ac         *int64   `json:"ac,omitempty" mapstructure:"ac"`
	Af         *float64 `json:"af,omitempty" mapstructure:"af"`
	An         *int64   `json:"an,omitempty" mapstructure:"an"`
}

func (d VariantDocument) ToVariant() Variant {
	return Variant{
		Chromosome: d.Chromosome,
		Position:   d.Position,
		ExternalId: d.ExternalId,
		Ref:        d.Ref,
		Alt:        d.Alt,
		Ac:         null.IntFromPtr(d.Ac),
		Af:         null.FloatFromPtr(d.Af),
		An:         null.IntFromPtr(d.An),
	}
}

func NewVariantDocument(v Variant) VariantDocument {
	return VariantDocument{
		UniqueKey:  v.UniqueKey(),
		Chromosome: v.Chromosome,
		Position:   v.Position,
		ExternalId: v.ExternalId,
		Ref:        v.Ref,
		Alt:        v.Alt,
		Ac:         v.Ac.Ptr(),
		Af:         v.Af.Ptr(),
		An:         v.An.Ptr(),
	}
}

type PatientDocument struct {
	PatientId string  `json:"patientId" mapstructure:"patientId"`
	Gender    *string `json:"gender,omitempty" mapstructure:"gender"`
	Diagnosis *string `json:"diagnosis,omitempty" mapstructure:"diagnosis"`
}

type GenotypeDocument struct {
	Seq        int64  `json:"seq" mapstructure:"seq"`
	VariantKey string `json:"variantKey" mapstructure:"variantKey"`
	PatientId  string `json:"patientId" mapstructure:"patientId"`
	Genotype   string `json:"genotype" mapstructure:"genotype"`
}

var MAPPING_KEYWORD = map[string]interface{}{"type": "keyword"}
var MAPPING_LONG = map[string]interface{}{"type": "long"}
var MAPPING_FLOAT64 = map[string]interface{}{"type": "double"}

var VARIANT_INDEX_MAPPING = map[string]interface{}{
	"properties": map[string]interface{}{
		"seq":        MAPPING_LONG,
		"uniqueKey":  MAPPING_KEYWORD,
		"chromosome": MAPPING_KEYWORD,
		"position":   MAPPING_LONG,
		"variantId":  MAPPING_KEYWORD,
		"ref":        MAPPING_KEYWORD,
		"alt":        MAPPING_KEYWORD,
		"ac":         MAPPING_LONG,
		"af":         MAPPING_FLOAT64,
		"an":         MAPPING_LONG,
	},
}

var PATIENT_INDEX_MAPPING = map[string]interface{}{
	"properties": map[string]interface{}{
		"patientId": MAPPING_KEYWORD,
		"gender":    MAPPING_KEYWORD,
		"diagnosis": MAPPING_KEYWORD,
	},
}

var GENOTYPE_INDEX_MAPPING = map[string]interface{}{
	"properties": map[string]interface{}{
		"seq":        MAPPING_LONG,
		"variantKey": MAPPING_KEYWORD,
		"patientId":  MAPPING_KEYWORD,
		"genotype":   MAPPING_KEYWORD,
	},
}
