package dtos

import (
	"time"

	"gopkg.in/guregu/null.v3"
)

// PatientRecord is one genotype call rendered for a clinician.
type PatientRecord struct {
	PatientId string `json:"patient_id"`
	Genotype  string `json:"genotype"`
	Gender    string `json:"gender"`
	Diagnosis string `json:"diagnosis"`
}

// PatientBucket is one (possibly paginated) zygosity group.
type PatientBucket struct {
	Pages      [][]PatientRecord `json:"pages"`
	Total      int               `json:"total"`
	TotalPages int               `json:"total_pages"`
}

type PatientsResponse struct {
	VariantKey  string                   `json:"variant_key"`
	VariantId   string                   `json:"variant_id,omitempty"` // long-read only
	HomoCount   int                      `json:"homo_count"`
	HeteroCount int                      `json:"hetero_count"`
	Result      map[string]PatientBucket `json:"result"`
}

// MergedVariant is the per-composite-key union of both datasets' variant records.
type MergedVariant struct {
	UniqueKey   string      `json:"unique_key"`
	VariantId   null.String `json:"variant_id"`
	Chromosome  null.String `json:"chromosome"`
	Position    null.Int    `json:"position"`
	Ref         null.String `json:"ref"`
	Alt         null.String `json:"alt"`
	AfShortRead null.Float  `json:"af_shortread"`
	AfLongRead  null.Float  `json:"af_longread"`
	Ac          null.Int    `json:"ac"`
	An          null.Int    `json:"an"`
}

type VariantDetailResponse struct {
	CombinedVariants []MergedVariant `json:"combined_variants"`
	Query            string          `json:"query"`
}

// ErrorResponse is returned with a 200 status for request-level failures
// (missing identity, unknown variant).
type ErrorResponse struct {
	Error string `json:"error"`
}

type GeneralErrorResponseDto struct {
	Code      int            `json:"code"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Errors    []GeneralError `json:"errors"`
}

type GeneralError struct {
	Message string `json:"message"`
}
