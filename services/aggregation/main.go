// Package aggregation buckets a variant's genotype calls by zygosity.
package aggregation

import (
	"varbrowser/api/models/constants"
	"varbrowser/api/models/constants/zygosity"
	"varbrowser/api/models/dtos"
	"varbrowser/api/models/indexes"
)

// Result is what gets cached per (dataset, variant key).
type Result struct {
	// composite key of the scanned variant, filled in by the caller
	VariantKey string

	All         []dtos.PatientRecord
	Homo        []dtos.PatientRecord
	Hetero      []dtos.PatientRecord
	HomoCount   int
	HeteroCount int
}

// InclusionRule decides whether a call of the given zygosity belongs to the "all" bucket.
type InclusionRule func(zyg constants.Zygosity) bool

// Aggregate walks the calls once, in scan order.
func Aggregate(calls []indexes.GenotypeCall, includeInAll InclusionRule) Result {
	res := Result{
		All:    make([]dtos.PatientRecord, 0, len(calls)),
		Homo:   []dtos.PatientRecord{},
		Hetero: []dtos.PatientRecord{},
	}

	for _, call := range calls {
		record := dtos.PatientRecord{
			PatientId: call.PatientId,
			Genotype:  call.Genotype,
			Gender:    call.Gender.String,
			Diagnosis: call.Diagnosis.String,
		}

		zyg := zygosity.Classify(call.Genotype)
		switch zyg {
		case zygosity.Homozygous:
			res.Homo = append(res.Homo, record)
		case zygosity.Heterozygous:
			res.Hetero = append(res.Hetero, record)
		}
		if includeInAll(zyg) {
			res.All = append(res.All, record)
		}
	}

	res.HomoCount = len(res.Homo)
	res.HeteroCount = len(res.Hetero)
	return res
}

// CarriersOnly keeps homozygous and heterozygous calls.
func CarriersOnly(zyg constants.Zygosity) bool {
	return zygosity.IsCarrier(zyg)
}

// EveryCall keeps all calls regardless of zygosity.
func EveryCall(constants.Zygosity) bool {
	return true
}
