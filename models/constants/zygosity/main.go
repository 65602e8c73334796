package zygosity

import (
	"varbrowser/api/models/constants"
)

// Canonical VCF-style genotype encodings
const (
	HomozygousAlternateGenotype = "1/1"
	HeterozygousGenotype        = "0/1"
)

const (
	Other constants.Zygosity = iota
	Homozygous
	Heterozygous
)

// Classify maps a raw genotype call onto a zygosity.
// Only the exact canonical encodings are recognized; phased calls,
// reference calls and missing calls are all Other.
func Classify(genotype string) constants.Zygosity {
	switch genotype {
	case HomozygousAlternateGenotype:
		return Homozygous
	case HeterozygousGenotype:
		return Heterozygous
	default:
		return Other
	}
}

func IsCarrier(zyg constants.Zygosity) bool {
	return zyg == Homozygous || zyg == Heterozygous
}
