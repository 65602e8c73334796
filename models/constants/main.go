package constants

/*
	Defines a set of base level
	constants and enums to be used
	throughout the variant browser and
	it's associated services.
*/
type Dataset string
type PatientFilter string

type Zygosity int
