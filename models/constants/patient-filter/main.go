package patientFilter

import (
	"varbrowser/api/models/constants"
)

const (
	All    constants.PatientFilter = "all"
	Homo   constants.PatientFilter = "homo"
	Hetero constants.PatientFilter = "hetero"
)

// CastToPatientFilter falls back to All for anything
// other than the three known bucket names
func CastToPatientFilter(text string) constants.PatientFilter {
	switch constants.PatientFilter(text) {
	case Homo:
		return Homo
	case Hetero:
		return Hetero
	default:
		return All
	}
}
