package dataset

import (
	"strings"

	"varbrowser/api/models/constants"
)

const (
	ShortRead constants.Dataset = "shortread"
	LongRead  constants.Dataset = "longread"
)

var All = []constants.Dataset{ShortRead, LongRead}

func IsKnown(text string) bool {
	switch constants.Dataset(strings.ToLower(text)) {
	case ShortRead, LongRead:
		return true
	}
	return false
}

func CastToDataset(text string) constants.Dataset {
	return constants.Dataset(strings.ToLower(text))
}
