package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/guregu/null.v3"

	"varbrowser/api/models/indexes"
)

func exampleCalls() []indexes.GenotypeCall {
	return []indexes.GenotypeCall{
		{PatientId: "P1", Genotype: "1/1", Gender: null.StringFrom("F")},
		{PatientId: "P2", Genotype: "0/1", Diagnosis: null.StringFrom("ataxia")},
		{PatientId: "P3", Genotype: "0/0"},
	}
}

func ids(records Result, bucket string) []string {
	var out []string
	switch bucket {
	case "all":
		for _, r := range records.All {
			out = append(out, r.PatientId)
		}
	case "homo":
		for _, r := range records.Homo {
			out = append(out, r.PatientId)
		}
	case "hetero":
		for _, r := range records.Hetero {
			out = append(out, r.PatientId)
		}
	}
	return out
}

func TestAggregateEveryCall(t *testing.T) {
	res := Aggregate(exampleCalls(), EveryCall)

	assert.Equal(t, []string{"P1", "P2", "P3"}, ids(res, "all"))
	assert.Equal(t, []string{"P1"}, ids(res, "homo"))
	assert.Equal(t, []string{"P2"}, ids(res, "hetero"))
	assert.Equal(t, 1, res.HomoCount)
	assert.Equal(t, 1, res.HeteroCount)
}

// Carrier-only "all" drops reference and unrecognized calls. This differs
// from EveryCall on purpose; both behaviors are relied on by the datasets.
func TestAggregateCarriersOnlyDropsOtherCalls(t *testing.T) {
	res := Aggregate(exampleCalls(), CarriersOnly)

	assert.Equal(t, []string{"P1", "P2"}, ids(res, "all"))
	assert.Equal(t, []string{"P1"}, ids(res, "homo"))
	assert.Equal(t, []string{"P2"}, ids(res, "hetero"))
}

func TestAggregateBucketSizes(t *testing.T) {
	calls := []indexes.GenotypeCall{
		{PatientId: "A", Genotype: "1/1"},
		{PatientId: "B", Genotype: "1|1"},
		{PatientId: "C", Genotype: "./."},
		{PatientId: "D", Genotype: "0/1"},
		{PatientId: "E", Genotype: "1/0"},
		{PatientId: "F", Genotype: ""},
		{PatientId: "G", Genotype: "0/1"},
	}

	every := Aggregate(calls, EveryCall)
	other := len(calls) - every.HomoCount - every.HeteroCount
	assert.Equal(t, len(every.All), every.HomoCount+every.HeteroCount+other)
	assert.Len(t, every.All, 7)

	carriers := Aggregate(calls, CarriersOnly)
	assert.Equal(t, len(carriers.All), carriers.HomoCount+carriers.HeteroCount)
	assert.Equal(t, []string{"A", "D", "G"}, ids(carriers, "all"))
}

func TestAggregateRecordsDefaultToEmptyStrings(t *testing.T) {
	res := Aggregate(exampleCalls(), EveryCall)

	assert.Equal(t, "F", res.All[0].Gender)
	assert.Equal(t, "", res.All[0].Diagnosis)
	assert.Equal(t, "", res.All[1].Gender)
	assert.Equal(t, "ataxia", res.All[1].Diagnosis)
}

func TestAggregateNoCalls(t *testing.T) {
	res := Aggregate(nil, EveryCall)

	assert.NotNil(t, res.All)
	assert.Empty(t, res.All)
	assert.Empty(t, res.Homo)
	assert.Empty(t, res.Hetero)
}
