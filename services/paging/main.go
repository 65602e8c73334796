// Package paging narrows a patient bucket by a search term and slices it
// into fixed-size pages.
package paging

import (
	"strings"

	"github.com/ahmetb/go-linq"

	"varbrowser/api/models/dtos"
)

// PerPage is fixed; clients cannot change it.
const PerPage = 50

// Filter keeps records whose patient id, genotype, gender or diagnosis
// contains term, ignoring case. An empty term keeps everything.
func Filter(records []dtos.PatientRecord, term string) []dtos.PatientRecord {
	if term == "" {
		return records
	}
	term = strings.ToLower(term)

	matches := make([]dtos.PatientRecord, 0, len(records))
	linq.From(records).
		WhereT(func(r dtos.PatientRecord) bool {
			return strings.Contains(strings.ToLower(r.PatientId), term) ||
				strings.Contains(strings.ToLower(r.Genotype), term) ||
				strings.Contains(strings.ToLower(r.Gender), term) ||
				strings.Contains(strings.ToLower(r.Diagnosis), term)
		}).
		ToSlice(&matches)
	return matches
}

// TotalPages is ceil(total / perPage).
func TotalPages(total, perPage int) int {
	return (total + perPage - 1) / perPage
}

// Paginate splits every record into pages, preserving order.
func Paginate(records []dtos.PatientRecord, perPage int) dtos.PatientBucket {
	total := len(records)
	totalPages := TotalPages(total, perPage)

	pages := make([][]dtos.PatientRecord, 0, totalPages)
	for i := 0; i < totalPages; i++ {
		pages = append(pages, window(records, i*perPage, perPage))
	}

	return dtos.PatientBucket{
		Pages:      pages,
		Total:      total,
		TotalPages: totalPages,
	}
}

// PageOf returns only the requested 1-indexed page, wrapped in a one-page
// sequence. A page past the end yields an empty page.
func PageOf(records []dtos.PatientRecord, page int, perPage int) dtos.PatientBucket {
	total := len(records)
	if page < 1 {
		page = 1
	}

	totalPages := TotalPages(total, perPage)

	// compare page numbers before multiplying; huge pages would overflow the offset
	current := []dtos.PatientRecord{}
	if page <= totalPages {
		current = window(records, (page-1)*perPage, perPage)
	}

	return dtos.PatientBucket{
		Pages:      [][]dtos.PatientRecord{current},
		Total:      total,
		TotalPages: totalPages,
	}
}

func window(records []dtos.PatientRecord, start, size int) []dtos.PatientRecord {
	if start >= len(records) {
		return []dtos.PatientRecord{}
	}
	end := start + size
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
