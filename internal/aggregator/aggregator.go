package aggregator

import (
	"strings"

	"denuncias-go/internal/dataset"
	"denuncias-go/internal/report"
)

// unknown buckets rows with an empty value.
const unknown = "sin dato"

type Summary struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"by_category"`
	ByUrgency  map[string]int `json:"by_urgency"`
	ByDistrict map[string]int `json:"by_district"`
	ByStatus   map[string]int `json:"by_status"`
}

// Summarize counts sheet rows. Urgency is bucketed into alta, media and baja.
func Summarize(rows []dataset.Row) Summary {
	s := Summary{
		ByCategory: map[string]int{},
		ByUrgency:  map[string]int{},
		ByDistrict: map[string]int{},
		ByStatus:   map[string]int{},
	}
	for _, r := range rows {
		s.Total++
		s.ByCategory[key(r.Categoria)]++
		s.ByUrgency[report.Level(r.Urgencia)]++
		s.ByDistrict[key(r.Distrito)]++
		s.ByStatus[key(r.Estado)]++
	}
	return s
}

func key(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return unknown
	}
	return v
}
