package processor

import (
	"fmt"
	"math/rand"
	"time"

	"denuncias-go/internal/types"
)

// caseIDSpace bounds the random part of a case id.
const caseIDSpace = 10000

// Enricher stamps a case id and the initial status on an extracted complaint.
type Enricher struct {
	Now  func() time.Time
	IntN func(n int) int
}

// NewEnricher uses the wall clock and the global random source.
func NewEnricher() Enricher {
	return Enricher{Now: time.Now, IntN: rand.Intn}
}

// Enrich returns a copy of c with ID CASE-<year>-<n> and status Nuevo.
//
// Every call draws a fresh id, so enriching the same complaint twice yields
// two cases. Ids are not guaranteed unique.
func (e Enricher) Enrich(c types.Complaint) types.Complaint {
	c.ID = fmt.Sprintf("CASE-%d-%d", e.Now().Year(), e.IntN(caseIDSpace))
	c.Status = types.StatusNew
	return c
}
