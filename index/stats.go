package index

import (
	"time"

	"github.com/poiesic/filingqa/core"
)

// Status values reported by Stats.
const (
	StatusReady          = "ready"
	StatusNotInitialized = "not_initialized"
)

// Stats summarizes an index for display.
type Stats struct {
	Status      string       `json:"status"`
	TotalChunks int          `json:"total_chunks,omitempty"`
	Companies   int          `json:"companies,omitempty"`
	FilingTypes []core.Count `json:"filing_types,omitempty"`
	Sections    []core.Count `json:"sections,omitempty"`
	Concepts    []core.Count `json:"concepts,omitempty"`
	Dimension   int          `json:"dimension,omitempty"`
	Model       string       `json:"model,omitempty"`
	BuiltAt     *time.Time   `json:"built_at,omitempty"`
}

// Stats reports the corpus shape: top five filing types, top three
// sections and top five concepts by chunk count.
func (idx *Index) Stats() Stats {
	if idx.Len() == 0 {
		return Stats{Status: StatusNotInitialized}
	}

	summary := core.Summarize(idx.chunks)
	built := idx.manifest.CreatedAt
	return Stats{
		Status:      StatusReady,
		TotalChunks: summary.TotalChunks,
		Companies:   summary.Companies,
		FilingTypes: core.TopN(summary.FilingTypes, 5),
		Sections:    core.TopN(summary.Sections, 3),
		Concepts:    core.TopN(summary.Concepts, 5),
		Dimension:   idx.flat.Dim(),
		Model:       idx.manifest.Model,
		BuiltAt:     &built,
	}
}
