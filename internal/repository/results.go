// Package repository holds in-memory collections of extraction results for
// the lifetime of a run. Durable storage is out of scope; exports are the
// persistence story.
package repository

import (
	"sync"

	"github.com/docuvault/prescription-extractor/internal/schema"
)

// Entry pairs a source filename with its structured record.
type Entry struct {
	Filename string                        `json:"filename"`
	Data     *schema.ExtractedPrescription `json:"data"`
}

// Results is a concurrency-safe, append-only collection of extraction
// results. Batch workers add entries concurrently.
type Results struct {
	mu      sync.Mutex
	entries []Entry
}

func NewResults() *Results {
	return &Results{}
}

func (r *Results) Add(filename string, doc *schema.ExtractedPrescription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Filename: filename, Data: doc})
}

// List returns a copy of the entries in insertion order.
func (r *Results) List() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Results) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Stats summarizes a run for the end-of-batch report.
type Stats struct {
	Total            int
	Resolved         int
	WithSignature    int
	TotalMedications int
	LLMEnhanced      int
}

func (r *Results) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	var s Stats
	s.Total = len(r.entries)
	for _, e := range r.entries {
		if e.Data == nil {
			continue
		}
		if e.Data.Resolved() {
			s.Resolved++
		}
		if e.Data.DoctorSignature != nil && e.Data.DoctorSignature.IsPresent {
			s.WithSignature++
		}
		s.TotalMedications += len(e.Data.Medications)
		if e.Data.LLMEnhanced {
			s.LLMEnhanced++
		}
	}
	return s
}
