package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
)

// PatientRecord represents one patient in the roster. The record is owned by
// the record store and mutated only through its create/append operations.
type PatientRecord struct {
	ID         types.PatientID     `json:"id"`
	Name       string              `json:"name"`
	Age        int                 `json:"age"`
	Condition  string              `json:"condition"`
	Status     types.PatientStatus `json:"status"`
	LastUpdate time.Time           `json:"last_update"`
	ImageRef   string              `json:"image_ref,omitempty"`
	History    []HistoryEntry      `json:"history"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Validate checks if the patient record is valid
func (r *PatientRecord) Validate() error {
	if err := r.ID.Validate(); err != nil {
		return goerr.Wrap(err, "invalid patient ID")
	}
	if r.Name == "" {
		return goerr.New("patient name is required", goerr.V("id", r.ID))
	}
	if r.Age < 0 || r.Age > 150 {
		return goerr.New("patient age is out of range", goerr.V("id", r.ID), goerr.V("age", r.Age))
	}
	if !r.Status.Normalize().IsValid() {
		return goerr.New("invalid patient status", goerr.V("id", r.ID), goerr.V("status", r.Status))
	}
	for i := range r.History {
		if err := r.History[i].Validate(); err != nil {
			return goerr.Wrap(err, "invalid history entry", goerr.V("id", r.ID), goerr.V("index", i))
		}
	}
	return nil
}

// Clone returns a deep copy of the record
func (r *PatientRecord) Clone() *PatientRecord {
	copied := *r
	if r.History != nil {
		copied.History = make([]HistoryEntry, len(r.History))
		for i := range r.History {
			copied.History[i] = *r.History[i].Clone()
		}
	}
	return &copied
}

// HistoryEntry is one dated clinical event attached to a patient.
// Entries are immutable once appended and ordered newest first by insertion,
// never re-sorted by date: entries can be backfilled with past dates.
type HistoryEntry struct {
	ID            types.EntryID       `json:"id"`
	Date          time.Time           `json:"date"`
	ImageRef      string              `json:"image_ref,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	SeverityScore types.SeverityScore `json:"severity_score"`
	Analysis      *AnalysisResult     `json:"analysis,omitempty"`
}

// Validate checks if the history entry is valid
func (e *HistoryEntry) Validate() error {
	if err := e.SeverityScore.Validate(); err != nil {
		return goerr.Wrap(err, "invalid severity score")
	}
	if e.Analysis != nil {
		if err := e.Analysis.Validate(); err != nil {
			return goerr.Wrap(err, "invalid analysis result")
		}
	}
	return nil
}

// Clone returns a deep copy of the entry
func (e *HistoryEntry) Clone() *HistoryEntry {
	copied := *e
	if e.Analysis != nil {
		copied.Analysis = e.Analysis.Clone()
	}
	return &copied
}

// AnalysisResult is the structured output of lesion classification. It is
// produced only by the AI gateway and stored verbatim inside a history entry.
// Probabilities need not sum to 1; no normalization is applied.
type AnalysisResult struct {
	Diagnosis       string              `json:"diagnosis"`
	Confidence      float64             `json:"confidence"`
	Probabilities   map[string]float64  `json:"probabilities"`
	Severity        types.SeverityLabel `json:"severity"`
	Features        []string            `json:"features"`
	Recommendations []string            `json:"recommendations"`
}

// Validate checks if the analysis result is valid
func (a *AnalysisResult) Validate() error {
	if a.Diagnosis == "" {
		return goerr.New("diagnosis is required")
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		return goerr.New("confidence must be between 0 and 1", goerr.V("confidence", a.Confidence))
	}
	if !a.Severity.IsValid() {
		return goerr.New("invalid severity label", goerr.V("severity", a.Severity))
	}
	return nil
}

// Clone returns a deep copy of the analysis result
func (a *AnalysisResult) Clone() *AnalysisResult {
	copied := *a
	if a.Probabilities != nil {
		copied.Probabilities = make(map[string]float64, len(a.Probabilities))
		for k, v := range a.Probabilities {
			copied.Probabilities[k] = v
		}
	}
	if a.Features != nil {
		copied.Features = append([]string(nil), a.Features...)
	}
	if a.Recommendations != nil {
		copied.Recommendations = append([]string(nil), a.Recommendations...)
	}
	return &copied
}
