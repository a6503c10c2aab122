package types

import "github.com/m-mizutani/goerr/v2"

// SeverityScore is an integer 0-10 summarizing lesion severity.
// 0 denotes "not applicable" (check-in only entries).
type SeverityScore int

// Validate checks if the severity score is within range
func (s SeverityScore) Validate() error {
	if s < 0 || s > 10 {
		return goerr.New("severity score must be between 0 and 10", goerr.V("score", int(s)))
	}
	return nil
}

// PatientStatus maps the score to a patient status. The mapping is total:
// score > 7 is Critical, 4 < score <= 7 is Stable, score <= 4 is Improving.
func (s SeverityScore) PatientStatus() PatientStatus {
	switch {
	case s > 7:
		return PatientStatusCritical
	case s > 4:
		return PatientStatusStable
	default:
		return PatientStatusImproving
	}
}

// SeverityLabel represents the severity label reported by lesion classification
type SeverityLabel string

const (
	SeverityLow      SeverityLabel = "Low"
	SeverityModerate SeverityLabel = "Moderate"
	SeverityHigh     SeverityLabel = "High"
	SeverityCritical SeverityLabel = "Critical"
)

// AllSeverityLabels returns all valid severity labels
func AllSeverityLabels() []SeverityLabel {
	return []SeverityLabel{
		SeverityLow,
		SeverityModerate,
		SeverityHigh,
		SeverityCritical,
	}
}

// IsValid checks if the severity label is valid
func (l SeverityLabel) IsValid() bool {
	switch l {
	case SeverityLow, SeverityModerate, SeverityHigh, SeverityCritical:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity label
func (l SeverityLabel) String() string {
	return string(l)
}

// Score converts the label to a representative severity score
func (l SeverityLabel) Score() SeverityScore {
	switch l {
	case SeverityCritical:
		return 10
	case SeverityHigh:
		return 8
	case SeverityModerate:
		return 5
	default:
		return 2
	}
}
