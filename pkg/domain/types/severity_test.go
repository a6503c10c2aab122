package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/teleskin-lab/teleskin/pkg/domain/types"
)

func TestSeverityScorePatientStatus(t *testing.T) {
	cases := []struct {
		score  types.SeverityScore
		status types.PatientStatus
	}{
		{10, types.PatientStatusCritical},
		{8, types.PatientStatusCritical},
		{7, types.PatientStatusStable},
		{5, types.PatientStatusStable},
		{4, types.PatientStatusImproving},
		{2, types.PatientStatusImproving},
		{0, types.PatientStatusImproving},
	}

	for _, tc := range cases {
		gt.Value(t, tc.score.PatientStatus()).Equal(tc.status)
	}
}

func TestSeverityScoreValidate(t *testing.T) {
	gt.NoError(t, types.SeverityScore(0).Validate())
	gt.NoError(t, types.SeverityScore(10).Validate())
	gt.Error(t, types.SeverityScore(-1).Validate())
	gt.Error(t, types.SeverityScore(11).Validate())
}

func TestSeverityLabelScore(t *testing.T) {
	gt.Value(t, types.SeverityCritical.Score().PatientStatus()).Equal(types.PatientStatusCritical)
	gt.Value(t, types.SeverityHigh.Score().PatientStatus()).Equal(types.PatientStatusCritical)
	gt.Value(t, types.SeverityModerate.Score().PatientStatus()).Equal(types.PatientStatusStable)
	gt.Value(t, types.SeverityLow.Score().PatientStatus()).Equal(types.PatientStatusImproving)
}

func TestSeverityLabelIsValid(t *testing.T) {
	for _, l := range types.AllSeverityLabels() {
		gt.Bool(t, l.IsValid()).True()
	}
	gt.Bool(t, types.SeverityLabel("Severe").IsValid()).False()
	gt.Bool(t, types.SeverityLabel("").IsValid()).False()
}
