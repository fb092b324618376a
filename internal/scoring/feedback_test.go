package scoring_test

import (
	"testing"

	"github.com/detectivesigma/sigma/internal/scoring"
	"github.com/stretchr/testify/require"
)

func TestGenerateFeedbackBands(t *testing.T) {
	results := map[string]bool{"p1": true, "whodunit": true}

	// Each band must produce a distinct message, and a higher percentage
	// must never produce a weaker-sounding one.
	var previous string
	var messages []string
	for _, percentage := range []int{0, 59, 60, 69, 70, 79, 80, 89, 90, 100} {
		feedback := scoring.GenerateFeedback(percentage, results)
		require.NotEmpty(t, feedback.Message)
		require.NotEmpty(t, feedback.Strengths)
		require.NotEmpty(t, feedback.Improvements)
		if feedback.Message != previous {
			messages = append(messages, feedback.Message)
			previous = feedback.Message
		}
	}
	// Five bands: <60, 60-69, 70-79, 80-89, >=90.
	require.Len(t, messages, 5)
}

func TestGenerateFeedbackBullets(t *testing.T) {
	tests := []struct {
		name             string
		results          map[string]bool
		wantStrength     string
		wantImprovement  string
	}{
		{
			name:            "culprit found and high ratio",
			results:         map[string]bool{"p1": true, "p2": true, "p3": true, "p4": true, "whodunit": true},
			wantStrength:    "You identified the culprit correctly.",
			wantImprovement: "Keep practising to make your deductions even sharper.",
		},
		{
			name:            "culprit missed and low ratio",
			results:         map[string]bool{"p1": false, "p2": false, "p3": true, "whodunit": false},
			wantStrength:    "You saw the investigation through to the end.",
			wantImprovement: "Re-read the suspect statements before naming the culprit.",
		},
		{
			name:            "high ratio without culprit",
			results:         map[string]bool{"p1": true, "p2": true, "p3": true, "p4": true, "p5": true, "whodunit": false},
			wantStrength:    "You answered nearly every question correctly.",
			wantImprovement: "Re-read the suspect statements before naming the culprit.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feedback := scoring.GenerateFeedback(50, tt.results)
			require.Contains(t, feedback.Strengths, tt.wantStrength)
			require.Contains(t, feedback.Improvements, tt.wantImprovement)
			require.NotEmpty(t, feedback.Strengths)
			require.NotEmpty(t, feedback.Improvements)
		})
	}
}
