package scoring

import "github.com/detectivesigma/sigma/internal/models"

// Feedback message bands. Higher percentage always selects an equal or
// stronger message; keep the thresholds in descending order.
const (
	outstandingThreshold = 90
	excellentThreshold   = 80
	goodThreshold        = 70
	passableThreshold    = 60
)

// GenerateFeedback derives the qualitative summary from a graded submission.
// Both bullet lists are always non-empty.
func GenerateFeedback(percentageScore int, results map[string]bool) models.Feedback {
	var message string
	switch {
	case percentageScore >= outstandingThreshold:
		message = "Outstanding detective work! You cracked the case like a true sleuth."
	case percentageScore >= excellentThreshold:
		message = "Excellent investigation! Only the smallest details slipped past you."
	case percentageScore >= goodThreshold:
		message = "Good work, detective. A few more clues and you would have a perfect case."
	case percentageScore >= passableThreshold:
		message = "A solid start. Review your case notes and you'll do even better."
	default:
		message = "Every detective has tough cases. Revisit the scenes and try again!"
	}

	correctCount := 0
	for _, correct := range results {
		if correct {
			correctCount++
		}
	}
	correctRatio := 0.0
	if len(results) > 0 {
		correctRatio = float64(correctCount) / float64(len(results))
	}

	var strengths []string
	if results[WhodunitQuestionID] {
		strengths = append(strengths, "You identified the culprit correctly.")
	}
	if correctRatio > 0.8 {
		strengths = append(strengths, "You answered nearly every question correctly.")
	}
	if len(strengths) == 0 {
		strengths = append(strengths, "You saw the investigation through to the end.")
	}

	var improvements []string
	if !results[WhodunitQuestionID] {
		improvements = append(improvements, "Re-read the suspect statements before naming the culprit.")
	}
	if correctRatio < 0.6 {
		improvements = append(improvements, "Collect more clues at each scene before taking the quiz.")
	}
	if len(improvements) == 0 {
		improvements = append(improvements, "Keep practising to make your deductions even sharper.")
	}

	return models.Feedback{
		Message:      message,
		Strengths:    strengths,
		Improvements: improvements,
	}
}
