// Package scoring implements the quiz for a case: building the question set,
// grading submitted answers, and recording the result as solved progress.
package scoring

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/models"
)

// WhodunitQuestionID is the id of the synthesized final question that asks
// the player to name the culprit. It is not backed by a puzzle row.
const WhodunitQuestionID = "whodunit"

const whodunitQuestion = "Who committed the crime?"

// whodunitPoints is the bonus for naming the culprit correctly.
const whodunitPoints = 20

// CaseGetter loads case content from the content store.
type CaseGetter interface {
	Get(ctx context.Context, caseID string) (*models.Case, error)
}

// ProgressCompleter records the authoritative score of a quiz submission.
type ProgressCompleter interface {
	CompleteQuiz(ctx context.Context, userID []byte, caseID string, score int) (*models.Progress, error)
}

// Service grades quiz submissions and persists their scores.
type Service struct {
	cases    CaseGetter
	progress ProgressCompleter
	options  *OptionGenerator
	logger   *slog.Logger
}

func NewService(cases CaseGetter, progress ProgressCompleter, options *OptionGenerator, logger *slog.Logger) *Service {
	return &Service{
		cases:    cases,
		progress: progress,
		options:  options,
		logger:   logger.With("source", "scoring.Service"),
	}
}

// Quiz builds the question set for a case: one question per puzzle plus the
// final whodunit question. Puzzles without authored options get generated
// ones.
//
// Note that each question carries its correct answer. The teacher-preview
// screen renders the answer key from this payload, so the client is trusted
// not to show it to students before submission.
func (s *Service) Quiz(ctx context.Context, caseID string) (*models.Quiz, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		return nil, errors.Wrap(err, "load case for quiz")
	}

	suspectNames := c.SuspectNames()
	questions := make([]models.QuizQuestion, 0, len(c.Puzzles)+1)
	for _, puzzle := range c.Puzzles {
		options := puzzle.Options
		if len(options) == 0 {
			options = s.options.Generate(puzzle.CorrectAnswer, suspectNames)
		}
		questions = append(questions, models.QuizQuestion{
			ID:            puzzle.ID,
			Question:      puzzle.Question,
			Options:       options,
			CorrectAnswer: puzzle.CorrectAnswer,
			Points:        puzzle.Points,
			Type:          "multiple-choice",
		})
	}

	culpritName := ""
	if culprit, ok := c.Culprit(); ok {
		culpritName = culprit.Name
	}
	questions = append(questions, models.QuizQuestion{
		ID:            WhodunitQuestionID,
		Question:      whodunitQuestion,
		Options:       suspectNames,
		CorrectAnswer: culpritName,
		Points:        whodunitPoints,
		Type:          "whodunit",
	})

	return &models.Quiz{
		CaseID:    c.ID,
		CaseTitle: c.Title,
		Questions: questions,
	}, nil
}

// Submit grades the submitted answers against the case's answer key and
// upserts the user's progress to SOLVED with the computed score.
//
// Grading is pure computation; the only persistence is the single upsert at
// the end, so a crash in between leaves the prior progress intact. Duplicate
// submissions, e.g. network retries, are safe: the upsert is idempotent and
// the latest submission's score wins.
func (s *Service) Submit(
	ctx context.Context,
	userID []byte,
	caseID string,
	answers map[string]string,
) (*models.QuizResult, error) {
	c, err := s.cases.Get(ctx, caseID)
	if err != nil {
		return nil, errors.Wrap(err, "load case for submission")
	}

	score, maxScore, percentage, results := ScoreAnswers(c, answers)

	if _, err = s.progress.CompleteQuiz(ctx, userID, caseID, score); err != nil {
		return nil, errors.Wrap(err, "record quiz score", slog.String("case_id", caseID))
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "quiz submitted",
		slog.String("case_id", caseID),
		slog.Int("score", score),
		slog.Int("max_score", maxScore))

	return &models.QuizResult{
		Score:           score,
		MaxScore:        maxScore,
		PercentageScore: percentage,
		Results:         results,
		Feedback:        GenerateFeedback(percentage, results),
		CaseTitle:       c.Title,
	}, nil
}

// ScoreAnswers grades submitted answers against the case's answer key.
//
// The key contains every puzzle plus the whodunit question, whose correct
// answer is the culprit's name, or the empty string when the case has no
// culprit flagged. Comparison is exact equality after trimming surrounding
// whitespace and lowercasing; a question without a submitted answer counts
// as incorrect.
func ScoreAnswers(c *models.Case, answers map[string]string) (score, maxScore, percentage int, results map[string]bool) {
	type answerKey struct {
		correct string
		points  int
	}

	key := make(map[string]answerKey, len(c.Puzzles)+1)
	for _, puzzle := range c.Puzzles {
		key[puzzle.ID] = answerKey{correct: puzzle.CorrectAnswer, points: puzzle.Points}
	}

	culpritName := ""
	if culprit, ok := c.Culprit(); ok {
		culpritName = culprit.Name
	}
	key[WhodunitQuestionID] = answerKey{correct: culpritName, points: whodunitPoints}

	results = make(map[string]bool, len(key))
	for questionID, entry := range key {
		maxScore += entry.points
		correct := normalizeAnswer(answers[questionID]) == normalizeAnswer(entry.correct)
		// The empty string is never a correct submission, even when the
		// answer key itself is empty because no culprit is flagged.
		if normalizeAnswer(answers[questionID]) == "" {
			correct = false
		}
		results[questionID] = correct
		if correct {
			score += entry.points
		}
	}

	if maxScore > 0 {
		percentage = int(math.Round(float64(score) / float64(maxScore) * 100))
	}

	return score, maxScore, percentage, results
}

// normalizeAnswer implements the comparison policy: surrounding whitespace
// is ignored and matching is case-insensitive. Nothing fuzzier than that.
func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
