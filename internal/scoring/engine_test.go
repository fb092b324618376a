package scoring_test

import (
	"context"
	"io"
	"testing"

	"github.com/detectivesigma/sigma/internal/errors"
	"github.com/detectivesigma/sigma/internal/models"
	"github.com/detectivesigma/sigma/internal/scoring"
	"github.com/detectivesigma/sigma/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func geometryCase() *models.Case {
	return &models.Case{
		ID:    "geometry-case",
		Title: "The Geometry Case",
		Puzzles: []models.Puzzle{
			{ID: "p1", CaseID: "geometry-case", Question: "How many clues were found?", CorrectAnswer: "5", Points: 10},
			{ID: "p2", CaseID: "geometry-case", Question: "What shape was the garden?", CorrectAnswer: "Triangle", Points: 20},
		},
		Suspects: []models.Suspect{
			{ID: "s1", CaseID: "geometry-case", Name: "Alex", IsCulprit: true},
			{ID: "s2", CaseID: "geometry-case", Name: "Sam"},
		},
	}
}

func TestScoreAnswers(t *testing.T) {
	tests := []struct {
		name            string
		c               *models.Case
		answers         map[string]string
		wantScore       int
		wantMaxScore    int
		wantPercentage  int
		wantResults     map[string]bool
	}{
		{
			name: "all correct with mixed case and whitespace",
			c:    geometryCase(),
			answers: map[string]string{
				"p1":       "5",
				"p2":       " triangle ",
				"whodunit": "Alex",
			},
			wantScore:      50,
			wantMaxScore:   50,
			wantPercentage: 100,
			wantResults:    map[string]bool{"p1": true, "p2": true, "whodunit": true},
		},
		{
			name: "partially correct",
			c:    geometryCase(),
			answers: map[string]string{
				"p1":       "6",
				"p2":       "Triangle",
				"whodunit": "Sam",
			},
			wantScore:      20,
			wantMaxScore:   50,
			wantPercentage: 40,
			wantResults:    map[string]bool{"p1": false, "p2": true, "whodunit": false},
		},
		{
			name:           "missing answers count as incorrect",
			c:              geometryCase(),
			answers:        map[string]string{},
			wantScore:      0,
			wantMaxScore:   50,
			wantPercentage: 0,
			wantResults:    map[string]bool{"p1": false, "p2": false, "whodunit": false},
		},
		{
			name: "no puzzles and no culprit",
			c: &models.Case{
				ID:    "empty-case",
				Title: "The Empty Case",
				Suspects: []models.Suspect{
					{ID: "s1", CaseID: "empty-case", Name: "Nobody"},
				},
			},
			answers: map[string]string{
				"whodunit": "Nobody",
			},
			wantScore:      0,
			wantMaxScore:   20,
			wantPercentage: 0,
			wantResults:    map[string]bool{"whodunit": false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, maxScore, percentage, results := scoring.ScoreAnswers(tt.c, tt.answers)
			require.Equal(t, tt.wantScore, score)
			require.Equal(t, tt.wantMaxScore, maxScore)
			require.Equal(t, tt.wantPercentage, percentage)
			require.Equal(t, tt.wantResults, results)
			require.GreaterOrEqual(t, percentage, 0)
			require.LessOrEqual(t, percentage, 100)
		})
	}
}

type fakeCases struct {
	c *models.Case
}

var errNotFound = errors.NewSentinel("case not found")

func (f fakeCases) Get(_ context.Context, caseID string) (*models.Case, error) {
	if f.c == nil || f.c.ID != caseID {
		return nil, errNotFound
	}
	return f.c, nil
}

type fakeProgress struct {
	calls  int
	userID []byte
	caseID string
	score  int
}

func (f *fakeProgress) CompleteQuiz(_ context.Context, userID []byte, caseID string, score int) (*models.Progress, error) {
	f.calls++
	f.userID = userID
	f.caseID = caseID
	f.score = score
	return &models.Progress{UserID: userID, CaseID: caseID, Status: models.ProgressStatusSolved, Score: score}, nil
}

func TestServiceSubmit(t *testing.T) {
	logger := testhelpers.NewLogger(io.Discard)
	progress := &fakeProgress{}
	service := scoring.NewService(fakeCases{c: geometryCase()}, progress, scoring.NewSeededOptionGenerator(1), logger)

	result, err := service.Submit(context.Background(), []byte{1}, "geometry-case", map[string]string{
		"p1":       "5",
		"p2":       "triangle",
		"whodunit": "Alex",
	})
	require.NoError(t, err)
	require.Equal(t, 50, result.Score)
	require.Equal(t, 50, result.MaxScore)
	require.Equal(t, 100, result.PercentageScore)
	require.Equal(t, "The Geometry Case", result.CaseTitle)
	require.NotEmpty(t, result.Feedback.Message)
	require.NotEmpty(t, result.Feedback.Strengths)
	require.NotEmpty(t, result.Feedback.Improvements)

	// The authoritative score is recorded exactly once per submission.
	require.Equal(t, 1, progress.calls)
	require.Equal(t, []byte{1}, progress.userID)
	require.Equal(t, "geometry-case", progress.caseID)
	require.Equal(t, 50, progress.score)
}

func TestServiceSubmitUnknownCase(t *testing.T) {
	logger := testhelpers.NewLogger(io.Discard)
	progress := &fakeProgress{}
	service := scoring.NewService(fakeCases{c: geometryCase()}, progress, scoring.NewSeededOptionGenerator(1), logger)

	_, err := service.Submit(context.Background(), []byte{1}, "nonexistent", nil)
	require.ErrorIs(t, err, errNotFound)
	// No partial state change on failure.
	require.Equal(t, 0, progress.calls)
}

func TestServiceQuiz(t *testing.T) {
	logger := testhelpers.NewLogger(io.Discard)
	c := geometryCase()
	c.Puzzles[0].Options = []string{"3", "4", "5", "6"}
	service := scoring.NewService(fakeCases{c: c}, &fakeProgress{}, scoring.NewSeededOptionGenerator(1), logger)

	quiz, err := service.Quiz(context.Background(), "geometry-case")
	require.NoError(t, err)
	require.Equal(t, "geometry-case", quiz.CaseID)
	require.Equal(t, "The Geometry Case", quiz.CaseTitle)
	require.Len(t, quiz.Questions, 3)

	// Authored options are served untouched.
	require.Equal(t, []string{"3", "4", "5", "6"}, quiz.Questions[0].Options)

	// Unauthored options are generated and include the correct answer.
	require.Len(t, quiz.Questions[1].Options, 4)
	require.Contains(t, quiz.Questions[1].Options, "Triangle")

	whodunit := quiz.Questions[2]
	require.Equal(t, scoring.WhodunitQuestionID, whodunit.ID)
	require.Equal(t, "Alex", whodunit.CorrectAnswer)
	require.Equal(t, 20, whodunit.Points)
	require.ElementsMatch(t, []string{"Alex", "Sam"}, whodunit.Options)
}
