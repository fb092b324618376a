package models

// QuizQuestion is one entry in the quiz payload served to the client.
type QuizQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Points        int      `json:"points"`
	Type          string   `json:"type"`
}

// Quiz is the full question set for one case, including the final
// whodunit question.
type Quiz struct {
	CaseID    string         `json:"caseId"`
	CaseTitle string         `json:"caseTitle"`
	Questions []QuizQuestion `json:"questions"`
}

// QuizResult is the computed outcome of one quiz submission. It is derived
// on every submission and never stored as its own record; only Score is
// written back into Progress.
type QuizResult struct {
	Score           int             `json:"score"`
	MaxScore        int             `json:"maxScore"`
	PercentageScore int             `json:"percentageScore"`
	Results         map[string]bool `json:"results"`
	Feedback        Feedback        `json:"feedback"`
	CaseTitle       string          `json:"caseTitle"`
}

// Feedback is the qualitative summary shown alongside a quiz score.
// Strengths and Improvements are always non-empty.
type Feedback struct {
	Message      string   `json:"message"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// LeaderboardEntry is one row of the ranked leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	TotalScore  int    `json:"totalScore"`
	CasesSolved int    `json:"casesSolved"`
}
