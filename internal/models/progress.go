package models

import "time"

type ProgressStatus string

const (
	ProgressStatusNotStarted ProgressStatus = "NOT_STARTED"
	ProgressStatusInProgress ProgressStatus = "IN_PROGRESS"
	ProgressStatusSolved     ProgressStatus = "SOLVED"
)

// Progress records what one user has done in one case. There is at most one
// Progress per (user, case) pair.
//
// Score always holds the most recent quiz submission's score. It is
// overwritten on every submission, never accumulated.
type Progress struct {
	UserID            []byte
	CaseID            string
	Status            ProgressStatus
	Score             int
	CluesCollected    []string
	PuzzlesSolved     []string
	CurrentSceneIndex int
	TimeSpentSeconds  int
	StartedAt         time.Time
	CompletedAt       *time.Time
}

// ProgressUpdate is a partial update from the client's autosave. Nil fields
// are left untouched. Clue and puzzle ids merge as a set union so that
// autosaves arriving late or out of order cannot lose earlier finds.
type ProgressUpdate struct {
	CluesCollected    []string
	PuzzlesSolved     []string
	CurrentSceneIndex *int
	TimeSpentSeconds  *int
}
