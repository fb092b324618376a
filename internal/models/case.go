package models

// Case is one self-contained mystery: an ordered set of scenes to explore,
// puzzles to solve, and suspects to accuse.
type Case struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Difficulty  string `db:"difficulty"`
	Scenes      []Scene
	Puzzles     []Puzzle
	Suspects    []Suspect
}

// Culprit returns the suspect flagged as the culprit. Authored content should
// flag exactly one suspect, but a misconfigured case may flag none, so callers
// must handle ok == false.
func (c *Case) Culprit() (Suspect, bool) {
	for _, s := range c.Suspects {
		if s.IsCulprit {
			return s, true
		}
	}
	return Suspect{}, false
}

// SuspectNames returns the names of all suspects in authored order.
func (c *Case) SuspectNames() []string {
	names := make([]string, len(c.Suspects))
	for i, s := range c.Suspects {
		names[i] = s.Name
	}
	return names
}

// Scene is a location within a case. Each scene owns the clues that can be
// collected there.
type Scene struct {
	ID          string `db:"id"`
	CaseID      string `db:"case_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	SceneIndex  int    `db:"scene_index"`
	Clues       []Clue
}

// Clue is a piece of evidence hidden in a scene.
type Clue struct {
	ID          string `db:"id"`
	SceneID     string `db:"scene_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
}

// Puzzle is a quiz question attached to a case. CorrectAnswer is the canonical
// answer string; Options may be empty, in which case multiple-choice options
// are generated from the answer text.
type Puzzle struct {
	ID            string `db:"id"`
	CaseID        string `db:"case_id"`
	Question      string `db:"question"`
	CorrectAnswer string `db:"correct_answer"`
	Points        int    `db:"points"`
	Options       []string
	Hint          string `db:"hint"`
}

// Suspect is a person of interest in a case.
type Suspect struct {
	ID        string `db:"id"`
	CaseID    string `db:"case_id"`
	Name      string `db:"name"`
	IsCulprit bool   `db:"is_culprit"`
}
