package achievements

// Level is the learner's rank on the points ladder.
type Level struct {
	Number          int     `json:"number"`
	Title           string  `json:"title"`
	Points          int     `json:"points"`
	CurrentFloor    int     `json:"currentFloor"`
	NextLevelPoints int     `json:"nextLevelPoints,omitempty"` // 0 at the top level
	Progress        float64 `json:"progress"`                  // 0-100 towards the next level
}

var levelLadder = []struct {
	points int
	title  string
}{
	{0, "Apprentice"},
	{50, "Commis"},
	{150, "Demi-Chef"},
	{300, "Chef de Partie"},
	{500, "Sous-Chef"},
	{800, "Pastry Chef"},
	{1200, "Master Pâtissier"},
}

// LevelFor places a points total on the ladder.
func LevelFor(points int) Level {
	idx := 0
	for i, rung := range levelLadder {
		if points >= rung.points {
			idx = i
		}
	}

	lvl := Level{
		Number:       idx + 1,
		Title:        levelLadder[idx].title,
		Points:       points,
		CurrentFloor: levelLadder[idx].points,
		Progress:     100,
	}
	if idx+1 < len(levelLadder) {
		next := levelLadder[idx+1].points
		lvl.NextLevelPoints = next
		lvl.Progress = 100 * float64(points-lvl.CurrentFloor) / float64(next-lvl.CurrentFloor)
	}
	return lvl
}
