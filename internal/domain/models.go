package domain

// Game represents one launchable catalog entry
type Game struct {
	Name string `json:"name"`
	Exe  string `json:"exe"`
}

// SearchColumns returns the searchable text columns for a game, in
// ranking order: display name first, executable path second
func (g Game) SearchColumns() []string {
	return []string{g.Name, g.Exe}
}
