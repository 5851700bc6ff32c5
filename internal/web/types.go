package web

// RoomSummary is one row of the lobby's room table.
type RoomSummary struct {
	ID         string
	Name       string
	Path       string
	Players    int
	MinPlayers int
	MaxPlayers int
	Timeout    int
	Active     bool
}

type ScoreRow struct {
	Nick  string
	Score int
}

type Lobby struct {
	ServerName string
	Rooms      []RoomSummary
	Scores     []ScoreRow
}
