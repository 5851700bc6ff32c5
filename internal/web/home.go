package web

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Home renders the lobby: every configured room and the top of the
// leaderboard.
func Home(lobby Lobby) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		name := templ.EscapeString(lobby.ServerName)
		if _, err := io.WriteString(w, `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>`+name+`</title>
  </head>
  <body>
    <main class="shell">
      <header class="hero">
        <span class="tag">`+name+`</span>
        <h1>Sketch it. Guess it.</h1>
        <p>Pick a room, draw when it is your turn, and guess the word in chat.</p>
      </header>
`); err != nil {
			return err
		}
		if err := writeRooms(w, lobby.Rooms); err != nil {
			return err
		}
		if err := writeScores(w, lobby.Scores); err != nil {
			return err
		}
		_, err := io.WriteString(w, `    </main>
  </body>
</html>
`)
		return err
	})
}

func writeRooms(w io.Writer, rooms []RoomSummary) error {
	if _, err := io.WriteString(w, `      <section class="panel">
        <h2>Rooms</h2>
`); err != nil {
		return err
	}
	if len(rooms) == 0 {
		if _, err := io.WriteString(w, `        <p class="empty">No rooms configured.</p>
`); err != nil {
			return err
		}
	} else {
		if _, err := io.WriteString(w, `        <table class="rooms">
          <thead><tr><th>Room</th><th>Players</th><th>Round</th><th>Status</th><th>Socket</th></tr></thead>
          <tbody>
`); err != nil {
			return err
		}
		for _, room := range rooms {
			row := `            <tr data-room="` + templ.EscapeString(room.ID) + `"><td>` + templ.EscapeString(room.Name) +
				`</td><td>` + seats(room) + `</td><td>` + itoa(room.Timeout) + `s</td><td>` + status(room) +
				`</td><td><code>` + templ.EscapeString(room.Path) + `</code></td></tr>
`
			if _, err := io.WriteString(w, row); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `          </tbody>
        </table>
`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `      </section>
`)
	return err
}

func writeScores(w io.Writer, scores []ScoreRow) error {
	if _, err := io.WriteString(w, `      <section class="panel">
        <h2>High scores</h2>
`); err != nil {
		return err
	}
	if len(scores) == 0 {
		if _, err := io.WriteString(w, `        <p class="empty">No scores yet.</p>
`); err != nil {
			return err
		}
	} else {
		if _, err := io.WriteString(w, `        <ol class="scores">
`); err != nil {
			return err
		}
		for _, row := range scores {
			if _, err := io.WriteString(w, `          <li><span class="nick">`+templ.EscapeString(row.Nick)+
				`</span> <span class="points">`+itoa(row.Score)+`</span></li>
`); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `        </ol>
`); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, `      </section>
`)
	return err
}
