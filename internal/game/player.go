package game

type playerID uint64

// Player is a logged-in member of a room. Its fields are owned by the room
// goroutine; callers outside the room only hold the pointer as a handle.
type Player struct {
	id      playerID
	nick    string
	points  int
	drawing bool
	conn    Conn
}

func (p *Player) Nick() string { return p.nick }
