package web

import (
	"strconv"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func seats(room RoomSummary) string {
	return itoa(room.Players) + " / " + itoa(room.MaxPlayers)
}

func status(room RoomSummary) string {
	switch {
	case room.Active:
		return "drawing"
	case room.Players < room.MinPlayers:
		return "waiting for " + itoa(room.MinPlayers-room.Players) + " more"
	default:
		return "between rounds"
	}
}
