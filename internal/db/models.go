package db

import (
	"time"

	"gorm.io/datatypes"
)

// Score is the all-time hiscore row for one nickname.
type Score struct {
	ID        uint      `gorm:"primaryKey"`
	Nick      string    `gorm:"size:64;not null;uniqueIndex"`
	Score     int       `gorm:"not null;default:0;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// Round is the log entry for one solved round.
type Round struct {
	ID            uint           `gorm:"primaryKey"`
	Room          string         `gorm:"size:64;not null;index"`
	Guesser       string         `gorm:"size:64;not null"`
	Drawer        string         `gorm:"size:64;not null"`
	Word          string         `gorm:"size:128;not null"`
	GuesserPoints int            `gorm:"not null"`
	DrawerPoints  int            `gorm:"not null"`
	Payload       datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt     time.Time      `gorm:"not null"`
}

// Word is an entry of the shared vocabulary.
type Word struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"size:128;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
