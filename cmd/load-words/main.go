package main

import (
	"flag"
	"os"
	"time"

	"sketchparty/internal/config"
	"sketchparty/internal/db"
	"sketchparty/internal/logger"
	"sketchparty/internal/words"

	"github.com/rs/zerolog/log"
)

func main() {
	filePath := flag.String("file", "words.json", "wordlist to load (.json, .csv or one word per line)")
	migrate := flag.Bool("migrate", false, "create missing tables first")
	flag.Parse()

	logger.Setup(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn().Err(err).Msg("failed to load .env")
	}

	conn, err := db.Open(os.Getenv("DATABASE_URL"), db.PoolConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if *migrate {
		if err := db.Migrate(conn); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
	}

	vocabulary, err := words.Load(*filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read wordlist")
	}
	inserted, err := db.SaveWords(conn, vocabulary)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to save words")
	}
	log.Info().Str("file", *filePath).Int("read", len(vocabulary)).Int("inserted", inserted).Msg("words loaded")
}
