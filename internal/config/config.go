package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var ErrNoRooms = errors.New("no rooms configured")

type Room struct {
	ID         string  `mapstructure:"id" json:"id"`
	Name       string  `mapstructure:"name" json:"name"`
	MinPlayers int     `mapstructure:"minPlayers" json:"minPlayers"`
	MaxPlayers int     `mapstructure:"maxPlayers" json:"maxPlayers"`
	Timeout    int     `mapstructure:"timeout" json:"timeout"`
	Delay      float64 `mapstructure:"delay" json:"delay"`
	Wordlist   string  `mapstructure:"wordlist" json:"wordlist"`
}

// AdvanceDelay is the pause between rounds.
func (r Room) AdvanceDelay() time.Duration {
	return time.Duration(r.Delay * float64(time.Second))
}

type Config struct {
	Name          string `mapstructure:"name"`
	Port          int    `mapstructure:"port"`
	PingTimeoutMS int    `mapstructure:"pingTimeout"`
	CORS          bool   `mapstructure:"cors"`
	LogLevel      string `mapstructure:"logLevel"`
	LogFormat     string `mapstructure:"logFormat"`

	DatabaseURL              string `mapstructure:"databaseUrl"`
	AutoMigrate              bool   `mapstructure:"autoMigrate"`
	DBMaxOpenConns           int    `mapstructure:"dbMaxOpenConns"`
	DBMaxIdleConns           int    `mapstructure:"dbMaxIdleConns"`
	DBConnMaxLifetimeSeconds int    `mapstructure:"dbConnMaxLifetimeSeconds"`
	DBConnMaxIdleTimeSeconds int    `mapstructure:"dbConnMaxIdleSeconds"`

	RedisAddr     string `mapstructure:"redisAddr"`
	RedisPassword string `mapstructure:"redisPassword"`
	RedisKey      string `mapstructure:"redisKey"`

	ChatRate        float64 `mapstructure:"chatRate"`
	ChatBurst       int     `mapstructure:"chatBurst"`
	SendQueue       int     `mapstructure:"sendQueue"`
	MaxMessageBytes int64   `mapstructure:"maxMessageBytes"`

	Rooms []Room `mapstructure:"games"`
}

func DefaultRoom() Room {
	return Room{
		ID:         "main",
		Name:       "Main",
		MinPlayers: 2,
		MaxPlayers: 10,
		Timeout:    60,
		Delay:      3,
		Wordlist:   "./words.json",
	}
}

func Default() Config {
	return Config{
		Name:                     "Sketch Party",
		Port:                     1700,
		PingTimeoutMS:            30000,
		CORS:                     true,
		LogLevel:                 "info",
		LogFormat:                "json",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		RedisKey:                 "sketchparty:hiscores",
		ChatRate:                 4,
		ChatBurst:                8,
		SendQueue:                256,
		MaxMessageBytes:          64 << 10,
		Rooms:                    []Room{DefaultRoom()},
	}
}

// PingTimeout is the idle limit after which a silent connection is dropped.
func (c Config) PingTimeout() time.Duration {
	return time.Duration(c.PingTimeoutMS) * time.Millisecond
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Load reads defaults, then the config file (path, or sketchparty.{yaml,json}
// in . and ./config), then environment variables.
func Load(path string) (Config, error) {
	def := Default()
	v := viper.New()

	v.SetDefault("name", def.Name)
	v.SetDefault("port", def.Port)
	v.SetDefault("pingTimeout", def.PingTimeoutMS)
	v.SetDefault("cors", def.CORS)
	v.SetDefault("logLevel", def.LogLevel)
	v.SetDefault("logFormat", def.LogFormat)
	v.SetDefault("databaseUrl", "")
	v.SetDefault("autoMigrate", false)
	v.SetDefault("dbMaxOpenConns", def.DBMaxOpenConns)
	v.SetDefault("dbMaxIdleConns", def.DBMaxIdleConns)
	v.SetDefault("dbConnMaxLifetimeSeconds", def.DBConnMaxLifetimeSeconds)
	v.SetDefault("dbConnMaxIdleSeconds", def.DBConnMaxIdleTimeSeconds)
	v.SetDefault("redisAddr", "")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisKey", def.RedisKey)
	v.SetDefault("chatRate", def.ChatRate)
	v.SetDefault("chatBurst", def.ChatBurst)
	v.SetDefault("sendQueue", def.SendQueue)
	v.SetDefault("maxMessageBytes", def.MaxMessageBytes)

	_ = v.BindEnv("name", "SERVER_NAME")
	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("pingTimeout", "PING_TIMEOUT")
	_ = v.BindEnv("cors", "CORS")
	_ = v.BindEnv("logLevel", "LOG_LEVEL")
	_ = v.BindEnv("logFormat", "LOG_FORMAT")
	_ = v.BindEnv("databaseUrl", "DATABASE_URL")
	_ = v.BindEnv("autoMigrate", "AUTO_MIGRATE")
	_ = v.BindEnv("dbMaxOpenConns", "DB_MAX_OPEN_CONNS")
	_ = v.BindEnv("dbMaxIdleConns", "DB_MAX_IDLE_CONNS")
	_ = v.BindEnv("dbConnMaxLifetimeSeconds", "DB_CONN_MAX_LIFETIME_SECONDS")
	_ = v.BindEnv("dbConnMaxIdleSeconds", "DB_CONN_MAX_IDLE_SECONDS")
	_ = v.BindEnv("redisAddr", "REDIS_ADDR")
	_ = v.BindEnv("redisPassword", "REDIS_PASSWORD")
	_ = v.BindEnv("redisKey", "REDIS_KEY")
	_ = v.BindEnv("chatRate", "CHAT_RATE")
	_ = v.BindEnv("chatBurst", "CHAT_BURST")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sketchparty")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if !v.IsSet("games") {
		cfg.Rooms = def.Rooms
	}
	cfg.Rooms = fillRooms(cfg.Rooms)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fillRooms(rooms []Room) []Room {
	def := DefaultRoom()
	out := make([]Room, 0, len(rooms))
	for i, room := range rooms {
		if room.Name == "" {
			room.Name = fmt.Sprintf("Room %d", i+1)
		}
		if room.ID == "" {
			room.ID = Slug(room.Name)
		}
		if room.MinPlayers == 0 {
			room.MinPlayers = def.MinPlayers
		}
		if room.MaxPlayers == 0 {
			room.MaxPlayers = def.MaxPlayers
		}
		if room.Timeout == 0 {
			room.Timeout = def.Timeout
		}
		if room.Wordlist == "" {
			room.Wordlist = def.Wordlist
		}
		out = append(out, room)
	}
	return out
}

func (c Config) Validate() error {
	if len(c.Rooms) == 0 {
		return ErrNoRooms
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.PingTimeoutMS <= 0 {
		return errors.New("pingTimeout must be positive")
	}
	seen := make(map[string]struct{}, len(c.Rooms))
	for _, room := range c.Rooms {
		if room.ID == "" {
			return fmt.Errorf("room %q has no id", room.Name)
		}
		if !ValidRoomID(room.ID) {
			return fmt.Errorf("room id %q must be lowercase letters, digits and dashes", room.ID)
		}
		if _, ok := seen[room.ID]; ok {
			return fmt.Errorf("duplicate room id %q", room.ID)
		}
		seen[room.ID] = struct{}{}
		if room.MaxPlayers < 1 {
			return fmt.Errorf("room %q: maxPlayers must be at least 1", room.ID)
		}
		if room.Timeout < 1 {
			return fmt.Errorf("room %q: timeout must be at least 1 second", room.ID)
		}
		if room.Delay < 0 {
			return fmt.Errorf("room %q: delay must not be negative", room.ID)
		}
		if room.MinPlayers > room.MaxPlayers {
			log.Warn().Str("room", room.ID).Int("min", room.MinPlayers).Int("max", room.MaxPlayers).
				Msg("room can never start a round")
		}
	}
	return nil
}

var (
	nonSlug = regexp.MustCompile(`[^a-z0-9]+`)
	roomID  = regexp.MustCompile(`^[a-z0-9-]{1,64}$`)
)

// ValidRoomID reports whether id can name a room: 1 to 64 lowercase letters,
// digits or dashes.
func ValidRoomID(id string) bool {
	return roomID.MatchString(id)
}

// Slug turns a display name into a URL-safe room id.
func Slug(name string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
