package server

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"sketchparty/internal/config"
	"sketchparty/internal/game"
	"sketchparty/internal/protocol"
	"sketchparty/internal/scores"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the optional collaborators of a Server. Nil fields disable the
// feature they back.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	Words WordSourceFunc
}

type roundHistory interface {
	Rounds(ctx context.Context, room string, limit int) ([]game.Outcome, error)
}

type Server struct {
	cfg      config.Config
	db       *gorm.DB
	rooms    []*roomEntry
	byID     map[string]*roomEntry
	board    scores.Leaderboard
	history  roundHistory
	ws       *wsHub
	upgrader websocket.Upgrader

	startOnce     sync.Once
	stopOnce      sync.Once
	scoreFailures atomic.Int64
}

func New(cfg config.Config, deps Deps) (*Server, error) {
	registerValidators()
	s := &Server{
		cfg:  cfg,
		db:   deps.DB,
		byID: make(map[string]*roomEntry),
		ws:   newWSHub(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	if cfg.CORS {
		s.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}

	var sinks scores.Multi
	if deps.DB != nil {
		store := scores.NewStore(deps.DB)
		sinks = append(sinks, store)
		s.board = store
		s.history = store
	}
	if deps.Redis != nil {
		board := scores.NewRedisBoard(deps.Redis, cfg.RedisKey)
		sinks = append(sinks, board)
		if s.board == nil {
			s.board = board
		}
	}
	var sink game.ScoreSink
	switch len(sinks) {
	case 0:
	case 1:
		sink = sinks[0]
	default:
		sink = sinks
	}

	load := deps.Words
	if load == nil {
		load = LoadWordSource(deps.DB)
	}
	if err := s.buildRooms(load, sink); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches every room's actor.
func (s *Server) Start() {
	s.startOnce.Do(func() {
		for _, entry := range s.rooms {
			go entry.room.Run()
			log.Info().Str("room", entry.cfg.ID).Str("path", entry.path()).
				Int("min", entry.cfg.MinPlayers).Int("max", entry.cfg.MaxPlayers).Msg("room open")
		}
	})
}

// Shutdown stops every room, which closes its players' connections, then
// closes connections that never got past login.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.stopOnce.Do(func() {
			for _, entry := range s.rooms {
				entry.room.Stop()
			}
			s.ws.CloseAll(protocol.CloseNormal, protocol.ReasonShutdown)
		})
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	if s.cfg.CORS {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
			MaxAge:          12 * time.Hour,
		}))
	}

	r.GET("/", s.handleLobby)
	api := r.Group("/api")
	api.GET("/info", s.handleInfo)
	api.GET("/health", s.handleHealth)
	api.GET("/games", s.handleGames)
	api.GET("/games/:room", s.handleGame)
	api.GET("/games/:room/rounds", s.handleRounds)
	api.GET("/scores", s.handleScores)
	r.GET("/ws/rooms/:room", s.handleWebsocket)
	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not found")
	})
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("remote", c.ClientIP()).
			Msg("http request")
	}
}
