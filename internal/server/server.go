package server

import (
	"backend-laufcoach/internal/auth"
	"backend-laufcoach/internal/config"
	"backend-laufcoach/internal/directions"
	"backend-laufcoach/internal/phrase"
	"backend-laufcoach/internal/profile"
	"backend-laufcoach/internal/routes"
	"backend-laufcoach/internal/session"
	"backend-laufcoach/internal/speech"
	"backend-laufcoach/internal/stream"
	"backend-laufcoach/internal/training"
	"backend-laufcoach/internal/workout"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App      *fiber.App
	Cfg      config.Config
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Stream   *stream.Hub
	Sessions *session.Manager
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	workouts := workout.NewService(s.DB)
	profiles := profile.NewService(s.DB)
	fetcher := directions.NewClient(s.Cfg.DirectionsBaseURL, s.Cfg.DirectionsAPIKey)

	var phrases *phrase.Generator
	if s.Cfg.PhraseAPIKey != "" {
		phrases = phrase.NewGenerator(s.Cfg.PhraseBaseURL, s.Cfg.PhraseAPIKey, s.Cfg.PhraseModel)
	}
	var speaker *speech.Client
	if s.Cfg.TTSAPIKey != "" {
		speaker = speech.NewClient(s.Cfg.TTSBaseURL, s.Cfg.TTSAPIKey, s.Cfg.TTSVoiceID, speech.FilePlayer{})
	}

	opts := session.ManagerOptions{
		Store:             workouts,
		Hub:               s.Stream,
		Weights:           profiles,
		CountdownSeconds:  s.Cfg.CountdownSeconds,
		RecordWhilePaused: s.Cfg.RecordWhilePaused,
	}
	// Typed nils would defeat the manager's nil checks.
	if phrases != nil {
		opts.Phrases = phrases
	}
	if speaker != nil {
		opts.Speaker = speaker
	}
	s.Sessions = session.NewManager(opts)

	session.RegisterRoutes(s.App.Group("/sessions"), s.Sessions, jwtMiddleware)
	workout.RegisterRoutes(s.App.Group("/workouts"), workouts, jwtMiddleware)
	routes.RegisterRoutes(s.App.Group("/routes"), routes.NewService(s.DB, fetcher), jwtMiddleware)
	training.RegisterRoutes(s.App.Group("/training"), training.NewService(s.DB), jwtMiddleware)
	profile.RegisterRoutes(s.App.Group("/profile"), profiles, jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
