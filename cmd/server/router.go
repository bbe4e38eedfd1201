package main

import (
	"note-sync/cmd/server/handlers"
	"note-sync/cmd/server/handlers/activities"
	"note-sync/cmd/server/handlers/auth"
	"note-sync/cmd/server/handlers/httperr"
	notesHandlers "note-sync/cmd/server/handlers/notes"
	"note-sync/cmd/server/middlewares"
	"note-sync/internal/config"
	"note-sync/internal/logger"
	"note-sync/internal/mutation"
	"note-sync/internal/notesync"
	"note-sync/internal/querycache"
	"note-sync/internal/services/activity"
	authServices "note-sync/internal/services/auth"
	notesServices "note-sync/internal/services/notes"

	_ "note-sync/docs" // Load swagger docs

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// server is the wired application.
type server struct {
	app      *fiber.App
	hub      *notesServices.Hub
	registry *notesync.Registry
}

// setupRouter builds the services on top of st and mounts every route.
func setupRouter(cfg config.Config, st stores) *server {
	log := logger.L()

	app := fiber.New(fiber.Config{
		ErrorHandler: httperr.Handler,
		Immutable:    true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Content-Type, Authorization",
	}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	if cfg.RouteMetricsEnabled {
		middlewares.AttachMetrics(app, reg)
	}

	app.Get("/healthz", handlers.Healthz(st.ping))
	app.Get("/docs/*", swagger.HandlerDefault)

	var v1 fiber.Router
	if cfg.RequestLoggingEnabled {
		v1 = app.Group("/api/v1", fiberlogger.New())
		log.Info("request logging enabled")
	} else {
		v1 = app.Group("/api/v1")
		log.Info("request logging disabled")
	}

	hub := notesServices.NewHub(cfg.WSOutboxBuffer, log)
	activitySvc := activity.NewService(st.activities, log)
	notesSvc := notesServices.NewService(st.notes, activitySvc, hub, log)

	registry := notesync.NewRegistry(notesSvc, activitySvc, notesync.Options{
		StaleTime:       cfg.CacheStale(),
		Timeout:         cfg.RequestTimeout(),
		IdleTTL:         cfg.TokenTTL(),
		Logger:          log,
		CacheMetrics:    querycache.NewMetrics(reg),
		MutationMetrics: mutation.NewMetrics(reg),
	})
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "notesync_clients",
		Help: "Users with a live sync client",
	}, func() float64 { return float64(registry.Len()) }))
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "notes_ws_subscribers",
		Help: "Open note stream connections",
	}, func() float64 {
		subs, _ := hub.Stats()
		return float64(subs)
	}))

	jwtMiddleware := middlewares.JWT(cfg.JWTSecret)

	authSvc := authServices.NewService(st.users, cfg, log)
	authH := auth.NewHandlers(authSvc, registry)
	authGrp := v1.Group("/auth")
	authLimiter := middlewares.AuthLimiter(cfg.SignInRatePerMin, middlewares.RateLimitWindow)
	authGrp.Post("/sign-up", authLimiter, authH.SignUp)
	authGrp.Post("/sign-in", authLimiter, authH.SignIn)
	authGrp.Post("/sign-out", jwtMiddleware, authH.SignOut)

	v1.Get("/me", jwtMiddleware, handlers.Me)
	v1.Get("/categories", notesHandlers.Categories)

	notesH := notesHandlers.NewHandlers(registry)
	notesGrp := v1.Group("/notes", jwtMiddleware)
	notesGrp.Post("/", notesH.Create)
	notesGrp.Get("/", notesH.List)
	notesGrp.Get("/:id", notesH.Get)
	notesGrp.Patch("/:id", notesH.Update)
	notesGrp.Delete("/:id", notesH.Delete)

	v1.Get("/stats", jwtMiddleware, notesH.Stats)
	v1.Get("/activities", jwtMiddleware, activities.NewHandlers(registry).List)

	wsHandlers := notesHandlers.NewWebSocketHandlers(hub, cfg.JWTSecret, cfg.WSMaxSessionSec)
	app.Get("/ws/notes/stream", wsHandlers.WSUpgrade, websocket.New(wsHandlers.WSNotesStream))

	return &server{app: app, hub: hub, registry: registry}
}
