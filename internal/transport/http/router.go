package http

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"mavi-fit-game/internal/app"
	"mavi-fit-game/internal/domain"
)

// Services are the use cases exposed over HTTP.
type Services struct {
	Game        *app.GameService
	Badges      *app.BadgeEngine
	Users       *app.UserService
	Catalog     *app.CatalogService
	Reports     *app.ReportService
	Analytics   *app.AnalyticsService
	Leaderboard *app.LeaderboardHub
	Tokens      TokenParser
}

// Options tunes the middleware stack.
type Options struct {
	// RateLimit is the number of game requests a user may send per minute; 0 disables it.
	RateLimit    int
	AllowOrigins string
	AccessLog    bool
}

type handlers struct {
	Services
}

// NewApp builds the fiber application with every REST route.
func NewApp(svc Services, opts Options) *fiber.App {
	api := fiber.New(fiber.Config{
		AppName:               "mavi-fit-game",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	api.Use(recover.New())
	if opts.AccessLog {
		api.Use(logger.New(logger.Config{
			Format: "${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	api.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	origins := opts.AllowOrigins
	if origins == "" {
		origins = "*"
	}
	api.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	h := &handlers{Services: svc}
	auth := requireAuth(svc.Tokens)
	admin := requireRole(domain.RoleAdmin)
	managers := requireRole(domain.RoleAdmin, domain.RoleStoreManager)

	root := api.Group("/api")
	root.Post("/auth/register", h.register)
	root.Post("/auth/login", h.login)

	game := root.Group("/game", auth)
	if opts.RateLimit > 0 {
		game.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return actorOf(c).UserID
			},
			LimitReached: func(c *fiber.Ctx) error {
				return errRateLimited
			},
		}))
	}
	game.Post("/start", h.startGame)
	game.Post("/answer", h.submitAnswer)
	game.Post("/lifeline-5050", h.fiftyFifty)
	game.Post("/lifeline-skip", h.skip)
	game.Post("/complete-category", h.completeCategory)
	game.Post("/end", h.endGame)

	root.Post("/badges/check", auth, h.checkBadges)
	root.Get("/badges/me", auth, h.myBadges)
	root.Get("/users/me", auth, h.me)
	root.Get("/categories", auth, h.playableCategories)
	root.Get("/leaderboard", auth, h.leaderboard)
	root.Post("/reports", auth, h.submitReport)

	back := root.Group("/admin", auth)
	back.Get("/categories", admin, h.allCategories)
	back.Post("/categories", admin, h.createCategory)
	back.Patch("/categories/:id", admin, h.updateCategory)
	back.Get("/questions", admin, h.listQuestions)
	back.Post("/questions", admin, h.createQuestion)
	back.Patch("/questions/:id", admin, h.setQuestionActive)
	back.Get("/users", managers, h.listUsers)
	back.Patch("/users/:id", admin, h.changeRole)
	back.Delete("/users/:id", admin, h.deleteUser)
	back.Get("/reports", admin, h.listReports)
	back.Patch("/reports/:id", admin, h.transitionReport)

	stats := root.Group("/analytics", auth, managers)
	stats.Get("/confusion", h.confusion)
	stats.Get("/weak-points", h.weakPoints)
	stats.Get("/training-priorities", h.trainingPriorities)
	stats.Get("/overview", h.overview)

	return api
}

// NewHandler mounts the fiber app under a net/http mux next to the health check and the
// websocket feed, which need the raw connection.
func NewHandler(api *fiber.App, ws *WSHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	if ws != nil {
		mux.HandleFunc("/ws/leaderboard", ws.ServeWS)
	}
	mux.Handle("/", adaptor.FiberApp(api))
	return mux
}
