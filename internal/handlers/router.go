package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sternhalma/internal/middleware"
)

// SetupRouter configures the HTTP routes and middleware stack.
func (h *Handler) SetupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RequestSizeLimiter(h.config.Server.MaxRequestSize))

	rl := middleware.NewRateLimiter(h.config.Server.RateLimit, h.config.Server.RateLimitBurst)
	r.Use(rl.Middleware())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", h.HealthCheck)

	// Token lifecycle
	r.Post("/add", h.AddUser)
	r.Post("/refresh", h.RefreshToken)

	// Read endpoints
	r.Get("/room", h.ListRooms)
	r.Get("/room/{room_id}", h.DescribeRoom)
	r.Get("/room/{room_id}/qr", h.RoomQR)
	r.Get("/players", h.GetPlayers)
	r.Get("/game-state", h.GetGameState)

	// Authenticated room actions
	r.Group(func(r chi.Router) {
		r.Use(h.Authenticated)
		r.Post("/room", h.CreateRoom)
		r.Post("/update/{room_id}", h.UpdateRoom)
		r.Post("/move/{room_id}", h.MakeMove)
		r.Post("/chat/{room_id}", h.Chat)
		r.Post("/validate/{room_id}", h.ValidatePath)
	})

	// Stream endpoint; the token rides in the path.
	r.Get("/sse/{room_id}/{token}", h.StreamRoom)

	return r
}
