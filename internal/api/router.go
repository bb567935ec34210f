package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cardboxhq/cardbox/internal/api/handlers"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-User-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	s.router.Get("/health", s.healthCheck)
	s.router.Get("/ws", s.wsHub.ServeWs)

	userHandler := handlers.NewUserHandler(s.users)
	cardHandler := handlers.NewCardHandler(s.resolver)
	boxHandler := handlers.NewBoxHandler(s.inv, s.importer, s.wsHub)
	deckHandler := handlers.NewDeckHandler(s.decks, s.inv, s.engine, s.importer, s.wsHub)
	invHandler := handlers.NewInventoryHandler(s.engine, s.inv)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Account creation happens before a caller has an identity.
		r.Post("/users", userHandler.Create)

		r.Group(func(r chi.Router) {
			r.Use(handlers.Identity)

			r.Get("/users/me", userHandler.Me)
			r.Route("/users/me/friends", func(r chi.Router) {
				r.Get("/", userHandler.ListFriends)
				r.Put("/{friendID}", userHandler.AddFriend)
				r.Delete("/{friendID}", userHandler.RemoveFriend)
			})

			r.Get("/cards/resolve", cardHandler.Resolve)

			r.Route("/box", func(r chi.Router) {
				r.Get("/", boxHandler.List)
				r.Get("/export", boxHandler.Export)
				r.Post("/import", boxHandler.Import)
				r.Post("/import/stream", boxHandler.ImportStream)
			})

			r.Route("/decks", func(r chi.Router) {
				r.Get("/", deckHandler.List)
				r.Post("/", deckHandler.Create)
				r.Route("/{deckID}", func(r chi.Router) {
					r.Get("/", deckHandler.Get)
					r.Patch("/", deckHandler.Update)
					r.Delete("/", deckHandler.Delete)
					r.Get("/export", deckHandler.Export)
					r.Post("/import", deckHandler.Import)
					r.Post("/import/stream", deckHandler.ImportStream)
				})
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Post("/", invHandler.Add)
				r.Route("/{rowID}", func(r chi.Router) {
					r.Get("/", invHandler.Get)
					r.Patch("/", invHandler.Update)
					r.Delete("/", invHandler.Remove)
					r.Post("/move", invHandler.Move)
					r.Post("/transfer", invHandler.Transfer)
					r.Post("/printing", invHandler.SubstitutePrinting)
				})
			})
		})
	})
}
