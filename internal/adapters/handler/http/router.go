package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(pollHandler *PollHandler, voteHandler *VoteHandler, pageHandler *PageHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Post("/", pollHandler.CreatePoll)
			r.Get("/", pollHandler.ListPolls)
		})

		r.Route("/poll/{id}", func(r chi.Router) {
			r.Get("/", pollHandler.GetPoll)
			r.Put("/vote", voteHandler.VoteOnPoll)
		})
	})

	r.Get("/poll/{id}", pageHandler.PollPage)

	return r
}
