package eventhandlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts the event endpoints. Registration routes sit behind
// requireSession.
func Routes(h Handlers, requireSession func(http.Handler) http.Handler) func(chi.Router) {
	return func(r chi.Router) {
		r.Get("/", h.HandleListEvents)
		r.Get("/open-house/next", h.HandleNextOpenHouse)

		r.Route("/{eventID}", func(r chi.Router) {
			r.Get("/", h.HandleGetEvent)
			r.Get("/roster.xlsx", h.HandleRoster)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Get("/registration", h.HandleGetRegistration)
				r.Post("/registration", h.HandleRegister)
				r.Delete("/registration", h.HandleUnregister)
			})
		})
	}
}
