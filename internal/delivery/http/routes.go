package http

import (
	"net/http"

	wsDelivery "talkwire/internal/delivery/websocket"

	"github.com/go-chi/chi/v5"
)

func MapHttpRoutes(r *chi.Mux, httpHandler *HttpHandler, websocketHandler *wsDelivery.WebsocketHandler, authHandler *AuthHandler, authMiddleware *AuthMiddleware) {
	// Websocket topics. Authentication happens after the upgrade so a
	// rejected client still gets its go_home frame.
	r.Handle("/ws/dialogs/u{interlocutorId}", http.HandlerFunc(websocketHandler.HandleDialogWS))
	r.Handle("/ws/dialogs/", http.HandlerFunc(websocketHandler.HandleDialogsWS))

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", http.HandlerFunc(authHandler.Register))
		r.Post("/login", http.HandlerFunc(authHandler.Login))
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Route("/user", func(r chi.Router) {
			r.Get("/{id}", http.HandlerFunc(httpHandler.GetUser))
		})
	})
}
