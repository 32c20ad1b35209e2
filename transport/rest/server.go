package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

// NewRouter - wires the REST routes. stream, when set, is served at /ws.
func NewRouter(logger *slog.Logger, game gameUseCase, stream http.Handler) http.Handler {
	h := &handlers{
		logger: logger.With("component", "rest"),
		game:   game,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)

	r.Route("/game", func(r chi.Router) {
		r.Get("/", h.state)
		r.Post("/", h.newGame)
		r.Post("/move", h.move)
	})

	r.Route("/history", func(r chi.Router) {
		r.Get("/", h.history)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/moves", h.moves)
			r.Get("/replay", h.replay)
			r.Delete("/", h.deleteHistory)
		})
	})

	if stream != nil {
		r.Handle("/ws", stream)
	}

	return r
}

// Start - serves handler on port until ctx is cancelled.
func Start(ctx context.Context, port string, handler http.Handler) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}
