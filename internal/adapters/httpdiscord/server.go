package httpdiscord

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jose-valero/discord-interactions/internal/adapters/discord"
)

// MaxBodyBytes: Discord no manda payloads de interacciones más grandes que esto.
const MaxBodyBytes = 1 << 20

// Dispatcher es lo que el host necesita del dispatcher de interacciones.
type Dispatcher interface {
	Dispatch(ctx context.Context, req discord.Request) discord.Response
}

type Server struct {
	dispatcher Dispatcher
	tasks      *BackgroundTasks
	log        *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New arma el router y el http.Server. tasks puede ser nil si el dispatcher corre en modo sync.
func New(addr string, d Dispatcher, tasks *BackgroundTasks, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{dispatcher: d, tasks: tasks, log: log}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Post("/interactions", s.handleInteraction)
	return r
}

// Handler expone el router (tests y para montarlo en otro mux).
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	_ = r.Body.Close()
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			http.Error(w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), discord.Request{Header: r.Header, Body: body})
	writeResponse(w, resp)
}

func writeResponse(w http.ResponseWriter, resp discord.Response) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}

// Start bloquea sirviendo hasta Shutdown.
func (s *Server) Start() error {
	s.log.Info("http listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown deja de aceptar requests y espera los handlers en background.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	if s.tasks != nil {
		if err := s.tasks.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
