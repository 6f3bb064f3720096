// Package server exposes the card generator over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/github-social-card/internal/domain"
)

// Generator produces the PNG card of a repository.
type Generator interface {
	Generate(ctx context.Context, owner, repo string) ([]byte, error)
}

// Server is the HTTP application context. It is built once at startup and
// holds everything a request needs.
type Server struct {
	generator Generator
	logger    *log.Logger
	handler   http.Handler
}

// New creates a Server serving GET /{owner}/{repo}.
func New(generator Generator, logger *log.Logger) *Server {
	s := &Server{
		generator: generator,
		logger:    logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{owner}/{repo}", s.handleCard)
	s.handler = s.logRequests(mux)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	owner, repo := r.PathValue("owner"), r.PathValue("repo")
	img, err := s.generator.Generate(r.Context(), owner, repo)
	if err != nil {
		status, msg := StatusFor(err)
		s.logger.Printf("Card %s/%s failed: %v", owner, repo, err)
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(img)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		s.logger.Printf("Card %s/%s write failed: %v", owner, repo, err)
	}
}

// StatusFor maps a pipeline error to an HTTP status and a short message.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrRepositoryNotFound):
		return http.StatusNotFound, "repository not found"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "metadata source rate limit exceeded"
	case errors.Is(err, domain.ErrMetadataFetch):
		return http.StatusBadGateway, "failed to fetch repository metadata"
	case errors.Is(err, domain.ErrSlotLookup):
		return http.StatusInternalServerError, "template references unknown repository attribute"
	case errors.Is(err, domain.ErrTemplateUnavailable):
		return http.StatusInternalServerError, "template unavailable"
	case errors.Is(err, domain.ErrRender):
		return http.StatusInternalServerError, "failed to render card"
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

// Serve accepts connections on ln until ctx is done, then shuts down and
// gives in-flight requests up to grace to finish.
func (s *Server) Serve(ctx context.Context, ln net.Listener, grace time.Duration) error {
	httpServer := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		s.logger.Printf("Listening on %s", ln.Addr())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		s.logger.Println("Shutting down...")
		return httpServer.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

// ListenAndServe listens on addr and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context, addr string, grace time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, grace)
}
