// Package server exposes the quiz workflows over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/quizrr/quizrr/internal/auth"
	"github.com/quizrr/quizrr/internal/quizzes"
)

// Options wires the router.
type Options struct {
	Service *quizzes.Service

	// Auth enables sessions and Google sign-in. When nil every request
	// is anonymous and history is unavailable.
	Auth *auth.Service

	Log            logrus.FieldLogger
	AllowedOrigins []string
	Version        string

	// RequestTimeout bounds each request. Zero means no bound.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	h := &handlers{svc: opts.Service, log: opts.Log, version: opts.Version}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(opts.Log), middleware.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(opts.RequestTimeout))
	}
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	identify := func(next http.Handler) http.Handler { return next }
	requireUser := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusUnauthorized, errorBody{Error: "Sign in required."})
		})
	}
	if opts.Auth != nil {
		identify = opts.Auth.Identify
		requireUser = auth.RequireUser

		r.Route("/auth", func(ar chi.Router) {
			ar.Get("/login", opts.Auth.LoginHandler())
			ar.Get("/callback", opts.Auth.CallbackHandler(opts.Log))
			ar.Post("/logout", opts.Auth.LogoutHandler())
		})
	}

	r.Get("/healthz", h.health)

	r.Route("/api", func(api chi.Router) {
		api.Use(identify)

		api.With(requireUser).Get("/me", h.me)
		api.Post("/generate-explanation", h.explainText)

		api.Route("/quizzes", func(qr chi.Router) {
			qr.Post("/", h.generate)
			qr.With(requireUser).Get("/", h.history)

			qr.Route("/{quizID}", func(one chi.Router) {
				one.Get("/", h.getQuiz)
				one.Get("/render", h.renderQuiz)
				one.Post("/results", h.submit)
				one.Get("/results", h.latestResult)
				one.Post("/questions/{questionID}/explanation", h.explain)
			})
		})
	})
	return r
}

// Run serves handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, readTimeout, writeTimeout time.Duration, log logrus.FieldLogger) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request.
func requestLogger(log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"latency_ms": time.Since(start).Milliseconds(),
				"request_id": middleware.GetReqID(r.Context()),
			}).Debug("http request")
		})
	}
}
