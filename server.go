package main

import (
	"net/http"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/senomas/bookloader/graph"
)

const requestIDHeader = "X-Request-Id"

func NewRouter(corsAllowedOrigins []string, exec *graph.Executor) http.Handler {
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{requestIDHeader},
	})

	router := chi.NewRouter()
	router.Use(corsMiddleware.Handler)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	router.Handle("/", playground.Handler("GraphQL playground", "/query"))
	router.With(exec.Middleware).Handle("/query", exec.Handler())
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {})
	return router
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logrus.WithFields(logrus.Fields{
			"requestId": id,
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    ww.Status(),
			"duration":  time.Since(start).String(),
		}).Info("request")
	})
}
