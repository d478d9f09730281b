package http

import (
	"fmt"
	"net/http"
	"time"

	"carshare-escrow/internal/logger"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/rs/cors"
)

// NewRouter wires the query API and the event feed behind the standard
// middleware chain and CORS.
func NewRouter(queries *QueryHandler, stream *EventStream, allowedOrigins []string) http.Handler {
	standard := alice.New(recoverPanic, logRequest, secureHeaders)

	router := mux.NewRouter()
	router.Handle("/healthz", standard.ThenFunc(queries.Health)).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Handle("/roles", standard.ThenFunc(queries.GetRoles)).Methods(http.MethodGet)
	api.Handle("/listings", standard.ThenFunc(queries.ListListings)).Methods(http.MethodGet)
	api.Handle("/listings/{id:[0-9]+}", standard.ThenFunc(queries.GetListing)).Methods(http.MethodGet)
	api.Handle("/bookings", standard.ThenFunc(queries.ListBookings)).Methods(http.MethodGet)
	api.Handle("/bookings/{id:[0-9]+}", standard.ThenFunc(queries.GetBooking)).Methods(http.MethodGet)
	api.Handle("/bookings/{id:[0-9]+}/ratings/{side}", standard.ThenFunc(queries.GetRating)).Methods(http.MethodGet)
	api.Handle("/principals/{principal}/balance", standard.ThenFunc(queries.GetBalance)).Methods(http.MethodGet)
	api.Handle("/principals/{principal}/entries", standard.ThenFunc(queries.ListEntries)).Methods(http.MethodGet)
	api.Handle("/principals/{principal}/reputation", standard.ThenFunc(queries.GetReputation)).Methods(http.MethodGet)
	api.Handle("/ledger/summary", standard.ThenFunc(queries.GetLedgerSummary)).Methods(http.MethodGet)

	// The feed skips secureHeaders; the upgrade writes its own response.
	api.Handle("/events", alice.New(recoverPanic, logRequest).ThenFunc(stream.ServeWS)).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})
	return c.Handler(router)
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		next.ServeHTTP(w, r)
	})
}

func logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("HTTP request",
			"remote", r.RemoteAddr,
			"method", r.Method,
			"uri", r.URL.RequestURI(),
			"duration", time.Since(started))
	})
}

func recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				logger.Error("HTTP handler panicked", "error", fmt.Errorf("%v", err), "uri", r.URL.RequestURI())
				writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
