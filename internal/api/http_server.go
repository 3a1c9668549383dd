package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	healthPath      = "/healthz"
	requestIDHeader = "X-Request-Id"
)

// Services bundles the business operations served over HTTP.
type Services struct {
	Users    domain.UserService
	Items    domain.ItemService
	Bookings domain.BookingService
	Requests domain.RequestService
}

// HTTPServer exposes the ShareIt REST API.
type HTTPServer struct {
	svc    Services
	server *http.Server
	logger *zerolog.Logger
}

func NewHTTPServer(cfg config.ServerConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	srv := &HTTPServer{svc: svc, logger: logger}

	handler := LoggingMiddleware("server", logger, NewHTTPAuth(cfg.Auth, cfg.RateLimit).Wrap(srv.routes()))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
	return srv
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+healthPath, handleHealth)

	mux.HandleFunc("GET /users", s.listUsers)
	mux.HandleFunc("POST /users", s.createUser)
	mux.HandleFunc("GET /users/{id}", s.getUser)
	mux.HandleFunc("PATCH /users/{id}", s.updateUser)
	mux.HandleFunc("DELETE /users/{id}", s.deleteUser)

	mux.HandleFunc("POST /items", s.addItem)
	mux.HandleFunc("GET /items", s.ownerItems)
	mux.HandleFunc("GET /items/search", s.searchItems)
	mux.HandleFunc("GET /items/{id}", s.getItem)
	mux.HandleFunc("PATCH /items/{id}", s.updateItem)
	mux.HandleFunc("DELETE /items/{id}", s.deleteItem)
	mux.HandleFunc("POST /items/{id}/comment", s.addComment)

	mux.HandleFunc("POST /bookings", s.addBooking)
	mux.HandleFunc("GET /bookings", s.userBookings)
	mux.HandleFunc("GET /bookings/owner", s.ownerBookings)
	mux.HandleFunc("GET /bookings/owner/export", s.exportOwnerBookings)
	mux.HandleFunc("GET /bookings/{id}", s.getBooking)
	mux.HandleFunc("PATCH /bookings/{id}", s.approveBooking)

	mux.HandleFunc("POST /requests", s.addRequest)
	mux.HandleFunc("GET /requests", s.ownRequests)
	mux.HandleFunc("GET /requests/all", s.allRequests)
	mux.HandleFunc("GET /requests/{id}", s.getRequest)

	return mux
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	if logger.GetLevel() == zerolog.Disabled {
		logger = s.logger
	}
	WriteServiceError(w, logger, err)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoggingMiddleware tags each request with an id, logs it and counts it by route pattern.
func LoggingMiddleware(service string, logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := requestIDFrom(r.Header.Get(requestIDHeader))
		w.Header().Set(requestIDHeader, requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		r = r.WithContext(reqLogger.WithContext(r.Context()))

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.IncHTTP(service, route, recorder.status)

		reqLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
