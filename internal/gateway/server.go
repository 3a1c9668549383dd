// Package gateway validates client calls and forwards the valid ones to the ShareIt server.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/dto"
	"shareit/internal/metrics"

	"github.com/rs/zerolog"
)

const service = "gateway"

type Server struct {
	cfg     config.GatewayConfig
	client  *ServerClient
	limiter domain.RateLimitRepository
	now     func() time.Time
	server  *http.Server
	logger  *zerolog.Logger
}

// NewServer builds the gateway. A nil limiter disables per-sharer rate limiting.
func NewServer(cfg config.GatewayConfig, client *ServerClient, limiter domain.RateLimitRepository, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	s := &Server{
		cfg:     cfg,
		client:  client,
		limiter: limiter,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  logger,
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           api.LoggingMiddleware(service, logger, s.rateLimit(s.routes())),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /users", s.plain)
	mux.HandleFunc("POST /users", s.createUser)
	mux.HandleFunc("GET /users/{id}", s.withID)
	mux.HandleFunc("PATCH /users/{id}", s.updateUser)
	mux.HandleFunc("DELETE /users/{id}", s.withID)

	mux.HandleFunc("POST /items", s.addItem)
	mux.HandleFunc("GET /items", s.paged)
	mux.HandleFunc("GET /items/search", s.searchItems)
	mux.HandleFunc("GET /items/{id}", s.sharerWithID)
	mux.HandleFunc("PATCH /items/{id}", s.updateItem)
	mux.HandleFunc("DELETE /items/{id}", s.sharerWithID)
	mux.HandleFunc("POST /items/{id}/comment", s.addComment)

	mux.HandleFunc("POST /bookings", s.addBooking)
	mux.HandleFunc("GET /bookings", s.listBookings)
	mux.HandleFunc("GET /bookings/owner", s.listBookings)
	mux.HandleFunc("GET /bookings/{id}", s.sharerWithID)
	mux.HandleFunc("PATCH /bookings/{id}", s.approveBooking)

	mux.HandleFunc("POST /requests", s.addRequest)
	mux.HandleFunc("GET /requests", s.sharerOnly)
	mux.HandleFunc("GET /requests/all", s.paged)
	mux.HandleFunc("GET /requests/{id}", s.sharerWithID)

	return mux
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Str("server_url", s.cfg.ServerURL).Msg("gateway listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// rateLimit enforces the per-sharer request budget. Calls without a readable sharer pass through
// to be rejected by validation. Limiter failures let the call through.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || !s.cfg.RateLimit.Enabled {
			next.ServeHTTP(w, r)
			return
		}
		sharerID, err := api.SharerID(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		allowed, err := s.limiter.CheckRateLimit(r.Context(), sharerID, s.cfg.RateLimit.Requests, s.cfg.RateLimit.Window)
		if err != nil {
			s.logger.Error().Err(err).Int64("sharer_id", sharerID).Msg("rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			metrics.IncGatewayRejection("rate_limit")
			api.WriteError(w, http.StatusTooManyRequests, "Too many requests.",
				fmt.Sprintf("user %d exceeded %d requests per %s", sharerID, s.cfg.RateLimit.Requests, s.cfg.RateLimit.Window))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) reject(w http.ResponseWriter, r *http.Request, err error) {
	metrics.IncGatewayRejection("validation")
	api.WriteServiceError(w, zerolog.Ctx(r.Context()), err)
}

// forward relays the call to the server with the same path and query and writes back its reply.
func (s *Server) forward(w http.ResponseWriter, r *http.Request, sharerID int64, body any) {
	resp, err := s.client.Do(r.Context(), r.Method, r.URL.Path, r.URL.RawQuery, sharerID, body)
	if err != nil {
		metrics.IncGatewayRejection("upstream")
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("forward failed")
		api.WriteError(w, http.StatusBadGateway, "Server unavailable.", err.Error())
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// optionalSharer forwards the sharer header when it is present and valid.
func optionalSharer(r *http.Request) int64 {
	id, err := api.SharerID(r)
	if err != nil {
		return 0
	}
	return id
}

func (s *Server) plain(w http.ResponseWriter, r *http.Request) {
	s.forward(w, r, optionalSharer(r), nil)
}

func (s *Server) withID(w http.ResponseWriter, r *http.Request) {
	if _, err := dto.ParseID("id", r.PathValue("id")); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, optionalSharer(r), nil)
}

func (s *Server) sharerOnly(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, sharerID, nil)
}

func (s *Server) sharerWithID(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	if _, err := dto.ParseID("id", r.PathValue("id")); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, sharerID, nil)
}

func (s *Server) paged(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	q := r.URL.Query()
	if _, err := dto.ParsePage(q.Get("from"), q.Get("size")); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, sharerID, nil)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var body dto.UserDto
	if err := api.DecodeJSON(r, &body); err != nil {
		s.reject(w, r, err)
		return
	}
	if err := body.ValidateCreate(); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, 0, body)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	if _, err := dto.ParseID("id", r.PathValue("id")); err != nil {
		s.reject(w, r, err)
		return
	}
	var body dto.UserPatchDto
	if err := api.DecodeJSON(r, &body); err != nil {
		s.reject(w, r, err)
		return
	}
	if err := body.Validate(); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, 0, body)
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	var body dto.ItemDto
	if err := api.DecodeJSON(r, &body); err != nil {
		s.reject(w, r, err)
		return
	}
	if err := body.ValidateCreate(); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, sharerID, body)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	if _, err := dto.ParseID("id", r.PathValue("id")); err != nil {
		s.reject(w, r, err)
		return
	}
	var body dto.ItemPatchDto
	if err := api.DecodeJSON(r, &body); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, sharerID, body)
}

func (s *Server) searchItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if _, err := dto.ParsePage(q.Get("from"), q.Get("size")); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, optionalSharer(r), nil)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	if _, err := dto.ParseID("id", r.PathValue("id")); err != nil {
		s.reject(w, r, err)
		return
	}
	var body dto.CommentDto
	if err := api.DecodeJSON(r, &body); err != nil {
		s.reject(w, r, err)
		return
	}
	if err := body.Validate(); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, sharerID, dto.CommentDto{Text: body.Text})
}

func (s *Server) addBooking(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	var body dto.BookingInput
	if err := api.DecodeJSON(r, &body); err != nil {
		s.reject(w, r, err)
		return
	}
	if err := body.Validate(s.now()); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, sharerID, body)
}

func (s *Server) listBookings(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	q := r.URL.Query()
	if _, err := dto.ParseState(q.Get("state")); err != nil {
		s.reject(w, r, err)
		return
	}
	if _, err := dto.ParsePage(q.Get("from"), q.Get("size")); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, sharerID, nil)
}

func (s *Server) approveBooking(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	if _, err := dto.ParseID("id", r.PathValue("id")); err != nil {
		s.reject(w, r, err)
		return
	}
	raw := r.URL.Query().Get("approved")
	if _, err := strconv.ParseBool(raw); err != nil {
		s.reject(w, r, domain.Errorf(domain.ErrValidation, "approved must be true or false, got %q", raw))
		return
	}
	s.forward(w, r, sharerID, nil)
}

func (s *Server) addRequest(w http.ResponseWriter, r *http.Request) {
	sharerID, err := api.SharerID(r)
	if err != nil {
		s.reject(w, r, err)
		return
	}
	var body dto.ItemRequestInput
	if err := api.DecodeJSON(r, &body); err != nil {
		s.reject(w, r, err)
		return
	}
	if err := body.Validate(); err != nil {
		s.reject(w, r, err)
		return
	}
	s.forward(w, r, sharerID, body)
}
