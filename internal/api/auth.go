package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"

	"shareit/internal/config"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const (
	apiKeyHeaderDefault   = "x-api-key"
	apiExtraHeaderDefault = "x-api-extra"
	permRead              = "read"
	permWrite             = "write"
	clientKeyUnknown      = "unknown"
)

var (
	errMissingKey       = errors.New("missing api key headers")
	errInvalidKey       = errors.New("invalid api key")
	errInvalidExtra     = errors.New("invalid extra header")
	errPermissionDenied = errors.New("permission denied")
)

// keyring validates api key pairs shared by the HTTP and gRPC front doors.
type keyring struct {
	cfg     config.AuthConfig
	clients map[string]config.ClientKey
}

func newKeyring(cfg config.AuthConfig) *keyring {
	m := make(map[string]config.ClientKey, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		m[k.Key] = k
	}
	return &keyring{cfg: cfg, clients: m}
}

func (k *keyring) headerNames() (string, string) {
	apiKeyHeader := strings.ToLower(strings.TrimSpace(k.cfg.HeaderAPIKey))
	if apiKeyHeader == "" {
		apiKeyHeader = apiKeyHeaderDefault
	}
	extraHeader := strings.ToLower(strings.TrimSpace(k.cfg.HeaderExtra))
	if extraHeader == "" {
		extraHeader = apiExtraHeaderDefault
	}
	return apiKeyHeader, extraHeader
}

func (k *keyring) check(apiKey, extra, required string) error {
	if apiKey == "" || extra == "" {
		return errMissingKey
	}
	client, ok := k.clients[apiKey]
	if !ok {
		return errInvalidKey
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return errInvalidExtra
	}

	// An empty permission list allows everything.
	if required == "" || len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

// HTTPAuth provides API-key auth and per-key rate limiting for HTTP endpoints.
type HTTPAuth struct {
	keys    *keyring
	limiter *keyedLimiter
}

func NewHTTPAuth(auth config.AuthConfig, limit config.RateLimitConfig) *HTTPAuth {
	return &HTTPAuth{keys: newKeyring(auth), limiter: newKeyedLimiter(limit)}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthPath {
			next.ServeHTTP(w, r)
			return
		}

		if a.keys.cfg.Enabled {
			apiKeyHeader, extraHeader := a.keys.headerNames()
			err := a.keys.check(
				strings.TrimSpace(r.Header.Get(apiKeyHeader)),
				strings.TrimSpace(r.Header.Get(extraHeader)),
				requiredPermissionHTTP(r),
			)
			if err != nil {
				statusCode := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					statusCode = http.StatusForbidden
				}
				WriteError(w, statusCode, "Unauthorized.", err.Error())
				return
			}
		}

		if !a.limiter.allow(a.clientKey(r)) {
			WriteError(w, http.StatusTooManyRequests, "Too many requests.", "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func requiredPermissionHTTP(r *http.Request) string {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		return permRead
	default:
		return permWrite
	}
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	apiKeyHeader, _ := a.keys.headerNames()
	if apiKey := strings.TrimSpace(r.Header.Get(apiKeyHeader)); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}

type AuthInterceptor struct {
	keys    *keyring
	limiter *keyedLimiter
}

func NewAuthInterceptor(auth config.AuthConfig, limit config.RateLimitConfig) *AuthInterceptor {
	return &AuthInterceptor{keys: newKeyring(auth), limiter: newKeyedLimiter(limit)}
}

func (a *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if a.keys.cfg.Enabled {
			if err := a.checkAuth(ctx); err != nil {
				return nil, err
			}
		}
		if !a.limiter.allow(a.clientKey(ctx)) {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}

func (a *AuthInterceptor) checkAuth(ctx context.Context) error {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	apiKeyHeader, extraHeader := a.keys.headerNames()
	err := a.keys.check(first(md.Get(apiKeyHeader)), first(md.Get(extraHeader)), permRead)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	default:
		return status.Error(codes.Unauthenticated, err.Error())
	}
}

func (a *AuthInterceptor) clientKey(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	apiKeyHeader, _ := a.keys.headerNames()
	if apiKey := first(md.Get(apiKeyHeader)); apiKey != "" {
		return apiKey
	}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return clientKeyUnknown
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
