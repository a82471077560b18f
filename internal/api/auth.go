package api

import (
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"

	"hotelbook/internal/config"
)

const (
	apiKeyHeaderDefault = "x-api-key"
	clientKeyUnknown    = "unknown"

	permReadBookings     = "read:bookings"
	permWriteBookings    = "write:bookings"
	permExportBookings   = "export:bookings"
	permReadAvailability = "read:availability"
	permReadDirectory    = "read:directory"
	permWriteDirectory   = "write:directory"
	permAdminEvents      = "admin:events"
)

var (
	errMissingAPIKey     = errors.New("missing api key header")
	errInvalidAPIKey     = errors.New("invalid api key")
	errPermissionDenied  = errors.New("permission denied")
	errRateLimitExceeded = errors.New("rate limit exceeded")
)

// HTTPAuth provides API-key auth and rate limiting for HTTP endpoints. Limits
// are per api key when auth is on and per remote host otherwise.
type HTTPAuth struct {
	cfg     config.APIConfig
	clients map[string]config.APIClientKey
	limiter *rateLimiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &HTTPAuth{
		cfg:     cfg,
		clients: m,
		limiter: newRateLimiter(cfg.RateLimit),
	}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthPath {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, "unauthorized", err.Error())
				return
			}
		}

		if !a.limiter.allow(a.clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate_limited", errRateLimitExceeded.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (a *HTTPAuth) headerName() string {
	name := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if name == "" {
		return apiKeyHeaderDefault
	}
	return name
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.headerName()))
	if apiKey == "" {
		return errMissingAPIKey
	}

	client, ok := a.lookup(apiKey)
	if !ok {
		return errInvalidAPIKey
	}
	return checkPermissions(client, requiredPermission(r))
}

// lookup compares against every configured key so timing does not leak
// which prefix matched.
func (a *HTTPAuth) lookup(apiKey string) (config.APIClientKey, bool) {
	var (
		found  config.APIClientKey
		exists bool
	)
	for key, client := range a.clients {
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) == 1 {
			found = client
			exists = true
		}
	}
	return found, exists
}

// checkPermissions allows everything for a client with no permission list.
func checkPermissions(client config.APIClientKey, required string) error {
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

func requiredPermission(r *http.Request) string {
	path := r.URL.Path
	read := r.Method == http.MethodGet || r.Method == http.MethodHead

	switch {
	case strings.HasPrefix(path, "/api/v1/export/"):
		return permExportBookings
	case strings.HasPrefix(path, "/api/v1/admin/"):
		return permAdminEvents
	case strings.HasPrefix(path, "/api/v1/bookings"):
		if read {
			return permReadBookings
		}
		return permWriteBookings
	case strings.HasPrefix(path, "/api/v1/rooms/") && strings.HasSuffix(path, "/availability"),
		strings.HasPrefix(path, "/api/v1/hotels/") && strings.HasSuffix(path, "/available-rooms"):
		return permReadAvailability
	case strings.HasPrefix(path, "/api/v1/rooms"),
		strings.HasPrefix(path, "/api/v1/hotels"),
		strings.HasPrefix(path, "/api/v1/users"):
		if read {
			return permReadDirectory
		}
		return permWriteDirectory
	}
	return ""
}

// clientKey names the rate-limit bucket: the verified api key when auth is
// on, the remote host otherwise.
func (a *HTTPAuth) clientKey(r *http.Request) string {
	if a.cfg.Auth.Enabled {
		if apiKey := strings.TrimSpace(r.Header.Get(a.headerName())); apiKey != "" {
			return apiKey
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}
