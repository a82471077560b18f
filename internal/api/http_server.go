package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"hotelbook/internal/config"
	"hotelbook/internal/domain"
	"hotelbook/internal/metrics"
	"hotelbook/internal/service"
	"hotelbook/internal/worker"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

const (
	healthPath      = "/healthz"
	maxBodyBytes    = 1 << 20
	healthTimeout   = 2 * time.Second
	defaultWriteTTL = 15 * time.Second
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DeadLetterSource lists events the delivery worker gave up on.
type DeadLetterSource interface {
	DeadLetters(ctx context.Context, limit int64) ([]worker.DeadLetter, error)
}

// HTTPServer exposes the booking engine and the room directory over JSON.
type HTTPServer struct {
	cfg         config.APIConfig
	bookings    domain.BookingService
	rooms       domain.RoomService
	health      Pinger
	deadLetters DeadLetterSource
	validate    *requestValidator
	auth        *HTTPAuth
	logger      *zerolog.Logger
	server      *http.Server
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookings domain.BookingService,
	rooms domain.RoomService,
	health Pinger,
	logger *zerolog.Logger,
) *HTTPServer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	srv := &HTTPServer{
		cfg:      cfg,
		bookings: bookings,
		rooms:    rooms,
		health:   health,
		validate: newRequestValidator(),
		auth:     NewHTTPAuth(cfg),
		logger:   logger,
	}

	writeTimeout := cfg.HTTP.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTTL
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           srv.loggingMiddleware(srv.auth.Wrap(srv.routes())),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	return srv
}

// WithDeadLetters serves src on the admin dead-letter route.
func (s *HTTPServer) WithDeadLetters(src DeadLetterSource) *HTTPServer {
	s.deadLetters = src
	return s
}

func (s *HTTPServer) routes() *httprouter.Router {
	router := httprouter.New()
	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, service.KindNotFound, "route not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})

	router.GET(healthPath, s.handle("healthz", s.handleHealth))

	router.POST("/api/v1/bookings", s.handle("create_booking", s.handleCreateBooking))
	router.GET("/api/v1/bookings", s.handle("list_bookings", s.handleListBookings))
	router.GET("/api/v1/bookings/:id", s.handle("get_booking", s.handleGetBooking))
	router.PATCH("/api/v1/bookings/:id", s.handle("update_booking", s.handleUpdateBooking))
	router.PATCH("/api/v1/bookings/:id/confirm", s.handle("confirm_booking", s.handleConfirmBooking))
	router.PATCH("/api/v1/bookings/:id/cancel", s.handle("cancel_booking", s.handleCancelBooking))
	router.PATCH("/api/v1/bookings/:id/complete", s.handle("complete_booking", s.handleCompleteBooking))
	router.GET("/api/v1/export/bookings", s.handle("export_bookings", s.handleExportBookings))

	router.GET("/api/v1/hotels", s.handle("list_hotels", s.handleListHotels))
	router.POST("/api/v1/hotels", s.handle("create_hotel", s.handleCreateHotel))
	router.GET("/api/v1/hotels/:id", s.handle("get_hotel", s.handleGetHotel))
	router.PATCH("/api/v1/hotels/:id", s.handle("update_hotel", s.handleUpdateHotel))
	router.DELETE("/api/v1/hotels/:id", s.handle("delete_hotel", s.handleDeleteHotel))
	router.GET("/api/v1/hotels/:id/available-rooms", s.handle("find_available_rooms", s.handleAvailableRooms))

	router.GET("/api/v1/rooms", s.handle("list_rooms", s.handleListRooms))
	router.POST("/api/v1/rooms", s.handle("create_room", s.handleCreateRoom))
	router.GET("/api/v1/rooms/:id", s.handle("get_room", s.handleGetRoom))
	router.PATCH("/api/v1/rooms/:id", s.handle("update_room", s.handleUpdateRoom))
	router.DELETE("/api/v1/rooms/:id", s.handle("delete_room", s.handleDeleteRoom))
	router.PATCH("/api/v1/rooms/:id/status", s.handle("update_room_status", s.handleUpdateRoomStatus))
	router.GET("/api/v1/rooms/:id/availability", s.handle("check_availability", s.handleAvailability))

	router.POST("/api/v1/users", s.handle("create_user", s.handleCreateUser))
	router.GET("/api/v1/users/:id", s.handle("get_user", s.handleGetUser))
	router.PATCH("/api/v1/users/:id", s.handle("update_user", s.handleUpdateUser))
	router.DELETE("/api/v1/users/:id", s.handle("delete_user", s.handleDeleteUser))

	router.GET("/api/v1/admin/dead-letters", s.handle("dead_letters", s.handleDeadLetters))

	return router
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
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

func (s *HTTPServer) handle(endpoint string, h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		metrics.IncHTTP(endpoint)
		h(w, r, ps)
	}
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads a JSON body into dst and validates it. An empty body is
// accepted only when allowEmpty is set.
func (s *HTTPServer) decodeBody(r *http.Request, dst any, allowEmpty bool) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if !(allowEmpty && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: invalid JSON body", errMalformed)
		}
	}
	return s.validate.Struct(dst)
}

// writeServiceError maps an error to its HTTP status and JSON body.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Code:    service.KindValidation,
			Error:   verrs.Error(),
			Details: verrs,
		})
		return
	}
	if errors.Is(err, errMalformed) {
		writeError(w, http.StatusBadRequest, "malformed", err.Error())
		return
	}

	kind := service.KindOf(err)
	switch kind {
	case service.KindConflict, service.KindTerminalState, service.KindAlreadyCancelled:
		writeError(w, http.StatusConflict, kind, err.Error())
	case service.KindValidation:
		writeError(w, http.StatusUnprocessableEntity, kind, err.Error())
	case service.KindNotFound:
		writeError(w, http.StatusNotFound, kind, err.Error())
	default:
		s.logger.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, service.KindInternal, "internal server error")
	}
}

type errorBody struct {
	Code    string            `json:"code"`
	Error   string            `json:"error"`
	Details []ValidationError `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorBody{Code: code, Error: message})
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		s.logger.Info().
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
