package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"horse.fit/mts/internal/auth"
	"horse.fit/mts/internal/db"
	"horse.fit/mts/internal/langdetect"
	"horse.fit/mts/internal/translation"
)

const heartbeatBody = "Ready"

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Auth            auth.Verifier
}

// HistoryStore persists served translations. A nil store disables history.
type HistoryStore interface {
	RecordTranslation(ctx context.Context, record *db.TranslationRecord) error
	RecentTranslations(ctx context.Context, limit int) ([]db.TranslationRecord, error)
}

type Server struct {
	service  *translation.Service
	history  HistoryStore
	detector *langdetect.Detector
	logger   zerolog.Logger
	opts     Options
}

func NewServer(service *translation.Service, history HistoryStore, logger zerolog.Logger, opts Options) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8989
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Minute
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	var detector *langdetect.Detector
	if service != nil && service.Registry() != nil {
		detector = langdetect.NewDetector(service.Registry().SourceLanguages())
	}

	return &Server{
		service:  service,
		history:  history,
		detector: detector,
		logger:   logger,
		opts: Options{
			Host:            host,
			Port:            port,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
			Auth:            opts.Auth,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.service == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.routes()

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().
		Str("addr", addr).
		Bool("auth", s.opts.Auth.Enabled()).
		Bool("history", s.history != nil).
		Msg("mts server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("mts server stopped")
	return nil
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		Skipper: func(c echo.Context) bool {
			return isHeartbeatPath(c.Request().URL.Path)
		},
		LogValuesFunc: s.logRequest,
	}))

	e.GET("/__heartbeat__", s.handleHeartbeat)
	e.GET("/__lbheartbeat__", s.handleHeartbeat)

	api := e.Group("/v1", s.requireToken())
	api.POST("/translate", s.handleTranslate)
	api.GET("/models", s.handleModels)
	api.GET("/languages", s.handleLanguages)
	api.GET("/route", s.handleRoute)
	api.GET("/history", s.handleHistory)

	return e
}

func (s *Server) logRequest(_ echo.Context, v middleware.RequestLoggerValues) error {
	event := s.logger.Info()
	message := "http request"
	if v.Error != nil {
		event = s.logger.Error().Err(v.Error)
		message = "http request failed"
	} else if v.Status >= http.StatusInternalServerError {
		event = s.logger.Warn()
	}
	event.
		Str("method", v.Method).
		Str("uri", v.URI).
		Int("status", v.Status).
		Dur("latency", v.Latency).
		Str("remote_ip", v.RemoteIP).
		Str("request_id", v.RequestID).
		Msg(message)
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	if strings.HasPrefix(c.Request().URL.Path, "/v1/") {
		if status >= 500 {
			_ = internalError(c, "Internal server error")
			return
		}
		_ = fail(c, status, message, nil)
		return
	}

	_ = c.String(status, message)
}

func (s *Server) handleHeartbeat(c echo.Context) error {
	return c.String(http.StatusOK, heartbeatBody)
}

func isHeartbeatPath(path string) bool {
	return path == "/__heartbeat__" || path == "/__lbheartbeat__"
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
