package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"horse.fit/mts/internal/db"
	"horse.fit/mts/internal/globaltime"
	"horse.fit/mts/internal/translation"
)

const (
	maxRequestBytes   = 1 << 20
	autoDetectLang    = "auto"
	jsonUTF8MediaType = "application/json; charset=utf-8"
)

type translateResponse struct {
	Result string `json:"result"`
}

func (s *Server) handleTranslate(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxRequestBytes+1))
	if err != nil {
		return fail(c, http.StatusBadRequest, "Failed to read request body", nil)
	}
	if len(body) > maxRequestBytes {
		return fail(c, http.StatusRequestEntityTooLarge, "Request body too large", nil)
	}

	req, err := decodeTranslateRequest(body)
	if err != nil {
		return failValidation(c, map[string]string{"body": err.Error()})
	}

	from := req.From
	detected := false
	if from == "" || strings.EqualFold(from, autoDetectLang) {
		from = s.detector.Detect(req.Text)
		if from == "" {
			return failValidation(c, map[string]string{"from": "could not detect source language"})
		}
		detected = true
	}

	route := s.service.Resolve(from, req.To)
	if route.Kind == translation.RouteUnsupported {
		return fail(c, http.StatusBadRequest, "Unsupported language pair", map[string]any{
			"from": from,
			"to":   req.To,
		})
	}

	started := globaltime.Now()
	result, err := s.service.Translate(from, req.To, req.Text)
	latency := globaltime.Since(started)

	s.recordTranslation(c, &db.TranslationRecord{
		SourceLang:  from,
		TargetLang:  req.To,
		Route:       route.Kind.String(),
		Hops:        joinHops(route.Hops()),
		Detected:    detected,
		SourceChars: utf8.RuneCountInString(req.Text),
		ResultChars: utf8.RuneCountInString(result),
		LatencyMS:   latency.Milliseconds(),
	}, err)

	if err != nil {
		if errors.Is(err, translation.ErrUnsupportedPair) {
			return fail(c, http.StatusBadRequest, "Unsupported language pair", nil)
		}
		s.logger.Error().
			Err(err).
			Str("from", from).
			Str("to", req.To).
			Str("route", route.Kind.String()).
			Msg("translation failed")
		return internalError(c, "Translation failed")
	}

	encoded, err := json.Marshal(translateResponse{Result: result})
	if err != nil {
		return internalError(c, "Failed to encode translation")
	}
	return c.Blob(http.StatusOK, jsonUTF8MediaType, encoded)
}

func (s *Server) recordTranslation(c echo.Context, record *db.TranslationRecord, translateErr error) {
	if s.history == nil {
		return
	}
	record.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	record.CreatedAt = globaltime.UTC()
	if translateErr != nil {
		message := translateErr.Error()
		record.ErrorMessage = &message
		record.ResultChars = 0
	}
	if err := s.history.RecordTranslation(c.Request().Context(), record); err != nil {
		s.logger.Warn().Err(err).Str("request_id", record.RequestID).Msg("record translation history failed")
	}
}

func joinHops(hops []translation.PairKey) string {
	parts := make([]string, 0, len(hops))
	for _, hop := range hops {
		parts = append(parts, hop.String())
	}
	return strings.Join(parts, ",")
}
