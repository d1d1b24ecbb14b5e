package httpapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"horse.fit/mts/internal/db"
	"horse.fit/mts/internal/translation"
)

type routeResponse struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind string   `json:"kind"`
	Hops []string `json:"hops"`
}

func (s *Server) handleModels(c echo.Context) error {
	return success(c, map[string]any{
		"items": translation.DescribePairs(s.service.ListPairs()),
	})
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, map[string]any{
		"items":      translation.LanguageOptions(s.service.Registry()),
		"bridge":     translation.BridgeLanguage,
		"detectable": s.detector.Candidates(),
	})
}

func (s *Server) handleRoute(c echo.Context) error {
	from := strings.TrimSpace(c.QueryParam("from"))
	to := strings.TrimSpace(c.QueryParam("to"))
	fieldErrors := map[string]string{}
	if from == "" {
		fieldErrors["from"] = "is required"
	}
	if to == "" {
		fieldErrors["to"] = "is required"
	}
	if len(fieldErrors) > 0 {
		return failValidation(c, fieldErrors)
	}

	route := s.service.Resolve(from, to)
	hops := make([]string, 0, 2)
	for _, hop := range route.Hops() {
		hops = append(hops, hop.String())
	}
	return success(c, routeResponse{
		From: from,
		To:   to,
		Kind: route.Kind.String(),
		Hops: hops,
	})
}

func (s *Server) handleHistory(c echo.Context) error {
	if s.history == nil {
		return failNotFound(c, "Translation history is disabled")
	}

	limit, err := parsePositiveInt(c.QueryParam("limit"), db.DefaultHistoryLimit, 1, db.MaxHistoryLimit)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}

	rows, err := s.history.RecentTranslations(c.Request().Context(), limit)
	if err != nil {
		s.logger.Error().Err(err).Int("limit", limit).Msg("query translation history failed")
		return internalError(c, "Failed to load translation history")
	}
	return success(c, map[string]any{
		"items": rows,
		"limit": limit,
	})
}
