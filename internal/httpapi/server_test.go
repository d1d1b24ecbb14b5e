package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"horse.fit/mts/internal/auth"
	"horse.fit/mts/internal/db"
	"horse.fit/mts/internal/engine"
	"horse.fit/mts/internal/translation"
)

type fakeModel struct {
	name string
}

func (m fakeModel) Name() string { return m.name }

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeSubmitter) Translate(model engine.Model, text string, callback engine.Callback) {
	f.mu.Lock()
	f.calls = append(f.calls, model.Name())
	err := f.fail[model.Name()]
	f.mu.Unlock()

	if err != nil {
		callback(engine.Response{Err: err})
		return
	}
	callback(engine.Response{Text: "[" + model.Name() + "]" + text})
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeHistory struct {
	mu      sync.Mutex
	records []db.TranslationRecord
}

func (h *fakeHistory) RecordTranslation(_ context.Context, record *db.TranslationRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, *record)
	return nil
}

func (h *fakeHistory) RecentTranslations(_ context.Context, limit int) ([]db.TranslationRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]db.TranslationRecord, 0, limit)
	for i := len(h.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, h.records[i])
	}
	return out, nil
}

func newTestServer(t *testing.T, pairs []string, submitter *fakeSubmitter, history HistoryStore, opts Options) *echo.Echo {
	t.Helper()

	models := make(map[translation.PairKey]engine.Model, len(pairs))
	for _, pair := range pairs {
		models[translation.PairKey(pair)] = fakeModel{name: pair}
	}
	registry, err := translation.NewRegistry(models)
	if err != nil {
		t.Fatalf("NewRegistry returned error: %v", err)
	}

	service := translation.NewService(registry, submitter, zerolog.Nop())
	return NewServer(service, history, zerolog.Nop(), opts).routes()
}

func doRequest(e *echo.Echo, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHeartbeatEndpoints(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, []string{"enfr"}, &fakeSubmitter{}, nil, Options{})
	for _, path := range []string{"/__heartbeat__", "/__lbheartbeat__"} {
		rec := doRequest(e, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
		if rec.Body.String() != "Ready" {
			t.Fatalf("%s: unexpected body %q", path, rec.Body.String())
		}
	}
}

func TestTranslateDirectRoute(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	e := newTestServer(t, []string{"enfr"}, submitter, nil, Options{})

	rec := doRequest(e, http.MethodPost, "/v1/translate", `{"from":"en","to":"fr","text":"hello"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentType); got != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", got)
	}

	var resp translateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result != "[enfr]hello" {
		t.Fatalf("unexpected result %q", resp.Result)
	}
}

func TestTranslatePivotRoute(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	history := &fakeHistory{}
	e := newTestServer(t, []string{"deen", "enfr"}, submitter, history, Options{})

	rec := doRequest(e, http.MethodPost, "/v1/translate", `{"from":"de","to":"fr","text":"hallo"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp translateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Result != "[enfr][deen]hallo" {
		t.Fatalf("unexpected result %q", resp.Result)
	}

	if len(history.records) != 1 {
		t.Fatalf("expected one history record, got %d", len(history.records))
	}
	record := history.records[0]
	if record.Route != "pivot" || record.Hops != "deen,enfr" {
		t.Fatalf("unexpected history record: %+v", record)
	}
	if record.SourceChars != 5 || record.ErrorMessage != nil {
		t.Fatalf("unexpected history record: %+v", record)
	}
}

func TestTranslateUnsupportedPairSkipsEngine(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{}
	e := newTestServer(t, []string{"enfr"}, submitter, nil, Options{})

	rec := doRequest(e, http.MethodPost, "/v1/translate", `{"from":"fr","to":"de","text":"bonjour"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if submitter.callCount() != 0 {
		t.Fatalf("engine must not be called for an unsupported pair")
	}
}

func TestTranslateRejectsInvalidBodies(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, []string{"enfr"}, &fakeSubmitter{}, nil, Options{})
	bodies := []string{
		`{"from":"en","to":"fr"`,
		`{"from":"en","text":"hello"}`,
		`{"from":"en","to":"fr","text":"hello","extra":true}`,
		`{"from":"en","to":"fr","text":42}`,
		`{"from":"en","to":"fr","text":"a"} {}`,
	}
	for _, body := range bodies {
		rec := doRequest(e, http.MethodPost, "/v1/translate", body, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestTranslateEngineFailure(t *testing.T) {
	t.Parallel()

	submitter := &fakeSubmitter{fail: map[string]error{"enfr": errors.New("engine down")}}
	history := &fakeHistory{}
	e := newTestServer(t, []string{"enfr"}, submitter, history, Options{})

	rec := doRequest(e, http.MethodPost, "/v1/translate", `{"from":"en","to":"fr","text":"hello"}`, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if len(history.records) != 1 || history.records[0].ErrorMessage == nil {
		t.Fatalf("expected failed request to be recorded with an error: %+v", history.records)
	}
}

func TestTranslateAutoDetectWithSingleSource(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, []string{"enfr", "ende"}, &fakeSubmitter{}, nil, Options{})

	rec := doRequest(e, http.MethodPost, "/v1/translate", `{"from":"auto","to":"de","text":"good morning"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "[ende]good morning") {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}

	rec = doRequest(e, http.MethodPost, "/v1/translate", `{"to":"de","text":"hi"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for undetectable text, got %d", rec.Code)
	}
}

func TestRouteEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, []string{"deen", "enfr"}, &fakeSubmitter{}, nil, Options{})

	rec := doRequest(e, http.MethodGet, "/v1/route?from=de&to=fr", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Status string        `json:"status"`
		Data   routeResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Data.Kind != "pivot" || strings.Join(payload.Data.Hops, ",") != "deen,enfr" {
		t.Fatalf("unexpected route: %+v", payload.Data)
	}

	rec = doRequest(e, http.MethodGet, "/v1/route?from=de", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without target, got %d", rec.Code)
	}
}

func TestModelsEndpoint(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, []string{"enfr", "deen"}, &fakeSubmitter{}, nil, Options{})

	rec := doRequest(e, http.MethodGet, "/v1/models", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Data struct {
			Items []translation.PairInfo `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Items) != 2 || payload.Data.Items[0].Pair != "deen" {
		t.Fatalf("unexpected items: %+v", payload.Data.Items)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	t.Parallel()

	disabled := newTestServer(t, []string{"enfr"}, &fakeSubmitter{}, nil, Options{})
	if rec := doRequest(disabled, http.MethodGet, "/v1/history", "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when history is disabled, got %d", rec.Code)
	}

	history := &fakeHistory{}
	e := newTestServer(t, []string{"enfr"}, &fakeSubmitter{}, history, Options{})
	doRequest(e, http.MethodPost, "/v1/translate", `{"from":"en","to":"fr","text":"one"}`, nil)
	doRequest(e, http.MethodPost, "/v1/translate", `{"from":"en","to":"fr","text":"three"}`, nil)

	rec := doRequest(e, http.MethodGet, "/v1/history?limit=1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Data struct {
			Items []db.TranslationRecord `json:"items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Data.Items) != 1 || payload.Data.Items[0].SourceChars != 5 {
		t.Fatalf("unexpected history items: %+v", payload.Data.Items)
	}

	if rec := doRequest(e, http.MethodGet, "/v1/history?limit=abc", "", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestBearerTokenRequired(t *testing.T) {
	t.Parallel()

	e := newTestServer(t, []string{"enfr"}, &fakeSubmitter{}, nil, Options{
		Auth: auth.Verifier{Token: "s3cret"},
	})

	if rec := doRequest(e, http.MethodGet, "/v1/models", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	wrong := map[string]string{echo.HeaderAuthorization: "Bearer nope"}
	if rec := doRequest(e, http.MethodGet, "/v1/models", "", wrong); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", rec.Code)
	}
	right := map[string]string{echo.HeaderAuthorization: "Bearer s3cret"}
	if rec := doRequest(e, http.MethodGet, "/v1/models", "", right); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if rec := doRequest(e, http.MethodGet, "/__heartbeat__", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("heartbeat must not require a token, got %d", rec.Code)
	}
}
